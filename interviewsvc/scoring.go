package interviewsvc

import (
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"unicode/utf8"
)

type answerFeedback struct {
	ContentFeedback       string             `json:"content_feedback"`
	CommunicationFeedback []string           `json:"communication_feedback"`
	ContentScore          float64            `json:"content_score"`
	CommunicationScore    float64            `json:"communication_score"`
	OverallScore          float64            `json:"overall_score"`
	DetailedScores        map[string]float64 `json:"detailed_scores"`
}

type endSummary struct {
	ContentScore          float64            `json:"content_score"`
	CommunicationScore    float64            `json:"communication_score"`
	OverallScore          float64            `json:"overall_score"`
	ContentFeedback       string             `json:"content_feedback"`
	CommunicationFeedback string             `json:"communication_feedback"`
	ImprovementTips       []string           `json:"improvement_tips"`
	DetailedScores        map[string]float64 `json:"detailed_scores"`
	WeakAreas             []string           `json:"weak_areas"`
	WeakAreaFeedback      []string           `json:"weak_area_feedback"`
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// sample returns k distinct entries of pool in random order.
func sample(rng *rand.Rand, pool []string, k int) []string {
	k = min(k, len(pool))
	out := make([]string, 0, k)
	for _, i := range rng.Perm(len(pool))[:k] {
		out = append(out, pool[i])
	}
	return out
}

func pickQuestions(kind string) func(*rand.Rand) []string {
	return func(rng *rand.Rand) []string {
		if kind == "mixed" {
			var out []string
			for _, c := range mixedCategories {
				out = append(out, sample(rng, questionBank[c], 2)...)
			}
			return out
		}
		pool, ok := questionBank[kind]
		if !ok {
			pool = questionBank["general"]
		}
		return sample(rng, pool, 5)
	}
}

// scoreAnswer grades content by answer length and delivery from the
// observed 0..1 metrics, drawing any that are missing. Scores are 0..10.
func scoreAnswer(rng *rand.Rand, question, answer string, observed map[string]float64) *answerFeedback {
	var kind string
	var content float64
	switch n := utf8.RuneCountInString(answer); {
	case n < 20:
		kind, content = "constructive", uniform(rng, 5.0, 6.5)
	case n < 50:
		kind, content = "constructive", uniform(rng, 6.0, 7.5)
	case n < 100:
		kind, content = "neutral", uniform(rng, 7.0, 8.0)
	case n < 200:
		kind, content = "neutral", uniform(rng, 7.5, 8.5)
	default:
		kind, content = "positive", uniform(rng, 8.0, 9.5)
	}
	content = round1(content)

	templates := feedbackTemplates[kind]
	contentFeedback := templates[rng.IntN(len(templates))]
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "yourself"):
		contentFeedback += " When introducing yourself, remember to keep it professional but personable."
	case strings.Contains(q, "strength") || strings.Contains(q, "weakness"):
		contentFeedback += " For strengths and weaknesses, always show how you're working on improving."
	case strings.Contains(q, "technical") || strings.Contains(q, "programming"):
		contentFeedback += " Technical questions should demonstrate both knowledge and practical experience."
	}

	detailed := map[string]float64{"content": content}
	var weighted float64
	var comments []string
	for _, m := range metrics {
		v, ok := observed[m.name]
		if !ok {
			r := metricRanges[m.name]
			v = uniform(rng, r[0], r[1])
		}
		comments = append(comments, m.feedback(v))
		weighted += v * metricWeights[m.name]
		detailed[m.name] = round1(v * 10)
	}

	communication := max(round1(weighted), 5.0)

	return &answerFeedback{
		ContentFeedback:       contentFeedback,
		CommunicationFeedback: sample(rng, comments, 2),
		ContentScore:          content,
		CommunicationScore:    communication,
		OverallScore:          round1(content*0.4 + communication*0.6),
		DetailedScores:        detailed,
	}
}

// summarize aggregates the answered questions of a session.
func summarize(rng *rand.Rand, feedback []*answerFeedback) *endSummary {
	var content, communication, overall []float64
	detailed := map[string]float64{}
	count := 0
	for _, fb := range feedback {
		if fb == nil {
			continue
		}
		content = append(content, fb.ContentScore)
		communication = append(communication, fb.CommunicationScore)
		overall = append(overall, fb.OverallScore)
		for _, m := range metrics {
			detailed[m.name] += fb.DetailedScores[m.name]
		}
		count++
	}

	avgContent := mean(content, 7.5)
	avgCommunication := mean(communication, 8.5)
	avgOverall := mean(overall, 8.0)

	if count == 0 {
		for k, v := range defaultEndScores {
			detailed[k] = v
		}
	} else {
		for k := range detailed {
			detailed[k] = round1(detailed[k] / float64(count))
		}
	}

	var weak []string
	for _, m := range metrics {
		if detailed[m.name] < 8.0 {
			weak = append(weak, m.name)
		}
	}
	if len(weak) == 0 && count > 0 {
		names := make([]string, len(metrics))
		for i, m := range metrics {
			names[i] = m.name
		}
		sort.SliceStable(names, func(a, b int) bool {
			return detailed[names[a]] < detailed[names[b]]
		})
		weak = names[:2]
	}

	weakFeedback := make([]string, 0, len(weak))
	for _, area := range weak {
		weakFeedback = append(weakFeedback, weakAreaFeedback[area])
	}

	tips := append(sample(rng, contentTips, 2), sample(rng, communicationTips, 2)...)

	return &endSummary{
		ContentScore:          round1(avgContent),
		CommunicationScore:    round1(avgCommunication),
		OverallScore:          round1(avgOverall),
		ContentFeedback:       overallContentFeedback(avgContent),
		CommunicationFeedback: overallCommunicationFeedback(avgCommunication),
		ImprovementTips:       tips,
		DetailedScores:        detailed,
		WeakAreas:             nonNil(weak),
		WeakAreaFeedback:      weakFeedback,
	}
}

func mean(xs []float64, fallback float64) float64 {
	if len(xs) == 0 {
		return fallback
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func overallContentFeedback(score float64) string {
	switch {
	case score < 4:
		return "Your answers need improvement. Focus on providing more specific examples and structuring your responses better."
	case score < 7:
		return "Your answers were generally good. Continue practicing and work on providing more detailed responses."
	default:
		return "Your answers were excellent! They were clear, detailed, and well-structured."
	}
}

func overallCommunicationFeedback(score float64) string {
	switch {
	case score < 4:
		return "Your communication skills need improvement. Focus on maintaining eye contact, speaking clearly, and reducing filler words."
	case score < 7:
		return "Your communication was generally good. Continue practicing your delivery and body language."
	default:
		return "Your communication skills were excellent! You presented yourself professionally and confidently."
	}
}

func frameScores(rng *rand.Rand) map[string]float64 {
	return map[string]float64{
		"eye_contact":        uniform(rng, 0.5, 1.0),
		"facial_expressions": uniform(rng, 0.4, 0.9),
		"posture":            uniform(rng, 0.6, 1.0),
		"engagement":         uniform(rng, 0.5, 0.95),
	}
}

func audioScores(rng *rand.Rand) map[string]float64 {
	return map[string]float64{
		"speaking_pace": uniform(rng, 0.6, 0.95),
		"voice_clarity": uniform(rng, 0.5, 0.9),
		"filler_words":  uniform(rng, 0.4, 0.85),
		"tone":          uniform(rng, 0.5, 0.9),
	}
}
