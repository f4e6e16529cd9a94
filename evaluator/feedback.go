package evaluator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
)

const FeedbackWarning = "Using locally evaluated feedback because the interview server is unavailable."

// Feedback scores a single answer without the interview service. Content
// metrics come from the text; delivery metrics cannot be observed here,
// so they are drawn from rng in [0.8, 0.95].
func Feedback(rng *rand.Rand, question, answer string) FeedbackResult {
	if strings.TrimSpace(question) == "" {
		question = "interview question"
	}

	scores := Scores{}
	for _, name := range DetailedScoreNames {
		scores[name] = 0
	}

	var content float64
	if strings.TrimSpace(answer) == "" {
		content = 0.1
	} else {
		words := wordCount(answer)
		sentences := max(sentenceCount(answer), 1)

		scores[Completeness] = math.Min(0.95, round2(0.7+float64(words)/150))

		avg := float64(words) / float64(sentences)
		if avg > 5 && avg < 25 {
			scores[Clarity] = 0.9
		} else {
			scores[Clarity] = 0.7
		}

		scores[Relevance] = relevance(question, answer)
		content = scores.content()
	}

	for _, name := range communicationNames {
		scores[name] = round2(0.8 + rng.Float64()*0.15)
	}

	content = round2(content)
	communication := round2(scores.communication())

	return FeedbackResult{
		Success:               true,
		ContentFeedback:       contentFeedback(question, content),
		CommunicationFeedback: communicationFeedback(scores),
		ContentScore:          content,
		CommunicationScore:    communication,
		OverallScore:          round2(content*0.6 + communication*0.4),
		DetailedScores:        scores,
	}
}

// relevance is the share of long question words found in the answer.
func relevance(question, answer string) float64 {
	var keywords []string
	for _, w := range strings.Fields(strings.ToLower(question)) {
		if len([]rune(w)) > 3 {
			keywords = append(keywords, w)
		}
	}
	if len(keywords) == 0 {
		return 0.75
	}

	lower := strings.ToLower(answer)
	matches := 0
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			matches++
		}
	}
	return round2(math.Min(0.95, 0.7+float64(matches)/float64(len(keywords))*0.3))
}

func contentFeedback(question string, content float64) string {
	switch {
	case content < 0.4:
		return fmt.Sprintf("Your answer to \"%s\" needs significant improvement. Try to provide more relevant information and structure your response better.", question)
	case content < 0.7:
		return fmt.Sprintf("Your answer to \"%s\" was somewhat relevant but could be more comprehensive. Consider adding more specific examples and details.", question)
	default:
		return fmt.Sprintf("Your answer to \"%s\" was comprehensive. You covered the key points well. To further improve, consider adding more specific examples to strengthen your response.", question)
	}
}

func communicationFeedback(s Scores) []string {
	points := make([]string, 0, 3)

	if s[SpeakingPace] < 0.6 {
		points = append(points, "Work on maintaining a steady speaking pace - avoid rushing or speaking too slowly.")
	} else {
		points = append(points, "You maintained a good speaking pace throughout your response.")
	}

	if s[VoiceClarity] < 0.6 {
		points = append(points, "Try to speak more clearly and project your voice better.")
	} else {
		points = append(points, "Your voice was clear and easy to understand.")
	}

	if s[EyeContact] < 0.6 || s[FacialExpressions] < 0.6 {
		points = append(points, "Work on maintaining better eye contact and using more engaging facial expressions.")
	} else {
		points = append(points, "Your eye contact and facial expressions were engaging.")
	}

	return points
}
