package evaluator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	EndWarning = "Using locally evaluated data because the interview server is unavailable."

	endedMessage     = "Interview ended successfully."
	evaluatedMessage = "Interview evaluated successfully."
)

// scoreCheck pairs a detailed score with the strength earned above 0.7
// and the area to improve otherwise.
type scoreCheck struct {
	name     string
	strength string
	area     string
}

var endChecks = []scoreCheck{
	{Relevance, "Relevant and on-topic responses", "Focus more on directly answering the questions asked"},
	{Completeness, "Comprehensive answers with good detail", "Provide more detailed and complete answers"},
	{Clarity, "Clear and well-structured responses", "Work on structuring your answers more clearly"},
	{EyeContact, "Good eye contact", "Maintain more consistent eye contact"},
	{SpeakingPace, "Appropriate speaking pace", "Adjust your speaking pace - avoid rushing or speaking too slowly"},
	{VoiceClarity, "Clear and audible voice", "Work on voice clarity and projection"},
}

// End evaluates a whole interview without the interview service. Only
// answered questions count; with none answered every score stays 0.7.
func End(rng *rand.Rand, id string, questions []QA, now time.Time) EndResult {
	scores := Scores{}
	for _, name := range DetailedScoreNames {
		scores[name] = 0.7
	}

	totals := Scores{}
	answered := 0
	for _, qa := range questions {
		if strings.TrimSpace(qa.Answer) == "" {
			continue
		}
		answered++

		words := float64(wordCount(qa.Answer))
		sentences := float64(sentenceCount(qa.Answer))

		totals[Relevance] += math.Min(0.9, 0.5+words/200)
		totals[Completeness] += math.Min(0.9, words/100)
		if sentences > 0 && words/sentences < 25 {
			totals[Clarity] += 0.8
		} else {
			totals[Clarity] += 0.6
		}
		for _, name := range communicationNames {
			totals[name] += 0.6 + rng.Float64()*0.3
		}
	}

	if answered > 0 {
		for _, name := range DetailedScoreNames {
			scores[name] = totals[name] / float64(answered)
		}
	}

	content := scores.content()
	communication := scores.communication()

	var strengths, areas []string
	for _, c := range endChecks {
		if scores[c.name] > 0.7 {
			strengths = append(strengths, c.strength)
		} else {
			areas = append(areas, c.area)
		}
	}
	if len(strengths) == 0 {
		strengths = []string{"Participation in the interview process"}
	}
	if len(areas) == 0 {
		areas = []string{"Continue practicing interview skills"}
	}

	if id == "" {
		id = fmt.Sprintf("interview-%d", now.UnixMilli())
	}

	return EndResult{
		Success:     true,
		InterviewID: ID(id),
		Message:     evaluatedMessage,
		OverallFeedback: OverallFeedback{
			ContentScore:          content,
			CommunicationScore:    communication,
			OverallScore:          content*0.6 + communication*0.4,
			ContentFeedback:       endContentFeedback(content),
			CommunicationFeedback: endCommunicationFeedback(communication),
			Strengths:             strengths,
			AreasForImprovement:   areas,
			DetailedScores:        scores,
			WeakAreas:             scores.WeakAreas(),
		},
	}
}

func endContentFeedback(score float64) string {
	switch {
	case score < 0.5:
		return "Your answers need more substance and relevance. Focus on directly addressing the questions with specific details and examples."
	case score < 0.7:
		return "Your answers were somewhat relevant but could be more comprehensive. Try to provide more specific examples and details in your responses."
	default:
		return "Your answers demonstrated good knowledge and relevance. You provided comprehensive responses that addressed the questions well."
	}
}

func endCommunicationFeedback(score float64) string {
	switch {
	case score < 0.5:
		return "Your communication skills need significant improvement. Work on maintaining eye contact, speaking clearly, and using appropriate facial expressions."
	case score < 0.7:
		return "Your communication was adequate but could be improved. Focus on maintaining more consistent eye contact and speaking with more clarity and confidence."
	default:
		return "You communicated effectively throughout the interview. Your eye contact, facial expressions, and speaking pace were generally appropriate."
	}
}
