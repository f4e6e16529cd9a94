// Package evaluator scores mock interviews locally when the interview
// service cannot, and normalizes the service's 0-10 scores when it can.
// Every score it returns is on the 0..1 scale.
package evaluator

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
)

// Detailed score names in the order weak areas are reported.
const (
	Relevance         = "relevance"
	Completeness      = "completeness"
	Clarity           = "clarity"
	EyeContact        = "eye_contact"
	FacialExpressions = "facial_expressions"
	SpeakingPace      = "speaking_pace"
	VoiceClarity      = "voice_clarity"
	FillerWords       = "filler_words"
	Posture           = "posture"
	Engagement        = "engagement"
)

// DetailedScoreNames lists every detailed score, content metrics first.
var DetailedScoreNames = []string{
	Relevance, Completeness, Clarity,
	EyeContact, FacialExpressions, SpeakingPace, VoiceClarity, FillerWords, Posture, Engagement,
}

// communicationNames are the seven delivery metrics averaged into the
// communication score.
var communicationNames = DetailedScoreNames[3:]

// Scores maps a detailed score name to its 0..1 value.
type Scores map[string]float64

// WeakAreas returns the names scoring below 0.6, in DetailedScoreNames order.
func (s Scores) WeakAreas() []string {
	weak := []string{}
	for _, name := range DetailedScoreNames {
		if v, ok := s[name]; ok && v < 0.6 {
			weak = append(weak, name)
		}
	}
	return weak
}

func (s Scores) content() float64 {
	return (s[Relevance] + s[Completeness] + s[Clarity]) / 3
}

func (s Scores) communication() float64 {
	var sum float64
	for _, name := range communicationNames {
		sum += s[name]
	}
	return sum / float64(len(communicationNames))
}

// ID accepts the interview service's numeric ids as well as strings.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// QA is one interview question and the candidate's answer.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// StartResult is the body of a started interview.
type StartResult struct {
	Success     bool     `json:"success"`
	InterviewID ID       `json:"interview_id"`
	Questions   []string `json:"questions"`
	Message     string   `json:"message"`
}

// FeedbackResult is the per-answer evaluation.
type FeedbackResult struct {
	Success               bool     `json:"success"`
	ContentFeedback       string   `json:"content_feedback"`
	CommunicationFeedback []string `json:"communication_feedback"`
	ContentScore          float64  `json:"content_score"`
	CommunicationScore    float64  `json:"communication_score"`
	OverallScore          float64  `json:"overall_score"`
	DetailedScores        Scores   `json:"detailed_scores"`
}

// OverallFeedback is the whole-interview evaluation.
type OverallFeedback struct {
	ContentScore          float64  `json:"content_score"`
	CommunicationScore    float64  `json:"communication_score"`
	OverallScore          float64  `json:"overall_score"`
	ContentFeedback       string   `json:"content_feedback"`
	CommunicationFeedback string   `json:"communication_feedback"`
	Strengths             []string `json:"strengths"`
	AreasForImprovement   []string `json:"areas_for_improvement"`
	DetailedScores        Scores   `json:"detailed_scores"`
	WeakAreas             []string `json:"weak_areas"`
}

// EndResult is the body of an ended interview.
type EndResult struct {
	Success         bool            `json:"success"`
	InterviewID     ID              `json:"interview_id"`
	Message         string          `json:"message"`
	OverallFeedback OverallFeedback `json:"overall_feedback"`
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// wordCount counts whitespace-separated words.
func wordCount(s string) int {
	return len(strings.Fields(s))
}

// sentenceCount counts the non-empty pieces between runs of . ! ?
func sentenceCount(s string) int {
	n := 0
	for _, piece := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		if piece != "" {
			n++
		}
	}
	return n
}
