package evaluator

import (
	"encoding/json"
	"strings"
)

// Normalize maps an interview service score on 0..10 onto 0..1.
func Normalize(x float64) float64 {
	return min(max(x/10, 0), 1)
}

// UpstreamStart is the interview service's start body.
type UpstreamStart struct {
	Success     bool     `json:"success"`
	InterviewID ID       `json:"interview_id"`
	SessionID   ID       `json:"session_id"`
	Questions   []string `json:"questions"`
}

// UpstreamFeedback is the interview service's per-answer body. Scores
// are on 0..10 and communication_feedback may be a string or a list.
type UpstreamFeedback struct {
	Success               bool               `json:"success"`
	ContentFeedback       string             `json:"content_feedback"`
	CommunicationFeedback json.RawMessage    `json:"communication_feedback"`
	ContentScore          float64            `json:"content_score"`
	CommunicationScore    float64            `json:"communication_score"`
	OverallScore          float64            `json:"overall_score"`
	DetailedScores        map[string]float64 `json:"detailed_scores"`
}

// UpstreamEnd is the interview service's end-of-interview body.
type UpstreamEnd struct {
	Success               bool               `json:"success"`
	InterviewID           ID                 `json:"interview_id"`
	ContentScore          float64            `json:"content_score"`
	CommunicationScore    float64            `json:"communication_score"`
	OverallScore          float64            `json:"overall_score"`
	ContentFeedback       string             `json:"content_feedback"`
	CommunicationFeedback string             `json:"communication_feedback"`
	ImprovementTips       []string           `json:"improvement_tips"`
	WeakAreas             []string           `json:"weak_areas"`
	WeakAreaFeedback      []string           `json:"weak_area_feedback"`
	DetailedScores        map[string]float64 `json:"detailed_scores"`
}

// measuredScores are the detailed scores the interview service reports;
// everything else is filled with neutralScore.
var measuredScores = []string{EyeContact, FacialExpressions, SpeakingPace, VoiceClarity, FillerWords}

const neutralScore = 0.8

func detailedFromUpstream(raw map[string]float64) Scores {
	scores := Scores{}
	for _, name := range DetailedScoreNames {
		scores[name] = neutralScore
	}
	for _, name := range measuredScores {
		if v := raw[name]; v != 0 {
			scores[name] = Normalize(v)
		}
	}
	return scores
}

// FromUpstreamStart fills in the mock questions when the service sent
// none. The service names the id session_id; interview_id wins if both
// are present.
func FromUpstreamStart(u UpstreamStart) StartResult {
	id := u.InterviewID
	if id == "" {
		id = u.SessionID
	}
	questions := u.Questions
	if len(questions) == 0 {
		questions = MockQuestions()
	}
	return StartResult{
		Success:     u.Success,
		InterviewID: id,
		Questions:   questions,
		Message:     startedMessage,
	}
}

func FromUpstreamFeedback(u UpstreamFeedback) FeedbackResult {
	return FeedbackResult{
		Success:               u.Success,
		ContentFeedback:       u.ContentFeedback,
		CommunicationFeedback: feedbackList(u.CommunicationFeedback),
		ContentScore:          Normalize(u.ContentScore),
		CommunicationScore:    Normalize(u.CommunicationScore),
		OverallScore:          Normalize(u.OverallScore),
		DetailedScores:        detailedFromUpstream(u.DetailedScores),
	}
}

// FromUpstreamEnd maps improvement tips onto strengths and weak-area
// feedback onto areas for improvement. Weak areas come from the service
// when it names them, otherwise from the normalized scores.
func FromUpstreamEnd(u UpstreamEnd) EndResult {
	scores := detailedFromUpstream(u.DetailedScores)

	weak := u.WeakAreas
	if weak == nil {
		weak = scores.WeakAreas()
	}

	return EndResult{
		Success:     u.Success,
		InterviewID: u.InterviewID,
		Message:     endedMessage,
		OverallFeedback: OverallFeedback{
			ContentScore:          Normalize(u.ContentScore),
			CommunicationScore:    Normalize(u.CommunicationScore),
			OverallScore:          Normalize(u.OverallScore),
			ContentFeedback:       u.ContentFeedback,
			CommunicationFeedback: u.CommunicationFeedback,
			Strengths:             nonNil(u.ImprovementTips),
			AreasForImprovement:   nonNil(u.WeakAreaFeedback),
			DetailedScores:        scores,
			WeakAreas:             weak,
		},
	}
}

func feedbackList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return nonNil(list)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
		return []string{s}
	}
	return []string{}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
