// Package stats turns stored quiz results and interview records into the
// figures shown on the student dashboard and by the stats command.
package stats

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/atlaslearn/atlas/backend/models"
)

const (
	maxWeakTopics        = 10
	dashboardInterviews  = 10
	unknownTopic         = "Unknown"
	interviewTopicPrefix = "Interview: "
	EntryQuiz            = "Quiz"
	EntryInterview       = "Interview"
)

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func percent(x float64) float64 {
	return math.Round(x * 100)
}

type TopicStat struct {
	Topic    string  `json:"topic"`
	Count    int     `json:"count"`
	AvgScore float64 `json:"avgScore"`
}

type QuizSummary struct {
	TotalQuizzes int         `json:"totalQuizzes"`
	AvgScore     float64     `json:"avgScore"`
	TopicStats   []TopicStat `json:"topicStats"`
}

// Quizzes summarizes results given newest first. Topics keep the order
// in which they first appear.
func Quizzes(results []models.QuizResult) QuizSummary {
	out := QuizSummary{TotalQuizzes: len(results), TopicStats: []TopicStat{}}
	if len(results) == 0 {
		return out
	}

	var total float64
	index := make(map[string]int)
	sums := make([]float64, 0)
	for _, q := range results {
		total += q.Score
		topic := q.Topic
		if topic == "" {
			topic = unknownTopic
		}
		i, ok := index[topic]
		if !ok {
			i = len(out.TopicStats)
			index[topic] = i
			out.TopicStats = append(out.TopicStats, TopicStat{Topic: topic})
			sums = append(sums, 0)
		}
		out.TopicStats[i].Count++
		sums[i] += q.Score
	}
	for i := range out.TopicStats {
		out.TopicStats[i].AvgScore = sums[i] / float64(out.TopicStats[i].Count)
	}
	out.AvgScore = round2(total / float64(len(results)))
	return out
}

type InterviewSummary struct {
	TotalInterviews       int     `json:"totalInterviews"`
	AvgContentScore       float64 `json:"avgContentScore"`
	AvgCommunicationScore float64 `json:"avgCommunicationScore"`
	AvgOverallScore       float64 `json:"avgOverallScore"`
}

func Interviews(records []models.InterviewRecord) InterviewSummary {
	out := InterviewSummary{TotalInterviews: len(records)}
	if len(records) == 0 {
		return out
	}
	var content, comm, overall float64
	for _, r := range records {
		content += r.ContentScore
		comm += r.CommunicationScore
		overall += r.OverallScore
	}
	n := float64(len(records))
	out.AvgContentScore = round2(content / n)
	out.AvgCommunicationScore = round2(comm / n)
	out.AvgOverallScore = round2(overall / n)
	return out
}

// WeakTopics lists the student's own weak topics followed by the weak
// areas found in their interviews, without duplicates.
func WeakTopics(userTopics []string, records []models.InterviewRecord) []string {
	out := make([]string, 0, maxWeakTopics)
	seen := make(map[string]bool)
	add := func(t string) {
		if t == "" || seen[t] || len(out) >= maxWeakTopics {
			return
		}
		seen[t] = true
		out = append(out, t)
	}
	for _, t := range userTopics {
		add(t)
	}
	for _, r := range records {
		for _, area := range r.WeakAreas {
			add(interviewTopicPrefix + strings.ReplaceAll(area, "_", " "))
		}
	}
	return out
}

// Entry is one point on the performance chart. Marks are percentages.
type Entry struct {
	QuizNumber         int       `json:"quizNumber"`
	Marks              float64   `json:"marks"`
	ContentScore       *float64  `json:"contentScore,omitempty"`
	CommunicationScore *float64  `json:"communicationScore,omitempty"`
	Type               string    `json:"type"`
	Topic              string    `json:"topic,omitempty"`
	Date               time.Time `json:"date"`
}

func quizEntry(n int, q models.QuizResult) Entry {
	return Entry{QuizNumber: n, Marks: percent(q.Score), Type: EntryQuiz, Topic: q.Topic, Date: q.Timestamp}
}

func interviewEntry(n int, r models.InterviewRecord) Entry {
	content, comm := percent(r.ContentScore), percent(r.CommunicationScore)
	return Entry{
		QuizNumber:         n,
		Marks:              percent(r.OverallScore),
		ContentScore:       &content,
		CommunicationScore: &comm,
		Type:               EntryInterview,
		Date:               r.Timestamp,
	}
}

// Performance builds the dashboard chart: every quiz oldest first, then
// the latest interviews newest first. Both inputs are newest first.
func Performance(quizzes []models.QuizResult, interviews []models.InterviewRecord) []Entry {
	interviews = Latest(interviews)
	out := make([]Entry, 0, len(quizzes)+len(interviews))
	for i := len(quizzes) - 1; i >= 0; i-- {
		out = append(out, quizEntry(len(out)+1, quizzes[i]))
	}
	for _, r := range interviews {
		out = append(out, interviewEntry(len(out)+1, r))
	}
	return out
}

// Latest trims newest-first interviews to what the dashboard shows.
func Latest(interviews []models.InterviewRecord) []models.InterviewRecord {
	if len(interviews) > dashboardInterviews {
		return interviews[:dashboardInterviews]
	}
	return interviews
}

type CombinedSummary struct {
	TotalQuizzes      int      `json:"totalQuizzes"`
	TotalInterviews   int      `json:"totalInterviews"`
	AvgQuizScore      float64  `json:"avgQuizScore"`
	AvgInterviewScore float64  `json:"avgInterviewScore"`
	WeakTopics        []string `json:"weakTopics"`
}

// Combined merges quizzes and interviews into one chart ordered by date,
// oldest first.
func Combined(quizzes []models.QuizResult, interviews []models.InterviewRecord, weakTopics []string) ([]Entry, CombinedSummary) {
	entries := make([]Entry, 0, len(quizzes)+len(interviews))
	for i, q := range quizzes {
		entries = append(entries, quizEntry(i+1, q))
	}
	for i, r := range interviews {
		entries = append(entries, interviewEntry(len(quizzes)+i+1, r))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})

	if weakTopics == nil {
		weakTopics = []string{}
	}
	summary := CombinedSummary{
		TotalQuizzes:      len(quizzes),
		TotalInterviews:   len(interviews),
		AvgQuizScore:      Quizzes(quizzes).AvgScore,
		AvgInterviewScore: Interviews(interviews).AvgOverallScore,
		WeakTopics:        weakTopics,
	}
	return entries, summary
}
