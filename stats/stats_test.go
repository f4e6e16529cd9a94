package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlaslearn/atlas/backend/models"
)

var base = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return base.AddDate(0, 0, n)
}

func TestQuizzes(t *testing.T) {
	// newest first
	results := []models.QuizResult{
		{Topic: "Algebra", Score: 0.5, Timestamp: day(3)},
		{Topic: "Physics", Score: 1.0, Timestamp: day(2)},
		{Topic: "Algebra", Score: 0.75, Timestamp: day(1)},
		{Topic: "", Score: 0.2, Timestamp: day(0)},
	}

	got := Quizzes(results)
	assert.Equal(t, 4, got.TotalQuizzes)
	assert.Equal(t, 0.61, got.AvgScore)
	require.Len(t, got.TopicStats, 3)
	assert.Equal(t, TopicStat{Topic: "Algebra", Count: 2, AvgScore: 0.625}, got.TopicStats[0])
	assert.Equal(t, "Physics", got.TopicStats[1].Topic)
	assert.Equal(t, "Unknown", got.TopicStats[2].Topic)
}

func TestQuizzesEmpty(t *testing.T) {
	got := Quizzes(nil)
	assert.Zero(t, got.TotalQuizzes)
	assert.Zero(t, got.AvgScore)
	assert.NotNil(t, got.TopicStats)
}

func TestInterviews(t *testing.T) {
	records := []models.InterviewRecord{
		{ContentScore: 0.8, CommunicationScore: 0.7, OverallScore: 0.76},
		{ContentScore: 0.6, CommunicationScore: 0.9, OverallScore: 0.7},
		{ContentScore: 0.7, CommunicationScore: 0.5, OverallScore: 0.6},
	}

	got := Interviews(records)
	assert.Equal(t, 3, got.TotalInterviews)
	assert.Equal(t, 0.7, got.AvgContentScore)
	assert.Equal(t, 0.7, got.AvgCommunicationScore)
	assert.Equal(t, 0.69, got.AvgOverallScore)
}

func TestWeakTopics(t *testing.T) {
	records := []models.InterviewRecord{
		{WeakAreas: models.StringList{"speaking_pace", "filler_words"}},
		{WeakAreas: models.StringList{"speaking_pace", "eye_contact_level"}},
	}

	got := WeakTopics([]string{"Algebra", "Optics"}, records)
	assert.Equal(t, []string{
		"Algebra",
		"Optics",
		"Interview: speaking pace",
		"Interview: filler words",
		"Interview: eye contact level",
	}, got)
}

func TestWeakTopicsCapped(t *testing.T) {
	var topics []string
	for _, c := range "abcdefghijkl" {
		topics = append(topics, string(c))
	}
	got := WeakTopics(topics, []models.InterviewRecord{{WeakAreas: models.StringList{"clarity"}}})
	assert.Len(t, got, 10)
	assert.NotContains(t, got, "Interview: clarity")
}

func TestPerformance(t *testing.T) {
	quizzes := []models.QuizResult{
		{Topic: "Physics", Score: 0.8, Timestamp: day(2)},
		{Topic: "Algebra", Score: 0.456, Timestamp: day(1)},
	}
	var interviews []models.InterviewRecord
	for i := 0; i < 12; i++ {
		interviews = append(interviews, models.InterviewRecord{
			ContentScore:       0.812,
			CommunicationScore: 0.7,
			OverallScore:       0.756,
			Timestamp:          day(20 - i),
		})
	}

	got := Performance(quizzes, interviews)
	require.Len(t, got, 12)

	assert.Equal(t, 1, got[0].QuizNumber)
	assert.Equal(t, "Algebra", got[0].Topic)
	assert.Equal(t, float64(46), got[0].Marks)
	assert.Equal(t, EntryQuiz, got[0].Type)
	assert.Nil(t, got[0].ContentScore)

	iv := got[2]
	assert.Equal(t, 3, iv.QuizNumber)
	assert.Equal(t, EntryInterview, iv.Type)
	assert.Equal(t, float64(76), iv.Marks)
	require.NotNil(t, iv.ContentScore)
	assert.Equal(t, float64(81), *iv.ContentScore)
	assert.Equal(t, float64(70), *iv.CommunicationScore)
	assert.Equal(t, day(20), iv.Date)
}

func TestCombined(t *testing.T) {
	quizzes := []models.QuizResult{
		{Topic: "Physics", Score: 0.9, Timestamp: day(5)},
		{Topic: "Algebra", Score: 0.5, Timestamp: day(1)},
	}
	interviews := []models.InterviewRecord{
		{OverallScore: 0.6, Timestamp: day(3)},
	}

	entries, summary := Combined(quizzes, interviews, nil)
	require.Len(t, entries, 3)
	assert.Equal(t, "Algebra", entries[0].Topic)
	assert.Equal(t, EntryInterview, entries[1].Type)
	assert.Equal(t, "Physics", entries[2].Topic)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].Date.Before(entries[i-1].Date))
	}

	assert.Equal(t, 2, summary.TotalQuizzes)
	assert.Equal(t, 1, summary.TotalInterviews)
	assert.Equal(t, 0.7, summary.AvgQuizScore)
	assert.Equal(t, 0.6, summary.AvgInterviewScore)
	assert.Equal(t, []string{}, summary.WeakTopics)
}
