package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlaslearn/atlas/backend/models"
)

func seedHistory(t *testing.T, env *testEnv, email string) *models.User {
	t.Helper()
	ctx := context.Background()
	user, err := env.store.GetUserByEmail(ctx, email)
	require.NoError(t, err)
	require.NotNil(t, user)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	quizzes := []*models.QuizResult{
		{UserID: user.ID, Email: email, Topic: "Algebra", TotalQuestions: 10, CorrectAnswers: 5, Score: 0.5, Timestamp: base},
		{UserID: user.ID, Email: email, Topic: "Optics", TotalQuestions: 10, CorrectAnswers: 10, Score: 1, IsPerfectScore: true, Timestamp: base.Add(48 * time.Hour)},
	}
	for _, q := range quizzes {
		require.NoError(t, env.store.CreateQuizResult(ctx, q))
	}
	require.NoError(t, env.store.CreateInterviewRecord(ctx, &models.InterviewRecord{
		UserID:             user.ID,
		Email:              email,
		InterviewID:        "4821",
		ContentScore:       0.8,
		CommunicationScore: 0.6,
		OverallScore:       0.7,
		WeakAreas:          models.StringList{"speaking_pace"},
		Source:             "upstream",
		Timestamp:          base.Add(24 * time.Hour),
	}))
	_, err = env.store.MergeWeakTopics(ctx, user.ID, []string{"Fractions"})
	require.NoError(t, err)
	return user
}

func TestDashboardRequiresAuth(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	for _, path := range []string{"/api/dashboard", "/api/dashboard/stats", "/api/dashboard/quiz-stats", "/api/dashboard/combined-stats"} {
		resp, _ := env.get(t, path)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.signup(t, "asha@example.com")
	seedHistory(t, env, "asha@example.com")

	resp, body := env.get(t, "/api/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Asha", body["user"].(map[string]any)["name"])
	assert.Equal(t, true, body["hasInterviewData"])
	assert.Equal(t, []any{"Fractions", "Interview: speaking pace"}, body["weakTopics"])

	performance := body["performanceData"].([]any)
	require.Len(t, performance, 3)
	first := performance[0].(map[string]any)
	assert.Equal(t, "Quiz", first["type"])
	assert.EqualValues(t, 50, first["marks"])
	last := performance[2].(map[string]any)
	assert.Equal(t, "Interview", last["type"])
	assert.EqualValues(t, 70, last["marks"])
}

func TestDashboardQuizStats(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.signup(t, "asha@example.com")
	seedHistory(t, env, "asha@example.com")

	resp, body := env.get(t, "/api/dashboard/quiz-stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["quizzes"], 2)

	summary := body["stats"].(map[string]any)
	assert.EqualValues(t, 2, summary["totalQuizzes"])
	assert.InDelta(t, 0.75, summary["avgScore"], 1e-9)
	assert.Len(t, summary["topicStats"], 2)
}

func TestDashboardInterviewStats(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.signup(t, "asha@example.com")
	seedHistory(t, env, "asha@example.com")

	resp, body := env.get(t, "/api/dashboard/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["interviews"], 1)
	assert.Equal(t, []any{"Fractions"}, body["weakTopics"])

	summary := body["stats"].(map[string]any)
	assert.EqualValues(t, 1, summary["totalInterviews"])
	assert.InDelta(t, 0.7, summary["avgOverallScore"], 1e-9)
}

func TestDashboardCombinedStats(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.signup(t, "asha@example.com")
	seedHistory(t, env, "asha@example.com")

	resp, body := env.get(t, "/api/dashboard/combined-stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "asha@example.com", body["user"].(map[string]any)["email"])
	assert.Equal(t, true, body["hasQuizData"])
	assert.Equal(t, true, body["hasInterviewData"])

	performance := body["performanceData"].([]any)
	require.Len(t, performance, 3)
	types := make([]string, len(performance))
	for i, p := range performance {
		types[i] = p.(map[string]any)["type"].(string)
	}
	assert.Equal(t, []string{"Quiz", "Interview", "Quiz"}, types)

	summary := body["stats"].(map[string]any)
	assert.EqualValues(t, 2, summary["totalQuizzes"])
	assert.EqualValues(t, 1, summary["totalInterviews"])
}

func TestDashboardEmpty(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.signup(t, "asha@example.com")

	resp, body := env.get(t, "/api/dashboard/combined-stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["hasQuizData"])
	assert.Empty(t, body["performanceData"])
	assert.Empty(t, body["weakTopics"])
}
