package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/atlaslearn/atlas/backend/llm"
	"github.com/atlaslearn/atlas/backend/models"
	"github.com/atlaslearn/atlas/backend/repository"
	"github.com/atlaslearn/atlas/backend/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdvisor(t *testing.T, provider llm.Provider) (*Advisor, *repository.MemoryRepository, *models.User) {
	t.Helper()
	store := repository.NewMemoryRepository()
	user := &models.User{Name: "Ravi", Email: "ravi@example.com", WeakTopics: models.StringList{"Algebra"}}
	require.NoError(t, store.CreateUser(context.Background(), user))

	a := NewAdvisor(provider, store)
	a.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }
	return a, store, user
}

func TestSuggestPerfectScore(t *testing.T) {
	mock := llm.NewMockProvider()
	a, store, user := newTestAdvisor(t, mock)
	ctx := context.Background()

	r := Result{Topic: "Fractions", TotalQuestions: 10}
	out := a.Suggest(ctx, r)

	assert.Equal(t, upstream.SourceLocal, out.Source)
	assert.Equal(t, []string{"Fractions"}, out.Value.Topics)
	assert.Contains(t, out.Value.Suggestion, "perfect score on the Fractions quiz")
	assert.Zero(t, mock.CallCount())

	saved, err := a.Record(ctx, user, r, out)
	require.NoError(t, err)
	assert.True(t, saved.IsPerfectScore)
	assert.Equal(t, 1.0, saved.Score)
	assert.Equal(t, 10, saved.CorrectAnswers)
	assert.Empty(t, saved.WeakTopics)

	got, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"Algebra"}, got.WeakTopics)
}

func TestSuggestWithoutProvider(t *testing.T) {
	a, store, user := newTestAdvisor(t, nil)
	ctx := context.Background()

	r := Result{IncorrectQuestions: []string{"What is 2+2?"}}
	out := a.Suggest(ctx, r)

	require.True(t, out.IsFallback())
	assert.Equal(t, []string{DefaultTopic}, out.Value.Topics)
	assert.Contains(t, out.Value.Suggestion, "quiz results on General Knowledge")

	saved, err := a.Record(ctx, user, r, out)
	require.NoError(t, err)
	assert.True(t, saved.IsFallback)
	assert.Empty(t, saved.Error)
	assert.Equal(t, DefaultTotalQuestions, saved.TotalQuestions)
	assert.InDelta(t, 0.8, saved.Score, 1e-9)

	got, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"Algebra", DefaultTopic}, got.WeakTopics)
}

func TestSuggestProviderFailureRecordsError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: errors.New("quota exhausted")})
	a, _, user := newTestAdvisor(t, mock)
	ctx := context.Background()

	r := Result{Topic: "Optics", IncorrectQuestions: []string{"a", "b"}, TotalQuestions: 4}
	out := a.Suggest(ctx, r)
	require.True(t, out.IsFallback())

	saved, err := a.Record(ctx, user, r, out)
	require.NoError(t, err)
	assert.Equal(t, "quota exhausted", saved.Error)
	assert.Equal(t, 2, saved.CorrectAnswers)
	assert.InDelta(t, 0.5, saved.Score, 1e-9)
}

func TestSuggestFromModel(t *testing.T) {
	mock := llm.NewMockProvider(llm.Text("```json\n{\"suggestion\": \"Revisit lenses.\", \"topics\": [\"Lenses\", \"Algebra\"]}\n```"))
	a, store, user := newTestAdvisor(t, mock)
	ctx := context.Background()

	r := Result{Topic: "Optics", IncorrectQuestions: []string{"What does a convex lens do?"}, TotalQuestions: 10}
	out := a.Suggest(ctx, r)

	require.Equal(t, upstream.SourceUpstream, out.Source)
	assert.Equal(t, "Revisit lenses.", out.Value.Suggestion)

	req, ok := mock.LastCall()
	require.True(t, ok)
	assert.Contains(t, req.Messages[0].Content, "- What does a convex lens do?")

	_, err := a.Record(ctx, user, r, out)
	require.NoError(t, err)

	got, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"Algebra", "Lenses"}, got.WeakTopics)

	results, err := store.ListQuizResults(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StringList{"Lenses", "Algebra"}, results[0].WeakTopics)
}

func TestSuggestionPretty(t *testing.T) {
	s := Suggestion{Suggestion: "Practice.", Topics: []string{"Maps"}}
	want := "{\n  \"suggestion\": \"Practice.\",\n  \"topics\": [\n    \"Maps\"\n  ]\n}"
	assert.Equal(t, want, s.Pretty())

	var back Suggestion
	require.NoError(t, json.Unmarshal([]byte(s.Pretty()), &back))
	assert.Equal(t, s, back)
}
