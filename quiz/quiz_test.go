package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/atlaslearn/atlas/backend/llm"
	"github.com/atlaslearn/atlas/backend/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuizJSON(t *testing.T) string {
	t.Helper()
	q := Mock("Rivers")
	q.Questions[0] = "Which river is the longest?"
	b, err := json.Marshal(q)
	require.NoError(t, err)
	return string(b)
}

func TestMockSatisfiesSchema(t *testing.T) {
	q := Mock("Photosynthesis")

	raw, err := json.Marshal(q)
	require.NoError(t, err)
	require.NoError(t, llm.ValidateJSON(Schema, raw))

	assert.Len(t, q.Questions, QuestionCount)
	assert.Contains(t, q.Questions[0], "Photosynthesis")
	for i, choices := range q.Options.Choices {
		assert.Len(t, choices, ChoiceCount)
		assert.GreaterOrEqual(t, q.Answers[i], 0)
		assert.Less(t, q.Answers[i], ChoiceCount)
	}
}

func TestSchemaRejectsWrongShapes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Quiz)
	}{
		{"too few questions", func(q *Quiz) { q.Questions = q.Questions[:5] }},
		{"three choices", func(q *Quiz) { q.Options.Choices[2] = q.Options.Choices[2][:3] }},
		{"answer out of range", func(q *Quiz) { q.Answers[4] = 4 }},
		{"negative answer", func(q *Quiz) { q.Answers[0] = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Mock("Tides")
			tt.mutate(&q)
			raw, err := json.Marshal(q)
			require.NoError(t, err)
			assert.Error(t, llm.ValidateJSON(Schema, raw))
		})
	}
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("no provider", func(t *testing.T) {
		out := NewGenerator(nil).Generate(ctx, "Volcanoes")
		assert.True(t, out.IsFallback())
		assert.Equal(t, "unconfigured", out.Reason())
		assert.Equal(t, Mock("Volcanoes"), out.Value)
	})

	t.Run("fenced and wrapped reply", func(t *testing.T) {
		body := "```json\n{\"quizData\": " + validQuizJSON(t) + "}\n```"
		mock := llm.NewMockProvider(llm.Text(body))

		out := NewGenerator(mock).Generate(ctx, "Rivers")
		require.Equal(t, upstream.SourceUpstream, out.Source)
		assert.Equal(t, "Which river is the longest?", out.Value.Questions[0])

		req, ok := mock.LastCall()
		require.True(t, ok)
		assert.Same(t, Schema, req.Schema)
		assert.Contains(t, req.Messages[0].Content, "'Rivers'")
	})

	t.Run("schema violation", func(t *testing.T) {
		mock := llm.NewMockProvider(llm.Text(`{"questions": ["one"], "options": {"choices": []}, "answers": [0]}`))
		out := NewGenerator(mock).Generate(ctx, "Rivers")
		assert.True(t, out.IsFallback())
		assert.Equal(t, MockWarning, out.Warning)
		assert.Equal(t, llm.ReasonInvalidResponse, out.Reason())
		assert.Len(t, out.Value.Questions, QuestionCount)
	})

	t.Run("rate limited", func(t *testing.T) {
		mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("quota")}})
		out := NewGenerator(mock).Generate(ctx, "Rivers")
		assert.True(t, out.IsFallback())
		assert.Equal(t, llm.ReasonRateLimited, out.Reason())
	})

	t.Run("provider error", func(t *testing.T) {
		mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
		out := NewGenerator(mock).Generate(ctx, "Rivers")
		assert.True(t, out.IsFallback())
		assert.Equal(t, "unavailable", out.Reason())
	})
}
