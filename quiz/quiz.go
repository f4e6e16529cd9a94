// Package quiz generates multiple-choice quizzes and turns graded
// attempts into study suggestions.
package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/atlaslearn/atlas/backend/llm"
	"github.com/atlaslearn/atlas/backend/upstream"
)

const (
	QuestionCount = 10
	ChoiceCount   = 4

	MockWarning = "Using a sample quiz because quiz generation is unavailable."
)

// Quiz is the shape the client renders: answers index into choices.
type Quiz struct {
	Questions []string `json:"questions"`
	Options   Options  `json:"options"`
	Answers   []int    `json:"answers"`
}

type Options struct {
	Choices [][]string `json:"choices"`
}

// Schema is the contract every quiz, generated or mock, must satisfy.
var Schema = &llm.Schema{
	Name:        "quiz",
	Description: "Ten multiple-choice questions with four options and one correct answer index each",
	Envelope:    []string{"quizData"},
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"questions", "options", "answers"},
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": QuestionCount,
				"maxItems": QuestionCount,
				"items":    map[string]any{"type": "string", "minLength": 1},
			},
			"options": map[string]any{
				"type":     "object",
				"required": []any{"choices"},
				"properties": map[string]any{
					"choices": map[string]any{
						"type":     "array",
						"minItems": QuestionCount,
						"maxItems": QuestionCount,
						"items": map[string]any{
							"type":     "array",
							"minItems": ChoiceCount,
							"maxItems": ChoiceCount,
							"items":    map[string]any{"type": "string"},
						},
					},
				},
			},
			"answers": map[string]any{
				"type":     "array",
				"minItems": QuestionCount,
				"maxItems": QuestionCount,
				"items": map[string]any{
					"type":    "integer",
					"minimum": 0,
					"maximum": ChoiceCount - 1,
				},
			},
		},
	},
}

const quizSystem = "You are an AI quiz generator for school students. Respond with JSON only."

func quizPrompt(topic string) string {
	return fmt.Sprintf(`Given the topic '%s', generate exactly %d quiz questions with %d options each. Provide your output as a JSON object with three keys:
- questions: an array of %d question strings
- options: an object with a key "choices" that is an array of %d arrays (each inner array contains %d answer options)
- answers: an array of %d numbers corresponding to the correct option index (0-%d) for each question
Make sure your output matches this structure exactly and no additional text is added.`,
		topic, QuestionCount, ChoiceCount, QuestionCount, QuestionCount, ChoiceCount, QuestionCount, ChoiceCount-1)
}

// Generator produces quizzes from an LLM, falling back to Mock.
type Generator struct {
	provider llm.Provider
}

// NewGenerator accepts a nil provider; every quiz is then a mock.
func NewGenerator(provider llm.Provider) *Generator {
	return &Generator{provider: provider}
}

// Generate never fails: a missing provider, a provider error or an
// answer that breaks Schema all yield the mock quiz.
func (g *Generator) Generate(ctx context.Context, topic string) upstream.Outcome[Quiz] {
	if g.provider == nil {
		return upstream.Fallback(Mock(topic), MockWarning, nil)
	}

	req := llm.UserPrompt(quizSystem, quizPrompt(topic))
	req.Schema = Schema

	resp, err := g.provider.Generate(llm.WithPurpose(ctx, "quiz"), req)
	if err != nil {
		slog.Warn("Quiz generation failed, using mock quiz", "topic", topic, "error", err)
		return upstream.Fallback(Mock(topic), MockWarning, err)
	}

	var q Quiz
	if err := json.Unmarshal(resp.Content, &q); err != nil {
		slog.Warn("Failed to decode generated quiz, using mock quiz", "topic", topic, "error", err)
		return upstream.Fallback(Mock(topic), MockWarning, fmt.Errorf("failed to decode quiz: %w", err))
	}
	return upstream.Upstream(q)
}
