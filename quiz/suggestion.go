package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atlaslearn/atlas/backend/llm"
	"github.com/atlaslearn/atlas/backend/models"
	"github.com/atlaslearn/atlas/backend/repository"
	"github.com/atlaslearn/atlas/backend/upstream"
)

const (
	DefaultTopic          = "General Knowledge"
	DefaultTotalQuestions = 5

	SuggestionWarning = "Using a general suggestion because the AI tutor is unavailable."
)

// Result is one graded attempt as reported by the client.
type Result struct {
	Topic              string
	IncorrectQuestions []string
	TotalQuestions     int
}

func (r Result) withDefaults() Result {
	if strings.TrimSpace(r.Topic) == "" {
		r.Topic = DefaultTopic
	}
	if r.TotalQuestions <= 0 {
		r.TotalQuestions = DefaultTotalQuestions
	}
	if r.IncorrectQuestions == nil {
		r.IncorrectQuestions = []string{}
	}
	return r
}

func (r Result) correct() int {
	return max(r.TotalQuestions-len(r.IncorrectQuestions), 0)
}

func (r Result) score() float64 {
	if r.TotalQuestions <= 0 {
		return 0
	}
	return float64(r.correct()) / float64(r.TotalQuestions)
}

// Suggestion is the study advice and the topics it names as weak.
type Suggestion struct {
	Suggestion string   `json:"suggestion"`
	Topics     []string `json:"topics"`
}

// Pretty is the two-space indented JSON the client parses.
func (s Suggestion) Pretty() string {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return s.Suggestion
	}
	return string(b)
}

var suggestionSchema = &llm.Schema{
	Name:        "quiz_suggestion",
	Description: "Study advice and weak topics for a graded quiz",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"suggestion"},
		"properties": map[string]any{
			"suggestion": map[string]any{"type": "string", "minLength": 1},
			"topics": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
	},
}

const suggestionSystem = "You are a professional, friendly teacher. Respond with JSON only."

func suggestionPrompt(r Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A student took a quiz on %q and answered some questions incorrectly.\n", r.Topic)
	b.WriteString("Here are the questions that were answered incorrectly:\n")
	for _, q := range r.IncorrectQuestions {
		fmt.Fprintf(&b, "- %s\n", q)
	}
	b.WriteString(`
Please analyze these questions and determine which topics the student is weak in. Then, provide clear suggestions on how the student can improve and list out the weak topics in an array. Give suggestion in a friendly and polite manner and specify the topics on which the student should focus more.

Respond strictly in JSON format as:
{
  "suggestion": "the actual suggestion",
  "topics": ["topic1", "topic2", ...]
}`)
	return b.String()
}

func perfectSuggestion(topic string) Suggestion {
	return Suggestion{
		Suggestion: fmt.Sprintf("Congratulations! You got a perfect score on the %s quiz. Keep up the great work!", topic),
		Topics:     []string{topic},
	}
}

func defaultSuggestion(topic string) Suggestion {
	return Suggestion{
		Suggestion: fmt.Sprintf("Based on your quiz results on %s, we recommend focusing on the core concepts and principles. Review the questions you missed and try to understand the underlying concepts. Consider using additional learning resources to strengthen your knowledge in this area.", topic),
		Topics:     []string{topic},
	}
}

// Advisor turns quiz results into suggestions and records them.
type Advisor struct {
	provider llm.Provider
	store    repository.Store
	now      func() time.Time
}

// NewAdvisor accepts a nil provider; suggestions are then the default text.
func NewAdvisor(provider llm.Provider, store repository.Store) *Advisor {
	return &Advisor{provider: provider, store: store, now: time.Now}
}

// Suggest returns the advice for r. A perfect score is answered locally
// without asking the model.
func (a *Advisor) Suggest(ctx context.Context, r Result) upstream.Outcome[Suggestion] {
	r = r.withDefaults()

	if len(r.IncorrectQuestions) == 0 {
		return upstream.Local(perfectSuggestion(r.Topic))
	}
	if a.provider == nil {
		return upstream.Fallback(defaultSuggestion(r.Topic), SuggestionWarning, nil)
	}

	req := llm.UserPrompt(suggestionSystem, suggestionPrompt(r))
	req.Schema = suggestionSchema

	resp, err := a.provider.Generate(llm.WithPurpose(ctx, "quiz_suggestion"), req)
	if err != nil {
		slog.Warn("Suggestion generation failed, using default", "topic", r.Topic, "error", err)
		return upstream.Fallback(defaultSuggestion(r.Topic), SuggestionWarning, err)
	}

	var s Suggestion
	if err := json.Unmarshal(resp.Content, &s); err != nil {
		return upstream.Fallback(defaultSuggestion(r.Topic), SuggestionWarning, fmt.Errorf("failed to decode suggestion: %w", err))
	}
	if s.Topics == nil {
		s.Topics = []string{}
	}
	return upstream.Upstream(s)
}

// Record stores the attempt for user and merges the new weak topics into
// the user's profile. A perfect score adds no weak topics.
func (a *Advisor) Record(ctx context.Context, user *models.User, r Result, out upstream.Outcome[Suggestion]) (*models.QuizResult, error) {
	r = r.withDefaults()

	result := &models.QuizResult{
		UserID:             user.ID,
		Email:              user.Email,
		Topic:              r.Topic,
		TotalQuestions:     r.TotalQuestions,
		CorrectAnswers:     r.correct(),
		IncorrectQuestions: models.StringList(r.IncorrectQuestions),
		Score:              r.score(),
		Suggestion:         out.Value.Suggestion,
		WeakTopics:         models.StringList(out.Value.Topics),
		Timestamp:          a.now(),
	}

	switch out.Source {
	case upstream.SourceLocal:
		result.CorrectAnswers = r.TotalQuestions
		result.Score = 1.0
		result.WeakTopics = models.StringList{}
		result.IsPerfectScore = true
	case upstream.SourceFallback:
		result.IsFallback = true
		if out.Err != nil {
			result.Error = out.Err.Error()
		}
	}
	if result.WeakTopics == nil {
		result.WeakTopics = models.StringList{}
	}

	if err := a.store.CreateQuizResult(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to save quiz result: %w", err)
	}

	if len(result.WeakTopics) > 0 {
		merged, err := a.store.MergeWeakTopics(ctx, user.ID, result.WeakTopics)
		if err != nil {
			return result, fmt.Errorf("failed to merge weak topics: %w", err)
		}
		slog.Info("Updated weak topics", "user_id", user.ID, "topics", merged)
	}

	return result, nil
}
