package services

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/atlaslearn/atlas/backend/quiz"
	"github.com/atlaslearn/atlas/backend/repository"
	"github.com/atlaslearn/atlas/backend/upstream"
)

type QuizEndpoints struct {
	generator *quiz.Generator
	advisor   *quiz.Advisor
	store     repository.Store
}

func NewQuizEndpoints(generator *quiz.Generator, advisor *quiz.Advisor, store repository.Store) *QuizEndpoints {
	return &QuizEndpoints{generator: generator, advisor: advisor, store: store}
}

// RegisterRoutes expects OptionalAuth upstream of r.
func (e *QuizEndpoints) RegisterRoutes(r chi.Router) {
	r.Post("/quiz", e.GenerateHandler)
	r.Post("/result", e.ResultHandler)
}

type quizRequest struct {
	Topic string `json:"topic"`
}

type quizResponse struct {
	quiz.Quiz
	upstream.Meta
}

func (e *QuizEndpoints) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		writeError(w, http.StatusBadRequest, "Topic is required")
		return
	}

	out := e.generator.Generate(r.Context(), topic)
	writeOutcome(w, out, quizResponse{Quiz: out.Value, Meta: out.Meta()})
}

type resultRequest struct {
	Topic              string   `json:"topic"`
	IncorrectQuestions []string `json:"incorrectQuestions"`
	TotalQuestions     int      `json:"totalQuestions"`
	Email              string   `json:"email"`
}

type resultResponse struct {
	Suggestion string `json:"suggestion"`
	upstream.Meta
}

func (e *QuizEndpoints) ResultHandler(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result := quiz.Result{
		Topic:              req.Topic,
		IncorrectQuestions: req.IncorrectQuestions,
		TotalQuestions:     req.TotalQuestions,
	}
	out := e.advisor.Suggest(r.Context(), result)

	owner, err := resolveOwner(r.Context(), e.store, req.Email)
	switch {
	case err != nil:
		slog.Error("Failed to resolve quiz owner", "error", err, "email", req.Email)
	case owner == nil:
		slog.Info("Quiz result not saved, no owner", "topic", req.Topic)
	default:
		if _, err := e.advisor.Record(r.Context(), owner, result, out); err != nil {
			slog.Error("Failed to save quiz result", "error", err, "user_id", owner.ID)
		}
	}

	writeOutcome(w, out, resultResponse{Suggestion: out.Value.Pretty(), Meta: out.Meta()})
}
