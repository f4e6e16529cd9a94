package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atlaslearn/atlas/backend/evaluator"
	"github.com/atlaslearn/atlas/backend/models"
	"github.com/atlaslearn/atlas/backend/repository"
	"github.com/atlaslearn/atlas/backend/upstream"
)

const maxRequestBytes = 1 << 20

// InterviewEndpoints proxies the interview service and evaluates locally
// when it cannot answer.
type InterviewEndpoints struct {
	client  *upstream.Client
	store   repository.Store
	newRand func() *rand.Rand
	now     func() time.Time
}

func NewInterviewEndpoints(client *upstream.Client, store repository.Store) *InterviewEndpoints {
	return &InterviewEndpoints{
		client: client,
		store:  store,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
		now: time.Now,
	}
}

// RegisterRoutes expects OptionalAuth upstream of r; history needs a
// signed-in user.
func (e *InterviewEndpoints) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/interview", func(r chi.Router) {
		r.Post("/start", e.StartHandler)
		r.Post("/feedback", e.FeedbackHandler)
		r.Post("/end", e.EndHandler)
		r.Get("/ping", e.PingHandler)
		r.Post("/process-frame", e.ProcessFrameHandler)
		r.With(requireAuth).Get("/history", e.HistoryHandler)
	})
}

// readJSONBody returns the raw body after checking it is JSON, so it can
// be forwarded byte for byte.
func readJSONBody(w http.ResponseWriter, r *http.Request, dst any) ([]byte, bool) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil || json.Unmarshal(raw, dst) != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid request format"})
		return nil, false
	}
	return raw, true
}

// interviewWarning explains a fallback. A service that answered with an
// error status gets its body quoted.
func interviewWarning(err error, unavailable, substitute string) string {
	var ue *upstream.Error
	if errors.As(err, &ue) && ue.Kind == upstream.KindStatus {
		return fmt.Sprintf("Flask API returned an error: %s. Using %s instead.", ue.Body, substitute)
	}
	return unavailable
}

type startResponse struct {
	evaluator.StartResult
	upstream.Meta
}

func (e *InterviewEndpoints) StartHandler(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	raw, ok := readJSONBody(w, r, &req)
	if !ok {
		return
	}

	out, _ := upstream.Resolve(r.Context(),
		func(ctx context.Context) (evaluator.StartResult, error) {
			var u evaluator.UpstreamStart
			if err := e.client.PostRaw(ctx, "/api/interview/start", raw, &u); err != nil {
				return evaluator.StartResult{}, err
			}
			return evaluator.FromUpstreamStart(u), nil
		},
		upstream.AnyFailure,
		func(error) evaluator.StartResult { return evaluator.MockStart(e.now()) },
		evaluator.StartWarning,
	)
	if out.IsFallback() {
		out.Warning = interviewWarning(out.Err, evaluator.StartWarning, "mock data")
	}

	writeOutcome(w, out, startResponse{StartResult: out.Value, Meta: out.Meta()})
}

type feedbackRequest struct {
	SessionID   evaluator.ID `json:"session_id"`
	QuestionIdx int          `json:"question_idx"`
	Question    string       `json:"question"`
	Answer      string       `json:"answer"`
}

type feedbackResponse struct {
	evaluator.FeedbackResult
	upstream.Meta
}

func (e *InterviewEndpoints) FeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	raw, ok := readJSONBody(w, r, &req)
	if !ok {
		return
	}

	out, _ := upstream.Resolve(r.Context(),
		func(ctx context.Context) (evaluator.FeedbackResult, error) {
			var u evaluator.UpstreamFeedback
			if err := e.client.PostRaw(ctx, "/api/interview/feedback", raw, &u); err != nil {
				return evaluator.FeedbackResult{}, err
			}
			return evaluator.FromUpstreamFeedback(u), nil
		},
		upstream.AnyFailure,
		func(error) evaluator.FeedbackResult {
			return evaluator.Feedback(e.newRand(), req.Question, req.Answer)
		},
		evaluator.FeedbackWarning,
	)
	if out.IsFallback() {
		out.Warning = interviewWarning(out.Err, evaluator.FeedbackWarning, "locally evaluated feedback")
	}

	writeOutcome(w, out, feedbackResponse{FeedbackResult: out.Value, Meta: out.Meta()})
}

type endRequest struct {
	SessionID   evaluator.ID   `json:"session_id"`
	InterviewID evaluator.ID   `json:"interview_id"`
	Questions   []evaluator.QA `json:"questions"`
	Email       string         `json:"email"`
}

func (r endRequest) id() string {
	if r.SessionID != "" {
		return r.SessionID.String()
	}
	return r.InterviewID.String()
}

type endResponse struct {
	evaluator.EndResult
	upstream.Meta
}

func (e *InterviewEndpoints) EndHandler(w http.ResponseWriter, r *http.Request) {
	var req endRequest
	raw, ok := readJSONBody(w, r, &req)
	if !ok {
		return
	}

	out, _ := upstream.Resolve(r.Context(),
		func(ctx context.Context) (evaluator.EndResult, error) {
			var u evaluator.UpstreamEnd
			if err := e.client.PostRaw(ctx, "/api/interview/end", raw, &u); err != nil {
				return evaluator.EndResult{}, err
			}
			return evaluator.FromUpstreamEnd(u), nil
		},
		upstream.AnyFailure,
		func(error) evaluator.EndResult {
			return evaluator.End(e.newRand(), req.id(), req.Questions, e.now())
		},
		evaluator.EndWarning,
	)
	if out.IsFallback() {
		out.Warning = interviewWarning(out.Err, evaluator.EndWarning, "locally evaluated data")
	}

	e.record(r.Context(), req.Email, out)
	writeOutcome(w, out, endResponse{EndResult: out.Value, Meta: out.Meta()})
}

// record stores the finished interview for its owner, if any. Failures
// are logged only.
func (e *InterviewEndpoints) record(ctx context.Context, email string, out upstream.Outcome[evaluator.EndResult]) {
	owner, err := resolveOwner(ctx, e.store, email)
	if err != nil {
		slog.Error("Failed to resolve interview owner", "error", err)
		return
	}
	if owner == nil {
		return
	}

	fb := out.Value.OverallFeedback
	record := &models.InterviewRecord{
		UserID:                owner.ID,
		Email:                 owner.Email,
		InterviewID:           out.Value.InterviewID.String(),
		ContentScore:          fb.ContentScore,
		CommunicationScore:    fb.CommunicationScore,
		OverallScore:          fb.OverallScore,
		ContentFeedback:       fb.ContentFeedback,
		CommunicationFeedback: fb.CommunicationFeedback,
		Strengths:             models.StringList(fb.Strengths),
		AreasForImprovement:   models.StringList(fb.AreasForImprovement),
		WeakAreas:             models.StringList(fb.WeakAreas),
		DetailedScores:        models.ScoreMap(fb.DetailedScores),
		Source:                string(out.Source),
		Timestamp:             e.now(),
	}
	if err := e.store.CreateInterviewRecord(ctx, record); err != nil {
		slog.Error("Failed to save interview record", "error", err, "user_id", owner.ID)
		return
	}
	slog.Info("Interview record saved", "user_id", owner.ID, "interview_id", record.InterviewID, "source", record.Source)
}

func (e *InterviewEndpoints) PingHandler(w http.ResponseWriter, r *http.Request) {
	if err := e.client.Get(r.Context(), "/api/ping", nil); err != nil {
		slog.Warn("Interview service ping failed", "kind", upstream.KindOf(err), "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ProcessFrameHandler relays analysis frames without any fallback.
func (e *InterviewEndpoints) ProcessFrameHandler(w http.ResponseWriter, r *http.Request) {
	reply, err := e.client.Forward(r.Context(), http.MethodPost, "/api/interview/process-frame", "application/json", io.LimitReader(r.Body, 10*maxRequestBytes))
	if err != nil {
		slog.Error("Failed to forward frame", "kind", upstream.KindOf(err), "error", err)
		writeError(w, http.StatusBadGateway, "Interview service unavailable")
		return
	}

	contentType := reply.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(reply.Status)
	w.Write(reply.Body)
}

func (e *InterviewEndpoints) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	records, err := e.store.ListInterviewRecords(r.Context(), user.ID, 0)
	if err != nil {
		slog.Error("Failed to list interviews", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Failed to load interview history")
		return
	}
	if records == nil {
		records = []models.InterviewRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"interviews": records})
}
