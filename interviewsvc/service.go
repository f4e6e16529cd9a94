// Package interviewsvc is a self-contained mock of the interview
// service: it hands out questions, grades answers on a 0..10 scale and
// summarizes whole interviews. The API server treats it as its
// interview upstream.
package interviewsvc

import (
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/atlaslearn/atlas/backend/evaluator"
)

const errInvalidSession = "Invalid or expired session ID"

type Service struct {
	sessions *SessionStore
}

func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	return &Service{sessions: NewSessionStore(rng)}
}

func (s *Service) Sessions() *SessionStore {
	return s.sessions
}

// Routes returns the service's full HTTP surface.
func (s *Service) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(allowAllOrigins)

	s.RegisterRoutes(r)
	return r
}

func (s *Service) RegisterRoutes(r chi.Router) {
	r.Get("/api/ping", s.PingHandler)
	r.Route("/api/interview", func(r chi.Router) {
		r.Post("/start", s.StartHandler)
		r.Post("/process-frame", s.ProcessFrameHandler)
		r.Post("/process-audio", s.ProcessAudioHandler)
		r.Post("/feedback", s.FeedbackHandler)
		r.Post("/end", s.EndHandler)
	})
}

func allowAllOrigins(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func sessionID(id evaluator.ID) (int, bool) {
	n, err := strconv.Atoi(id.String())
	return n, err == nil
}

func (s *Service) PingHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": "ok", "sessions": s.sessions.Len()})
}

type startRequest struct {
	Type string `json:"type"`
}

func (s *Service) StartHandler(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if req.Type == "" {
		req.Type = "general"
	}

	session := s.sessions.Register(req.Type, pickQuestions(req.Type))
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"interview_id": session.ID,
		"questions":    session.Questions,
	})
}

type sampleRequest struct {
	SessionID   evaluator.ID `json:"session_id"`
	QuestionIdx int          `json:"question_idx"`
}

func (s *Service) ProcessFrameHandler(w http.ResponseWriter, r *http.Request) {
	s.processSample(w, r, func(session *Session, rng *rand.Rand, idx int) map[string]float64 {
		scores := frameScores(rng)
		session.Video[idx] = scores
		return scores
	})
}

func (s *Service) ProcessAudioHandler(w http.ResponseWriter, r *http.Request) {
	s.processSample(w, r, func(session *Session, rng *rand.Rand, idx int) map[string]float64 {
		scores := audioScores(rng)
		session.Audio[idx] = scores
		return scores
	})
}

func (s *Service) processSample(w http.ResponseWriter, r *http.Request, analyze func(*Session, *rand.Rand, int) map[string]float64) {
	var req sampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	id, ok := sessionID(req.SessionID)
	if !ok {
		writeFailure(w, http.StatusBadRequest, errInvalidSession)
		return
	}

	var scores map[string]float64
	badIndex := false
	found := s.sessions.Update(id, func(session *Session, rng *rand.Rand) {
		if req.QuestionIdx < 0 || req.QuestionIdx >= len(session.Questions) {
			badIndex = true
			return
		}
		scores = analyze(session, rng, req.QuestionIdx)
	})
	switch {
	case !found:
		writeFailure(w, http.StatusBadRequest, errInvalidSession)
	case badIndex:
		writeFailure(w, http.StatusBadRequest, "Invalid question index")
	default:
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "scores": scores})
	}
}

type feedbackRequest struct {
	SessionID   evaluator.ID       `json:"session_id"`
	QuestionIdx int                `json:"question_idx"`
	Question    string             `json:"question"`
	Answer      string             `json:"answer"`
	VideoData   map[string]float64 `json:"video_data"`
	AudioData   map[string]float64 `json:"audio_data"`
}

// observed merges client-aggregated metrics over the samples recorded
// for the question; the client's values win.
func (req feedbackRequest) observed(session *Session) map[string]float64 {
	out := map[string]float64{}
	for _, src := range []map[string]float64{session.Video[req.QuestionIdx], session.Audio[req.QuestionIdx], req.VideoData, req.AudioData} {
		for k, v := range src {
			out[k] = v
		}
	}
	return out
}

func (s *Service) FeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	id, ok := sessionID(req.SessionID)
	if !ok {
		writeFailure(w, http.StatusBadRequest, errInvalidSession)
		return
	}

	var fb *answerFeedback
	badIndex := false
	found := s.sessions.Update(id, func(session *Session, rng *rand.Rand) {
		if req.QuestionIdx < 0 || req.QuestionIdx >= len(session.Questions) {
			badIndex = true
			return
		}
		question := req.Question
		if question == "" {
			question = session.Questions[req.QuestionIdx]
		}
		fb = scoreAnswer(rng, question, req.Answer, req.observed(session))
		session.Answers[req.QuestionIdx] = req.Answer
		session.Feedback[req.QuestionIdx] = fb
	})
	switch {
	case !found:
		writeFailure(w, http.StatusBadRequest, errInvalidSession)
	case badIndex:
		writeFailure(w, http.StatusBadRequest, "Invalid question index")
	default:
		writeJSON(w, http.StatusOK, struct {
			Success bool `json:"success"`
			answerFeedback
		}{true, *fb})
	}
}

type endRequest struct {
	SessionID evaluator.ID `json:"session_id"`
}

func (s *Service) EndHandler(w http.ResponseWriter, r *http.Request) {
	var req endRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	id, ok := sessionID(req.SessionID)
	if !ok {
		writeFailure(w, http.StatusBadRequest, errInvalidSession)
		return
	}

	var summary *endSummary
	found := s.sessions.Update(id, func(session *Session, rng *rand.Rand) {
		session.EndTime = s.sessions.now()
		summary = summarize(rng, session.Feedback)
	})
	if !found {
		writeFailure(w, http.StatusBadRequest, errInvalidSession)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success     bool `json:"success"`
		InterviewID int  `json:"interview_id"`
		endSummary
	}{true, id, *summary})
}
