package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlaslearn/atlas/backend/evaluator"
	"github.com/atlaslearn/atlas/backend/interviewsvc"
	"github.com/atlaslearn/atlas/backend/models"
)

func interviewService(t *testing.T) string {
	t.Helper()
	svc := interviewsvc.NewService(rand.New(rand.NewPCG(1, 2)))
	srv := httptest.NewServer(svc.Routes())
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestInterviewStartFallsBackWhenServiceDown(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	resp, body := env.post(t, "/api/interview/start", map[string]string{"type": "technical"})
	require.Equal(t, http.StatusNonAuthoritativeInfo, resp.StatusCode)
	assert.Equal(t, "transport", resp.Header.Get(FallbackHeader))
	assert.Equal(t, "fallback", body["source"])
	assert.Equal(t, evaluator.StartWarning, body["warning"])
	assert.Contains(t, body["interview_id"], "mock-interview-")
	assert.Len(t, body["questions"], len(evaluator.MockQuestions()))
}

func TestInterviewStartQuotesServiceError(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	t.Cleanup(failing.Close)
	env := newTestEnv(t, envOptions{interviewURL: failing.URL})

	resp, body := env.post(t, "/api/interview/start", map[string]string{"type": "hr"})
	require.Equal(t, http.StatusNonAuthoritativeInfo, resp.StatusCode)
	assert.Equal(t, "status", resp.Header.Get(FallbackHeader))
	assert.Equal(t, "Flask API returned an error: model not loaded. Using mock data instead.", body["warning"])
}

func TestInterviewRejectsInvalidBody(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/interview/start", nil)
	require.NoError(t, err)
	resp, err := env.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInterviewFlowThroughService(t *testing.T) {
	env := newTestEnv(t, envOptions{interviewURL: interviewService(t)})
	env.signup(t, "asha@example.com")

	resp, start := env.post(t, "/api/interview/start", map[string]string{"type": "technical"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "upstream", start["source"])
	assert.NotContains(t, start, "warning")
	id := start["interview_id"]
	questions := start["questions"].([]any)
	require.NotEmpty(t, questions)

	resp, fb := env.post(t, "/api/interview/feedback", map[string]any{
		"session_id":   id,
		"question_idx": 0,
		"question":     questions[0],
		"answer":       "I built a caching layer that cut response times in half. It used a write-through strategy.",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "upstream", fb["source"])
	assert.Contains(t, fb, "detailed_scores")

	resp, end := env.post(t, "/api/interview/end", map[string]any{"session_id": id})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "upstream", end["source"])

	resp, history := env.get(t, "/api/interview/history")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	records := history["interviews"].([]any)
	require.Len(t, records, 1)
	assert.Equal(t, fmt.Sprint(id), records[0].(map[string]any)["interview_id"])
}

func TestInterviewEndFallbackRecordsByEmail(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ctx := context.Background()
	require.NoError(t, env.store.CreateUser(ctx, &models.User{Name: "Ravi", Email: "ravi@example.com", Password: "x"}))

	resp, body := env.post(t, "/api/interview/end", map[string]any{
		"session_id": "mock-interview-1",
		"email":      "Ravi@example.com",
		"questions": []map[string]string{
			{"question": "Why do you want this job?", "answer": "I enjoy solving problems for students. I have taught maths for two years."},
			{"question": "Where do you see yourself in 5 years?", "answer": ""},
		},
	})
	require.Equal(t, http.StatusNonAuthoritativeInfo, resp.StatusCode)
	assert.Equal(t, evaluator.EndWarning, body["warning"])
	assert.Equal(t, "mock-interview-1", body["interview_id"])

	user, err := env.store.GetUserByEmail(ctx, "ravi@example.com")
	require.NoError(t, err)
	records, err := env.store.ListInterviewRecords(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "fallback", records[0].Source)
	assert.Equal(t, "mock-interview-1", records[0].InterviewID)
}

func TestInterviewPing(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	resp, body := env.get(t, "/api/interview/ping")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "unavailable", body["status"])

	env = newTestEnv(t, envOptions{interviewURL: interviewService(t)})
	resp, body = env.get(t, "/api/interview/ping")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestProcessFrameRelaysUpstreamReply(t *testing.T) {
	var forwarded map[string]any
	interviewSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/interview/process-frame", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&forwarded))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"eye_contact":0.8,"posture":"upright","queued":true}`))
	}))
	t.Cleanup(interviewSrv.Close)
	env := newTestEnv(t, envOptions{interviewURL: interviewSrv.URL})

	resp, body := env.post(t, "/api/interview/process-frame", map[string]any{"session_id": "s-1", "frame": "aGVsbG8="})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(FallbackHeader))
	assert.Equal(t, map[string]any{"eye_contact": 0.8, "posture": "upright", "queued": true}, body)
	assert.Equal(t, "s-1", forwarded["session_id"])
	assert.Equal(t, "aGVsbG8=", forwarded["frame"])
}

func TestProcessFrameRelaysUpstreamErrorUnchanged(t *testing.T) {
	interviewSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte("no face detected"))
	}))
	t.Cleanup(interviewSrv.Close)
	env := newTestEnv(t, envOptions{interviewURL: interviewSrv.URL})

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/interview/process-frame", nil)
	require.NoError(t, err)
	resp, err := env.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "no face detected", string(raw))
}

func TestProcessFrameUnavailable(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	resp, body := env.post(t, "/api/interview/process-frame", map[string]any{"frame": "aGVsbG8="})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Interview service unavailable", body["error"])
}
