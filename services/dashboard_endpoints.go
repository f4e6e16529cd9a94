package services

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atlaslearn/atlas/backend/models"
	"github.com/atlaslearn/atlas/backend/repository"
	"github.com/atlaslearn/atlas/backend/stats"
)

type DashboardEndpoints struct {
	store repository.Store
}

func NewDashboardEndpoints(store repository.Store) *DashboardEndpoints {
	return &DashboardEndpoints{store: store}
}

// RegisterRoutes mounts the dashboard; every route needs a signed-in user.
func (e *DashboardEndpoints) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", e.DashboardHandler)
		r.Get("/stats", e.StatsHandler)
		r.Get("/quiz-stats", e.QuizStatsHandler)
		r.Get("/combined-stats", e.CombinedStatsHandler)
	})
}

// load fetches the user's history, writing the error response itself.
func (e *DashboardEndpoints) load(w http.ResponseWriter, r *http.Request, quizzes, interviews bool) (*models.User, []models.QuizResult, []models.InterviewRecord, bool) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return nil, nil, nil, false
	}

	var (
		qs  []models.QuizResult
		ivs []models.InterviewRecord
		err error
	)
	if quizzes {
		if qs, err = e.store.ListQuizResults(r.Context(), user.ID); err != nil {
			slog.Error("Failed to list quiz results", "error", err, "user_id", user.ID)
			writeError(w, http.StatusInternalServerError, "Failed to fetch dashboard data")
			return nil, nil, nil, false
		}
	}
	if interviews {
		if ivs, err = e.store.ListInterviewRecords(r.Context(), user.ID, 0); err != nil {
			slog.Error("Failed to list interview records", "error", err, "user_id", user.ID)
			writeError(w, http.StatusInternalServerError, "Failed to fetch dashboard data")
			return nil, nil, nil, false
		}
	}
	if qs == nil {
		qs = []models.QuizResult{}
	}
	if ivs == nil {
		ivs = []models.InterviewRecord{}
	}
	return user, qs, ivs, true
}

func userTopics(u *models.User) []string {
	if u.WeakTopics == nil {
		return []string{}
	}
	return u.WeakTopics
}

func (e *DashboardEndpoints) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	user, quizzes, interviews, ok := e.load(w, r, true, true)
	if !ok {
		return
	}

	latest := stats.Latest(interviews)
	writeJSON(w, http.StatusOK, map[string]any{
		"user":             map[string]string{"name": displayName(user)},
		"performanceData":  stats.Performance(quizzes, interviews),
		"weakTopics":       stats.WeakTopics(user.WeakTopics, latest),
		"interviewData":    latest,
		"hasInterviewData": len(latest) > 0,
	})
}

func (e *DashboardEndpoints) StatsHandler(w http.ResponseWriter, r *http.Request) {
	user, _, interviews, ok := e.load(w, r, false, true)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"interviews": interviews,
		"weakTopics": userTopics(user),
		"stats":      stats.Interviews(interviews),
	})
}

func (e *DashboardEndpoints) QuizStatsHandler(w http.ResponseWriter, r *http.Request) {
	_, quizzes, _, ok := e.load(w, r, true, false)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"quizzes": quizzes,
		"stats":   stats.Quizzes(quizzes),
	})
}

func (e *DashboardEndpoints) CombinedStatsHandler(w http.ResponseWriter, r *http.Request) {
	user, quizzes, interviews, ok := e.load(w, r, true, true)
	if !ok {
		return
	}

	performance, summary := stats.Combined(quizzes, interviews, userTopics(user))
	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"user":             map[string]string{"name": displayName(user), "email": user.Email},
		"performanceData":  performance,
		"quizzes":          quizzes,
		"interviews":       interviews,
		"weakTopics":       summary.WeakTopics,
		"stats":            summary,
		"hasInterviewData": len(interviews) > 0,
		"hasQuizData":      len(quizzes) > 0,
	})
}
