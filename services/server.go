package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/atlaslearn/atlas/backend/llm"
	"github.com/atlaslearn/atlas/backend/quiz"
	"github.com/atlaslearn/atlas/backend/repository"
	"github.com/atlaslearn/atlas/backend/sarvam"
	"github.com/atlaslearn/atlas/backend/upstream"
	ws "github.com/atlaslearn/atlas/backend/websocket"
)

// Server holds all server dependencies
type Server struct {
	config             *Config
	store              repository.Store
	provider           llm.Provider
	validator          *Validator
	authService        *AuthService
	authEndpoints      *AuthEndpoints
	quizEndpoints      *QuizEndpoints
	interviewEndpoints *InterviewEndpoints
	summarizeEndpoints *SummarizeEndpoints
	voiceEndpoints     *VoiceEndpoints
	chatEndpoints      *ChatEndpoints
	dashboardEndpoints *DashboardEndpoints
	wsHub              *ws.Hub
}

// NewServer creates a new server instance on top of an open store.
func NewServer(config *Config, store repository.Store) *Server {
	return &Server{config: config, store: store}
}

// SetProvider overrides the LLM provider InitializeServices would build.
func (s *Server) SetProvider(p llm.Provider) {
	s.provider = p
}

// InitializeServices initializes all server services
func (s *Server) InitializeServices(ctx context.Context) error {
	if s.provider == nil {
		provider, err := llm.NewProvider(ctx, s.config.AI)
		if err != nil {
			return fmt.Errorf("failed to initialize LLM provider: %w", err)
		}
		s.provider = provider
	}

	secret := s.config.JWT.Secret
	if secret == "" {
		if s.config.Server.Production() {
			return errors.New("JWT secret is required in production")
		}
		generated, err := randomSecret()
		if err != nil {
			return err
		}
		secret = generated
		slog.Warn("JWT secret not configured, using a random development secret; sessions will not survive a restart")
	}

	s.validator = NewValidator()
	s.authService = NewAuthService(s.store, secret, s.config.Server.Production())
	s.authEndpoints = NewAuthEndpoints(s.authService, s.validator)
	slog.Info("Authentication service initialized")

	s.quizEndpoints = NewQuizEndpoints(quiz.NewGenerator(s.provider), quiz.NewAdvisor(s.provider, s.store), s.store)

	up := s.config.Upstream
	s.interviewEndpoints = NewInterviewEndpoints(upstream.NewClient(up.InterviewURL, up.InterviewTimeout), s.store)
	s.summarizeEndpoints = NewSummarizeEndpoints(upstream.NewClient(up.SummarizerURL, up.SummarizerTimeout))
	slog.Info("Upstream services configured", "interview_url", up.InterviewURL, "summarizer_url", up.SummarizerURL)

	speech := sarvam.NewClient(s.config.Sarvam)
	if speech.Mock() {
		slog.Warn("Sarvam API key not configured, voice assistant runs in mock mode")
	}
	assistant := NewAssistant(s.provider, s.store, nil)
	cache := NewAudioCache(s.config.Audio.CacheDir, AssistantPhrases...)
	s.voiceEndpoints = NewVoiceEndpoints(assistant, speech, cache)

	s.wsHub = ws.NewHub()
	go s.wsHub.Run(ctx)
	s.chatEndpoints = NewChatEndpoints(assistant, s.validator, s.wsHub, s.config.WebSocket.AllowedOrigins)

	s.dashboardEndpoints = NewDashboardEndpoints(s.store)
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.healthHandler)

	r.Route("/api", func(r chi.Router) {
		s.authEndpoints.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(s.authService.OptionalAuth)
			s.quizEndpoints.RegisterRoutes(r)
			s.interviewEndpoints.RegisterRoutes(r, s.authService.RequireAuth)
			s.summarizeEndpoints.RegisterRoutes(r)
			s.voiceEndpoints.RegisterRoutes(r)
			s.chatEndpoints.RegisterRoutes(r, s.authService.RequireAuth)
			s.dashboardEndpoints.RegisterRoutes(r, s.authService.RequireAuth)
		})
	})

	return r
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return err
	}

	slog.Info("Server exited")
	return nil
}

// CheckOrigin validates the origin of WebSocket connections to prevent CSRF attacks
func CheckOrigin(r *http.Request, allowedOriginsStr string) bool {
	origin := r.Header.Get("Origin")

	// If no allowed origins are configured, deny all requests for security
	if allowedOriginsStr == "" {
		slog.Warn("WebSocket connection rejected: no allowed origins configured", "origin", origin)
		return false
	}

	for _, allowed := range strings.Split(allowedOriginsStr, ",") {
		if strings.TrimSpace(allowed) == origin {
			slog.Info("WebSocket connection accepted", "origin", origin)
			return true
		}
	}

	slog.Warn("WebSocket connection rejected: origin not allowed", "origin", origin, "allowed_origins", allowedOriginsStr)
	return false
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "not configured"

	if s.store != nil && s.config.Database.ResolveDriver() != DriverMemory {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			slog.Warn("Database ping failed", "error", err)
			dbStatus = "down"
			status = "degraded"
		} else {
			dbStatus = "up"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": status, "database": dbStatus})
	slog.Info("Health check", "status", status, "database", dbStatus)
}
