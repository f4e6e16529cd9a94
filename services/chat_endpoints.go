package services

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/atlaslearn/atlas/backend/models"
	"github.com/atlaslearn/atlas/backend/repository"
	"github.com/atlaslearn/atlas/backend/sarvam"
	"github.com/atlaslearn/atlas/backend/upstream"
	ws "github.com/atlaslearn/atlas/backend/websocket"
)

const (
	chatSessionID       = "chat"
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type ChatEndpoints struct {
	assistant *Assistant
	validator *Validator
	hub       *ws.Hub
	handler   *WebSocketHandler
	upgrader  websocket.Upgrader
}

func NewChatEndpoints(assistant *Assistant, validator *Validator, hub *ws.Hub, allowedOrigins string) *ChatEndpoints {
	return &ChatEndpoints{
		assistant: assistant,
		validator: validator,
		hub:       hub,
		handler:   NewWebSocketHandler(assistant),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return CheckOrigin(r, allowedOrigins)
			},
		},
	}
}

// RegisterRoutes expects OptionalAuth upstream of r.
func (e *ChatEndpoints) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/chat", func(r chi.Router) {
		r.Post("/", e.ChatHandler)
		r.With(requireAuth).Get("/history", e.HistoryHandler)
		r.With(requireAuth).Get("/ws", e.WebSocketHandler)
	})
}

type chatRequest struct {
	Message string `json:"message"`
	Email   string `json:"email" validate:"omitempty,email"`
}

type chatResponse struct {
	Reply
	upstream.Meta
}

func (e *ChatEndpoints) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !e.validator.decodeAndValidate(w, r, &req) {
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	ctx := r.Context()
	if _, ok := UserFromContext(ctx); !ok && req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}
	owner, err := resolveOwner(ctx, e.assistant.store, req.Email)
	if err != nil {
		slog.Error("Failed to resolve chat user", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}

	profile := profileOf(owner)
	out := e.assistant.Answer(ctx, profile, req.Message, false)
	e.assistant.Remember(ctx, profile, chatSessionID, sarvam.DefaultLanguage, req.Message, out.Value)

	writeOutcome(w, out, chatResponse{Reply: out.Value, Meta: out.Meta()})
}

func (e *ChatEndpoints) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	recent, err := e.assistant.store.GetRecentChatMessages(r.Context(), user.ID, limit)
	if err != nil {
		slog.Error("Failed to load chat history", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Failed to load chat history")
		return
	}
	messages := repository.ChronologicalOrder(recent)
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// WebSocketHandler upgrades the connection and serves it until the
// client goes away.
func (e *ChatEndpoints) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		slog.Error("WebSocket connection failed - user not found in context")
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	conn, err := e.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	slog.Info("WebSocket connection established", "user_id", user.ID, "email", user.Email)

	client := e.hub.RegisterClient(conn, user.ID)
	client.MessageHandler = e.handler.HandleWebSocketMessage(profileOf(user))

	go client.WritePump()
	e.handler.HandleWebSocketConnection(client)
	client.ReadPump()
}
