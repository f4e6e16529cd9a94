package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/atlaslearn/atlas/backend/sarvam"
	ws "github.com/atlaslearn/atlas/backend/websocket"
)

const wsAnswerTimeout = 60 * time.Second

// WebSocketHandler answers live chat frames with the assistant.
type WebSocketHandler struct {
	assistant *Assistant
}

func NewWebSocketHandler(assistant *Assistant) *WebSocketHandler {
	return &WebSocketHandler{assistant: assistant}
}

// HandleWebSocketConnection greets a newly connected student.
func (h *WebSocketHandler) HandleWebSocketConnection(client *ws.Client) {
	slog.Info("WebSocket connection handled", "user_id", client.UserID, "session_id", client.SessionID)
	client.SendJSON(ws.Message{Type: "greeting", Content: GreetingPhrase, SessionID: client.SessionID})
}

// HandleWebSocketMessage routes one client frame. profile is resolved
// once at connect time.
func (h *WebSocketHandler) HandleWebSocketMessage(profile Profile) func(*ws.Client, ws.Message) {
	return func(client *ws.Client, msg ws.Message) {
		switch msg.Type {
		case "text":
			question := strings.TrimSpace(msg.Content)
			if question == "" {
				client.SendJSON(ws.Message{Type: "error", Content: "Message is required"})
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), wsAnswerTimeout)
			defer cancel()

			out := h.assistant.Answer(ctx, profile, question, false)
			h.assistant.Remember(ctx, profile, client.SessionID, sarvam.DefaultLanguage, question, out.Value)
			client.SendJSON(ws.Message{
				Type:      "text",
				Content:   out.Value.Text,
				Model:     out.Value.Model,
				Source:    string(out.Source),
				SessionID: client.SessionID,
			})
		default:
			slog.Warn("Unknown message type", "type", msg.Type, "session_id", client.SessionID)
			client.SendJSON(ws.Message{Type: "error", Content: "Unknown message type: " + msg.Type})
		}
	}
}
