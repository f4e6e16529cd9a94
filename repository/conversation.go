package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atlaslearn/atlas/backend/models"
)

// SaveChatMessage saves a chat turn using GORM
func (r *GORMRepository) SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		slog.Error("Failed to save message", "error", err, "message_id", msg.ID)
		return fmt.Errorf("failed to save message: %w", err)
	}

	slog.Debug("Message saved", "message_id", msg.ID, "user_id", msg.UserID, "role", msg.Role)
	return nil
}

// GetRecentChatMessages retrieves recent messages for a user across all sessions
func (r *GORMRepository) GetRecentChatMessages(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&messages).Error; err != nil {
		slog.Error("Failed to get recent messages", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to get recent messages: %w", err)
	}

	return messages, nil
}

// ChronologicalOrder reverses a newest-first page into the order the
// turns were spoken, which is what prompts and the history view need.
func ChronologicalOrder(messages []models.ChatMessage) []models.ChatMessage {
	out := make([]models.ChatMessage, len(messages))
	for i, m := range messages {
		out[len(messages)-1-i] = m
	}
	return out
}
