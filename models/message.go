package models

import (
	"time"

	"gorm.io/gorm"
)

// ChatMessage represents a single turn of a student's conversation with
// the assistant, over HTTP or the websocket.
type ChatMessage struct {
	ID        string    `json:"id" bson:"_id" gorm:"type:uuid;primaryKey"`
	UserID    string    `json:"user_id" bson:"user_id" gorm:"type:uuid;not null;index"`
	SessionID string    `json:"session_id,omitempty" bson:"session_id,omitempty" gorm:"type:varchar(64);index"`
	Role      string    `json:"role" bson:"role" gorm:"type:varchar(20);not null;check:role IN ('user', 'assistant')"`
	Content   string    `json:"content" bson:"content" gorm:"type:text;not null"`
	Model     string    `json:"model,omitempty" bson:"model,omitempty" gorm:"type:varchar(100)"`
	Language  string    `json:"language,omitempty" bson:"language,omitempty" gorm:"type:varchar(10)"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" gorm:"not null;index"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	m.Prepare(time.Now())
	return nil
}

func (m *ChatMessage) Prepare(now time.Time) {
	if m.ID == "" {
		m.ID = NewID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
}
