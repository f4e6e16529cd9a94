package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID         string         `gorm:"type:uuid;primaryKey" bson:"_id" json:"id"`
	Name       string         `gorm:"size:255" bson:"name" json:"name"`
	Email      string         `gorm:"uniqueIndex;not null" bson:"email" json:"email"`
	Password   string         `gorm:"size:255" bson:"password" json:"-"` // bcrypt hash
	Standard   string         `gorm:"size:50" bson:"standard" json:"standard,omitempty"`
	Role       string         `gorm:"default:'user'" bson:"role" json:"role"`
	WeakTopics StringList     `gorm:"type:jsonb;not null;default:'[]'" bson:"weaktopics" json:"weak_topics"`
	CreatedAt  time.Time      `bson:"createdAt" json:"created_at"`
	UpdatedAt  time.Time      `bson:"updatedAt" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" bson:"-" json:"-"`
}

// BeforeCreate assigns the primary key so every store uses the same id format.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Prepare(time.Now())
	return nil
}

// Prepare fills the fields a store must set before the first insert.
func (u *User) Prepare(now time.Time) {
	if u.ID == "" {
		u.ID = NewID()
	}
	if u.Role == "" {
		u.Role = "user"
	}
	if u.WeakTopics == nil {
		u.WeakTopics = StringList{}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}

type RefreshToken struct {
	ID        string    `gorm:"type:uuid;primaryKey" bson:"_id" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" bson:"user_id" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" bson:"token" json:"-"` // sha256 of the cookie value
	ExpiresAt time.Time `gorm:"not null" bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func (t *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = NewID()
	}
	return nil
}
