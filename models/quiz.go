package models

import (
	"time"

	"gorm.io/gorm"
)

// QuizResult is one graded quiz attempt together with the suggestion
// shown to the student.
type QuizResult struct {
	ID                 string     `gorm:"type:uuid;primaryKey" bson:"_id" json:"id"`
	UserID             string     `gorm:"type:uuid;not null;index" bson:"user_id" json:"user_id"`
	Email              string     `gorm:"index" bson:"email" json:"email"`
	Topic              string     `gorm:"not null" bson:"topic" json:"topic"`
	TotalQuestions     int        `bson:"totalQuestions" json:"totalQuestions"`
	CorrectAnswers     int        `bson:"correctAnswers" json:"correctAnswers"`
	IncorrectQuestions StringList `gorm:"type:jsonb" bson:"incorrectQuestions" json:"incorrectQuestions"`
	Score              float64    `bson:"score" json:"score"` // 0..1
	Suggestion         string     `gorm:"type:text" bson:"suggestion" json:"suggestion"`
	WeakTopics         StringList `gorm:"type:jsonb" bson:"weakTopics" json:"weakTopics"`
	IsFallback         bool       `bson:"isFallback,omitempty" json:"isFallback,omitempty"`
	IsPerfectScore     bool       `bson:"isPerfectScore,omitempty" json:"isPerfectScore,omitempty"`
	Error              string     `gorm:"type:text" bson:"error,omitempty" json:"error,omitempty"`
	Timestamp          time.Time  `gorm:"not null;index" bson:"timestamp" json:"timestamp"`
}

func (q *QuizResult) BeforeCreate(tx *gorm.DB) error {
	q.Prepare(time.Now())
	return nil
}

func (q *QuizResult) Prepare(now time.Time) {
	if q.ID == "" {
		q.ID = NewID()
	}
	if q.Timestamp.IsZero() {
		q.Timestamp = now
	}
}
