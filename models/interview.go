package models

import (
	"time"

	"gorm.io/gorm"
)

// InterviewRecord stores the evaluated outcome of a finished mock interview.
// Scores are on the 0..1 scale regardless of which evaluator produced them.
type InterviewRecord struct {
	ID                    string     `gorm:"type:uuid;primaryKey" bson:"_id" json:"id"`
	UserID                string     `gorm:"type:uuid;not null;index" bson:"user_id" json:"user_id"`
	Email                 string     `gorm:"index" bson:"email" json:"email"`
	InterviewID           string     `gorm:"index" bson:"interview_id" json:"interview_id"`
	ContentScore          float64    `bson:"content_score" json:"content_score"`
	CommunicationScore    float64    `bson:"communication_score" json:"communication_score"`
	OverallScore          float64    `bson:"overall_score" json:"overall_score"`
	ContentFeedback       string     `gorm:"type:text" bson:"content_feedback" json:"content_feedback"`
	CommunicationFeedback string     `gorm:"type:text" bson:"communication_feedback" json:"communication_feedback"`
	Strengths             StringList `gorm:"type:jsonb" bson:"strengths" json:"strengths"`
	AreasForImprovement   StringList `gorm:"type:jsonb" bson:"areas_for_improvement" json:"areas_for_improvement"`
	WeakAreas             StringList `gorm:"type:jsonb" bson:"weak_areas" json:"weak_areas"`
	DetailedScores        ScoreMap   `gorm:"type:jsonb" bson:"detailed_scores" json:"detailed_scores"`
	Source                string     `gorm:"size:20" bson:"source" json:"source"` // upstream or fallback
	Timestamp             time.Time  `gorm:"not null;index" bson:"timestamp" json:"timestamp"`
}

func (i *InterviewRecord) BeforeCreate(tx *gorm.DB) error {
	i.Prepare(time.Now())
	return nil
}

func (i *InterviewRecord) Prepare(now time.Time) {
	if i.ID == "" {
		i.ID = NewID()
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = now
	}
}
