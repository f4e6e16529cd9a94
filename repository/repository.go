package repository

import (
	"context"
	"errors"

	"github.com/atlaslearn/atlas/backend/models"
)

var (
	// ErrDuplicateEmail is returned by CreateUser when the email is taken.
	ErrDuplicateEmail = errors.New("user already exists")
	// ErrNotFound is returned by updates that target a missing row.
	ErrNotFound = errors.New("record not found")
)

// Store is the persistence boundary of the service. Lookups of a single
// row return (nil, nil) when nothing matches.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, id, name, standard string) error
	// MergeWeakTopics adds topics to the user's weak-topic list and
	// returns the merged list.
	MergeWeakTopics(ctx context.Context, userID string, topics []string) ([]string, error)

	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, tokenHash string) error
	DeleteAllUserTokens(ctx context.Context, userID string) error

	CreateQuizResult(ctx context.Context, result *models.QuizResult) error
	ListQuizResults(ctx context.Context, userID string) ([]models.QuizResult, error)

	CreateInterviewRecord(ctx context.Context, record *models.InterviewRecord) error
	// ListInterviewRecords returns newest first; limit <= 0 means all.
	ListInterviewRecords(ctx context.Context, userID string, limit int) ([]models.InterviewRecord, error)

	SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error
	// GetRecentChatMessages returns the latest messages, newest first.
	GetRecentChatMessages(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error)

	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
