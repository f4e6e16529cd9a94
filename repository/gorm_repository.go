package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atlaslearn/atlas/backend/models"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type GORMRepository struct {
	db *gorm.DB
}

var _ Store = (*GORMRepository)(nil)

func NewGORMRepository(db *gorm.DB) *GORMRepository {
	return &GORMRepository{db: db}
}

// PostgresOptions tunes the connection pool and the GORM logger.
type PostgresOptions struct {
	LogLevel     string
	MaxIdleConns int
	MaxOpenConns int
}

// OpenPostgres connects to PostgreSQL through the pgx-backed GORM driver.
func OpenPostgres(dsn string, opts PostgresOptions) (*GORMRepository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel(opts.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return NewGORMRepository(db), nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return logger.Silent
	}
}

// Migrate runs database migrations
func (r *GORMRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.QuizResult{},
		&models.InterviewRecord{},
		&models.ChatMessage{},
	)
}

func (r *GORMRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *GORMRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// isUniqueViolation reports a duplicate key from either the translated
// GORM error or the raw pgx error.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// User operations
func (r *GORMRepository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		slog.Error("Failed to create user", "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}
	slog.Info("User created", "user_id", user.ID, "email", user.Email)
	return nil
}

func (r *GORMRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get user by email", "error", err, "email", email)
		return nil, err
	}
	return &user, nil
}

func (r *GORMRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get user by ID", "error", err, "user_id", id)
		return nil, err
	}
	return &user, nil
}

func (r *GORMRepository) UpdateUserProfile(ctx context.Context, id, name, standard string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
		"name":       name,
		"standard":   standard,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		slog.Error("Failed to update user profile", "error", res.Error, "user_id", id)
		return fmt.Errorf("failed to update user profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MergeWeakTopics locks the user row so concurrent quiz submissions do
// not drop each other's topics.
func (r *GORMRepository) MergeWeakTopics(ctx context.Context, userID string, topics []string) ([]string, error) {
	var merged models.StringList
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		merged = models.MergeTopics(user.WeakTopics, topics)
		return tx.Model(&user).Updates(map[string]any{
			"weak_topics": merged,
			"updated_at":  time.Now(),
		}).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		slog.Error("Failed to merge weak topics", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to merge weak topics: %w", err)
	}
	return merged, nil
}

// Token operations
func (r *GORMRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		slog.Error("Failed to create refresh token", "error", err)
		return err
	}
	return nil
}

func (r *GORMRepository) GetRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	if err := r.db.WithContext(ctx).Where("token = ? AND expires_at > ?", tokenHash, time.Now()).First(&refreshToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get refresh token", "error", err)
		return nil, err
	}
	return &refreshToken, nil
}

func (r *GORMRepository) DeleteRefreshToken(ctx context.Context, tokenHash string) error {
	if err := r.db.WithContext(ctx).Where("token = ?", tokenHash).Delete(&models.RefreshToken{}).Error; err != nil {
		slog.Error("Failed to delete refresh token", "error", err)
		return err
	}
	return nil
}

func (r *GORMRepository) DeleteAllUserTokens(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
		slog.Error("Failed to delete user refresh tokens", "error", err, "user_id", userID)
		return err
	}
	return nil
}

// Quiz results
func (r *GORMRepository) CreateQuizResult(ctx context.Context, result *models.QuizResult) error {
	if err := r.db.WithContext(ctx).Create(result).Error; err != nil {
		slog.Error("Failed to save quiz result", "error", err, "user_id", result.UserID)
		return fmt.Errorf("failed to save quiz result: %w", err)
	}
	slog.Info("Quiz result saved", "result_id", result.ID, "user_id", result.UserID, "topic", result.Topic)
	return nil
}

func (r *GORMRepository) ListQuizResults(ctx context.Context, userID string) ([]models.QuizResult, error) {
	var results []models.QuizResult
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("timestamp DESC").Find(&results).Error; err != nil {
		slog.Error("Failed to list quiz results", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list quiz results: %w", err)
	}
	return results, nil
}

// Interview records
func (r *GORMRepository) CreateInterviewRecord(ctx context.Context, record *models.InterviewRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		slog.Error("Failed to save interview record", "error", err, "user_id", record.UserID)
		return fmt.Errorf("failed to save interview record: %w", err)
	}
	slog.Info("Interview record saved", "record_id", record.ID, "interview_id", record.InterviewID, "source", record.Source)
	return nil
}

func (r *GORMRepository) ListInterviewRecords(ctx context.Context, userID string, limit int) ([]models.InterviewRecord, error) {
	var records []models.InterviewRecord
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		slog.Error("Failed to list interview records", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list interview records: %w", err)
	}
	return records, nil
}
