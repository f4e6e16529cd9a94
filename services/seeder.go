package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/atlaslearn/atlas/backend/models"
	"github.com/atlaslearn/atlas/backend/repository"
)

// demoPassword is shared by every seeded account.
const demoPassword = "password"

// DatabaseSeeder handles database seeding operations
type DatabaseSeeder struct {
	store repository.Store
}

// NewDatabaseSeeder creates a new database seeder
func NewDatabaseSeeder(store repository.Store) *DatabaseSeeder {
	return &DatabaseSeeder{store: store}
}

func demoUsers() []models.User {
	return []models.User{
		{
			Email:      "test@example.com",
			Name:       "Test Student",
			Standard:   "10th",
			WeakTopics: models.StringList{"Algebra", "Chemical Reactions"},
		},
		{
			Email:      "demo@example.com",
			Name:       "Demo Student",
			Standard:   "12th",
			WeakTopics: models.StringList{"Calculus"},
		},
	}
}

// SeedDatabase creates the demo accounts that do not exist yet. It is
// safe to run repeatedly and returns how many users it created.
func (s *DatabaseSeeder) SeedDatabase(ctx context.Context) (int, error) {
	hashedPassword, err := HashPassword(demoPassword)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, user := range demoUsers() {
		user.Password = hashedPassword
		ok, err := s.seedUser(ctx, &user)
		if err != nil {
			slog.Error("Failed to seed user", "email", user.Email, "error", err)
			continue
		}
		if ok {
			created++
		}
	}

	slog.Info("Database seeding completed", "created", created)
	return created, nil
}

func (s *DatabaseSeeder) seedUser(ctx context.Context, user *models.User) (bool, error) {
	existing, err := s.store.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	if existing != nil {
		slog.Debug("User already exists, skipping", "email", user.Email)
		return false, nil
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create user: %w", err)
	}
	slog.Info("Seeded user", "email", user.Email)
	return true, nil
}
