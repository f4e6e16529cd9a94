package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/atlaslearn/atlas/backend/models"
	"github.com/atlaslearn/atlas/backend/repository"
)

// resolveOwner returns the signed-in user, else the user registered
// under email. (nil, nil) means nobody owns the request.
func resolveOwner(ctx context.Context, store repository.Store, email string) (*models.User, error) {
	if user, ok := UserFromContext(ctx); ok {
		return user, nil
	}
	email = normalizeEmail(email)
	if email == "" || store == nil {
		return nil, nil
	}
	user, err := store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

// displayName is how the assistant addresses a student.
func displayName(u *models.User) string {
	if u == nil {
		return "Student"
	}
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	return "Student"
}
