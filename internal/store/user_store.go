package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/tasktracker/internal/models"
)

// UserStore persists identity records.
// Implementations must enforce username uniqueness atomically so that two
// concurrent registrations for the same username cannot both succeed.
type UserStore interface {
	// Create stores a new user.
	// Returns ErrUserAlreadyExists if the ID or username is already taken.
	Create(ctx context.Context, user *models.User) error

	// Get retrieves a user by ID.
	// Returns ErrUserNotFound if the user doesn't exist.
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// GetByUsername retrieves a user by exact (case-sensitive) username.
	// Returns ErrUserNotFound if the user doesn't exist.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
