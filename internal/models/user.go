package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered identity.
// Username is unique and never changes after creation.
type User struct {
	ID           uuid.UUID // UUIDv7
	Username     string
	PasswordHash string `json:"-"` // bcrypt digest
	CreatedAt    time.Time
}

// PublicUser is the only user shape written to API responses.
type PublicUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Public returns the response-safe view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}
