package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/tasktracker/internal/models"
)

// Identity is the authenticated user attached to a request after the token
// has been validated.
type Identity struct {
	UserID    uuid.UUID
	Username  string
	TokenID   string
	ExpiresAt time.Time
}

// Public returns the fields of the identity that may be written to a response.
func (i Identity) Public() models.PublicUser {
	return models.PublicUser{ID: i.UserID, Username: i.Username}
}

type contextKey int

const (
	identityContextKey contextKey = iota
)

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext extracts the authenticated identity from the request context.
// The second result is false for requests that did not pass through the Gate.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	return identity, ok
}
