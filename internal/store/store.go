package store

import (
	"context"
	"errors"
)

// Sentinel errors for common error conditions
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrProjectNotFound   = errors.New("project not found")
	ErrTaskNotFound      = errors.New("task not found")
)

// IsNotFound reports whether err is any of the not found errors returned by the stores.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrTaskNotFound)
}

// Clearer is implemented by stores that can remove all of their records.
// It is used by the seed command to reset a database before loading fixtures.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Stores bundles the stores used by the API server.
type Stores struct {
	Users    UserStore
	Projects ProjectStore
	Tasks    TaskStore
}

// Clear empties every store in dependency order (tasks before projects).
func (s Stores) Clear(ctx context.Context) error {
	for _, c := range []any{s.Tasks, s.Projects, s.Users} {
		clearer, ok := c.(Clearer)
		if !ok {
			continue
		}
		if err := clearer.Clear(ctx); err != nil {
			return err
		}
	}
	return nil
}
