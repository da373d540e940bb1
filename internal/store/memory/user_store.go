package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/wolfeidau/tasktracker/internal/models"
	"github.com/wolfeidau/tasktracker/internal/store"
)

// UserStore implements store.UserStore using in-memory storage.
// This implementation is for development and testing - data is lost on restart.
type UserStore struct {
	mu sync.RWMutex

	users           map[uuid.UUID]*models.User // user_id -> User
	usersByUsername map[string]*models.User    // username -> User
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		users:           make(map[uuid.UUID]*models.User),
		usersByUsername: make(map[string]*models.User),
	}
}

// Create creates a new user in memory.
// The uniqueness check and insert happen under one lock.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; exists {
		return store.ErrUserAlreadyExists
	}
	if _, exists := s.usersByUsername[user.Username]; exists {
		return store.ErrUserAlreadyExists
	}

	// Clone to avoid external modifications
	clone := *user
	s.users[clone.ID] = &clone
	s.usersByUsername[clone.Username] = &clone

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[userID]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	clone := *user
	return &clone, nil
}

// GetByUsername retrieves a user by username.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.usersByUsername[username]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	clone := *user
	return &clone, nil
}

// Clear removes all users.
func (s *UserStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[uuid.UUID]*models.User)
	s.usersByUsername = make(map[string]*models.User)
	return nil
}
