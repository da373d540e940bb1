package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/tasktracker/internal/models"
	"github.com/wolfeidau/tasktracker/internal/store"
	"github.com/wolfeidau/tasktracker/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// dummyPassword is hashed once at startup. Logins for unknown usernames
// verify against that hash so they take as long as a wrong password.
const dummyPassword = "tasktracker-dummy-password"

// Credentials is the body of signup and login requests.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session is the result of a successful signup or login.
type Session struct {
	User      models.PublicUser
	Token     string
	ExpiresAt time.Time
}

// Service implements the registration, login, verification and logout flows.
type Service struct {
	users     store.UserStore
	hasher    PasswordHasher
	tokens    *TokenService
	dummyHash string
}

// NewService creates an auth service.
func NewService(users store.UserStore, hasher PasswordHasher, tokens *TokenService) (*Service, error) {
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &Service{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		dummyHash: dummyHash,
	}, nil
}

// Tokens returns the token service used to issue sessions.
func (s *Service) Tokens() *TokenService {
	return s.tokens
}

// Register creates a user and issues a session for it.
func (s *Service) Register(ctx context.Context, creds Credentials) (*Session, error) {
	session, err := s.register(ctx, creds)
	recordOutcome(ctx, telemetry.GetMetrics().SignupsTotal, err)
	return session, err
}

func (s *Service) register(ctx context.Context, creds Credentials) (*Session, error) {
	if err := validateCredentials(creds); err != nil {
		return nil, err
	}

	_, err := s.users.GetByUsername(ctx, creds.Username)
	switch {
	case err == nil:
		return nil, ErrUsernameTaken
	case !errors.Is(err, store.ErrUserNotFound):
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := s.timedHash(ctx, creds.Password)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user id: %w", err)
	}

	user := &models.User{
		ID:           id,
		Username:     creds.Username,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrUserAlreadyExists) {
			// lost a race with a concurrent registration
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("user_id", user.ID.String()).Msg("User registered")

	return s.issue(ctx, user.Public())
}

// Login checks credentials and issues a session.
// Unknown usernames and wrong passwords both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Session, error) {
	session, err := s.login(ctx, creds)
	recordOutcome(ctx, telemetry.GetMetrics().LoginsTotal, err)
	return session, err
}

func (s *Service) login(ctx context.Context, creds Credentials) (*Session, error) {
	if err := validateCredentials(creds); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, creds.Username)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		s.timedVerify(ctx, creds.Password, s.dummyHash)
		return nil, ErrInvalidCredentials
	}

	if !s.timedVerify(ctx, creds.Password, user.PasswordHash) {
		zerolog.Ctx(ctx).Debug().Str("user_id", user.ID.String()).Msg("Password mismatch")
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, user.Public())
}

// Verify validates token and returns the identity it carries.
func (s *Service) Verify(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrMissingToken
	}
	return s.tokens.Validate(ctx, token)
}

// Logout revokes the session behind identity when a denylist is configured.
func (s *Service) Logout(ctx context.Context, identity Identity) error {
	revoked, err := s.tokens.Revoke(ctx, identity)
	if err != nil {
		return err
	}
	if revoked {
		telemetry.GetMetrics().TokensRevokedTotal.Add(ctx, 1)
		zerolog.Ctx(ctx).Info().Str("user_id", identity.UserID.String()).Msg("Session revoked")
	}
	return nil
}

func (s *Service) issue(ctx context.Context, user models.PublicUser) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	telemetry.GetMetrics().TokensIssuedTotal.Add(ctx, 1)

	return &Session{
		User:      user,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) timedHash(ctx context.Context, password string) (string, error) {
	started := time.Now()
	defer recordHashLatency(ctx, "hash", started)

	return s.hasher.Hash(password)
}

func (s *Service) timedVerify(ctx context.Context, password, hash string) bool {
	started := time.Now()
	defer recordHashLatency(ctx, "verify", started)

	return s.hasher.Verify(password, hash)
}

func validateCredentials(creds Credentials) error {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return validationError("Username and password are required")
	}
	return nil
}

func recordOutcome(ctx context.Context, counter metric.Int64Counter, err error) {
	outcome := telemetry.OutcomeSuccess
	if err != nil {
		outcome = telemetry.OutcomeFailure
	}
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func recordHashLatency(ctx context.Context, op string, started time.Time) {
	telemetry.GetMetrics().PasswordHashLatency.Record(ctx,
		float64(time.Since(started).Microseconds())/1000,
		metric.WithAttributes(attribute.String("op", op)))
}
