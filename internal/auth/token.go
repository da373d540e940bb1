package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/tasktracker/internal/models"
)

// MinSecretLength is the shortest signing secret accepted by NewTokenService.
const MinSecretLength = 32

// DefaultTokenTTL is the lifetime of a session token when none is configured.
const DefaultTokenTTL = time.Hour

// Claims are the session token claims. The subject holds the user id.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256-signed session tokens.
type TokenService struct {
	secret   []byte
	ttl      time.Duration
	denylist Denylist
	now      func() time.Time
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithDenylist makes Validate reject tokens whose id has been revoked.
func WithDenylist(denylist Denylist) TokenOption {
	return func(s *TokenService) {
		s.denylist = denylist
	}
}

// WithClock overrides the time source, used by tests to exercise expiry.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService creates a token service signing with secret.
// It fails when the secret is shorter than MinSecretLength or ttl is not positive.
func NewTokenService(secret []byte, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token signing secret is required")
	}
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("token signing secret must be at least %d bytes", MinSecretLength)
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	s := &TokenService{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue creates a signed token for user and returns it with its expiry.
func (s *TokenService) Issue(user models.PublicUser) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := &Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, claims.ExpiresAt.Time, nil
}

// Validate checks the signature, algorithm, expiry and claims of token and
// returns the identity it carries. Every failure is reported as ErrInvalidToken.
func (s *TokenService) Validate(ctx context.Context, token string) (Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		log.Debug().Err(err).Msg("Token validation failed")
		return Identity{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil || claims.Username == "" || claims.ID == "" {
		log.Debug().Msg("Token is missing required claims")
		return Identity{}, ErrInvalidToken
	}

	identity := Identity{
		UserID:    userID,
		Username:  claims.Username,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, identity.TokenID)
		if err != nil {
			// The denylist being unreachable rejects the token rather than admitting it.
			log.Error().Err(err).Msg("Failed to check token denylist")
			return Identity{}, ErrInvalidToken
		}
		if revoked {
			log.Debug().Str("user_id", identity.UserID.String()).Msg("Token has been revoked")
			return Identity{}, ErrInvalidToken
		}
	}

	return identity, nil
}

// Revoke adds the token behind identity to the denylist until it would have
// expired anyway. It is a no-op when no denylist is configured.
func (s *TokenService) Revoke(ctx context.Context, identity Identity) (bool, error) {
	if s.denylist == nil {
		return false, nil
	}
	if err := s.denylist.Revoke(ctx, identity.TokenID, identity.ExpiresAt); err != nil {
		return false, fmt.Errorf("failed to revoke token: %w", err)
	}
	return true, nil
}
