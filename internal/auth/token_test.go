package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/tasktracker/internal/models"
)

var testSecret = []byte("test-secret-key-min-32-bytes-long")

func newTestTokenService(t *testing.T, opts ...TokenOption) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testSecret, time.Hour, opts...)
	require.NoError(t, err)
	return svc
}

func testUser() models.PublicUser {
	return models.PublicUser{ID: uuid.Must(uuid.NewV7()), Username: "alice"}
}

func signClaims(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestNewTokenService(t *testing.T) {
	t.Run("empty secret", func(t *testing.T) {
		_, err := NewTokenService(nil, time.Hour)
		require.Error(t, err)
	})

	t.Run("short secret", func(t *testing.T) {
		_, err := NewTokenService([]byte("too-short"), time.Hour)
		require.Error(t, err)
	})

	t.Run("non positive ttl", func(t *testing.T) {
		_, err := NewTokenService(testSecret, 0)
		require.Error(t, err)
	})

	t.Run("valid", func(t *testing.T) {
		svc, err := NewTokenService(testSecret, 30*time.Minute)
		require.NoError(t, err)
		require.Equal(t, 30*time.Minute, svc.TTL())
	})
}

func TestTokenService_IssueValidate(t *testing.T) {
	ctx := context.Background()
	svc := newTestTokenService(t)
	user := testUser()

	token, expiresAt, err := svc.Issue(user)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 2*time.Second)

	identity, err := svc.Validate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, user.ID, identity.UserID)
	require.Equal(t, "alice", identity.Username)
	require.NotEmpty(t, identity.TokenID)
	require.True(t, identity.ExpiresAt.Equal(expiresAt))
	require.Equal(t, user, identity.Public())

	t.Run("each token gets a distinct id", func(t *testing.T) {
		other, _, err := svc.Issue(user)
		require.NoError(t, err)

		otherIdentity, err := svc.Validate(ctx, other)
		require.NoError(t, err)
		require.NotEqual(t, identity.TokenID, otherIdentity.TokenID)
	})
}

func TestTokenService_ValidateRejects(t *testing.T) {
	ctx := context.Background()
	svc := newTestTokenService(t)
	user := testUser()

	valid, _, err := svc.Issue(user)
	require.NoError(t, err)

	now := time.Now()
	baseClaims := func() *Claims {
		return &Claims{
			Username: user.Username,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   user.ID.String(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				ID:        uuid.NewString(),
			},
		}
	}

	noExpiry := baseClaims()
	noExpiry.ExpiresAt = nil

	badSubject := baseClaims()
	badSubject.Subject = "not-a-uuid"

	noUsername := baseClaims()
	noUsername.Username = ""

	noID := baseClaims()
	noID.ID = ""

	futureIssued := baseClaims()
	futureIssued.IssuedAt = jwt.NewNumericDate(now.Add(time.Hour))

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.jwt"},
		{name: "truncated", token: valid[:len(valid)-5]},
		{name: "tampered payload", token: tamper(valid)},
		{name: "wrong secret", token: signClaims(t, jwt.SigningMethodHS256, []byte("another-secret-key-min-32-bytes-long"), baseClaims())},
		{name: "wrong algorithm", token: signClaims(t, jwt.SigningMethodHS512, testSecret, baseClaims())},
		{name: "none algorithm", token: signClaims(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, baseClaims())},
		{name: "missing expiry", token: signClaims(t, jwt.SigningMethodHS256, testSecret, noExpiry)},
		{name: "bad subject", token: signClaims(t, jwt.SigningMethodHS256, testSecret, badSubject)},
		{name: "missing username", token: signClaims(t, jwt.SigningMethodHS256, testSecret, noUsername)},
		{name: "missing token id", token: signClaims(t, jwt.SigningMethodHS256, testSecret, noID)},
		{name: "issued in the future", token: signClaims(t, jwt.SigningMethodHS256, testSecret, futureIssued)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				_, err := svc.Validate(ctx, tt.token)
				require.ErrorIs(t, err, ErrInvalidToken)
			})
		})
	}
}

func TestTokenService_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := func() time.Time { return now }

	svc := newTestTokenService(t, WithClock(func() time.Time { return clock() }))

	token, expiresAt, err := svc.Issue(testUser())
	require.NoError(t, err)

	clock = func() time.Time { return expiresAt.Add(-time.Second) }
	_, err = svc.Validate(ctx, token)
	require.NoError(t, err)

	clock = func() time.Time { return expiresAt.Add(time.Second) }
	_, err = svc.Validate(ctx, token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Revoke(t *testing.T) {
	ctx := context.Background()

	t.Run("without denylist", func(t *testing.T) {
		svc := newTestTokenService(t)
		token, _, err := svc.Issue(testUser())
		require.NoError(t, err)

		identity, err := svc.Validate(ctx, token)
		require.NoError(t, err)

		revoked, err := svc.Revoke(ctx, identity)
		require.NoError(t, err)
		require.False(t, revoked)

		_, err = svc.Validate(ctx, token)
		require.NoError(t, err)
	})

	t.Run("with denylist", func(t *testing.T) {
		denylist := NewMemoryDenylist(ctx, 0)
		svc := newTestTokenService(t, WithDenylist(denylist))

		token, _, err := svc.Issue(testUser())
		require.NoError(t, err)
		other, _, err := svc.Issue(testUser())
		require.NoError(t, err)

		identity, err := svc.Validate(ctx, token)
		require.NoError(t, err)

		revoked, err := svc.Revoke(ctx, identity)
		require.NoError(t, err)
		require.True(t, revoked)

		_, err = svc.Validate(ctx, token)
		require.ErrorIs(t, err, ErrInvalidToken)

		_, err = svc.Validate(ctx, other)
		require.NoError(t, err)
	})
}

// tamper flips a character in the payload segment of a token.
func tamper(token string) string {
	parts := strings.Split(token, ".")
	payload := []byte(parts[1])
	if payload[0] == 'e' {
		payload[0] = 'f'
	} else {
		payload[0] = 'e'
	}
	parts[1] = string(payload)
	return strings.Join(parts, ".")
}
