package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMemoryDenylist(t *testing.T) {
	ctx := context.Background()

	t.Run("revoke and check", func(t *testing.T) {
		d := NewMemoryDenylist(ctx, 0)
		defer d.Stop()

		revoked, err := d.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		require.False(t, revoked)

		require.NoError(t, d.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

		revoked, err = d.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		require.True(t, revoked)
	})

	t.Run("expired tokens are not stored", func(t *testing.T) {
		d := NewMemoryDenylist(ctx, 0)
		defer d.Stop()

		require.NoError(t, d.Revoke(ctx, "jti-1", time.Now().Add(-time.Minute)))
		require.Zero(t, d.Len())
	})

	t.Run("sweep removes expired entries", func(t *testing.T) {
		d := NewMemoryDenylist(ctx, 0)
		defer d.Stop()

		now := time.Now()
		require.NoError(t, d.Revoke(ctx, "short", now.Add(time.Minute)))
		require.NoError(t, d.Revoke(ctx, "long", now.Add(time.Hour)))

		d.now = func() time.Time { return now.Add(2 * time.Minute) }

		revoked, err := d.IsRevoked(ctx, "short")
		require.NoError(t, err)
		require.False(t, revoked)

		require.Equal(t, 1, d.sweep())
		require.Equal(t, 1, d.Len())
	})

	t.Run("background sweep stops", func(t *testing.T) {
		d := NewMemoryDenylist(ctx, 10*time.Millisecond)
		require.NoError(t, d.Revoke(ctx, "jti-1", time.Now().Add(20*time.Millisecond)))

		require.Eventually(t, func() bool { return d.Len() == 0 }, time.Second, 10*time.Millisecond)
		d.Stop()
	})
}

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	return rdb, mr
}

func TestRedisDenylist(t *testing.T) {
	ctx := context.Background()

	t.Run("revoke and check", func(t *testing.T) {
		rdb, mr := newTestRedis(t)
		d := NewRedisDenylist(rdb, "")

		revoked, err := d.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		require.False(t, revoked)

		require.NoError(t, d.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

		revoked, err = d.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		require.True(t, revoked)

		require.True(t, mr.Exists("tasktracker:revoked:jti-1"))
		ttl := mr.TTL("tasktracker:revoked:jti-1")
		require.Greater(t, ttl, 59*time.Minute)
		require.LessOrEqual(t, ttl, time.Hour)
	})

	t.Run("entries expire with the token", func(t *testing.T) {
		rdb, mr := newTestRedis(t)
		d := NewRedisDenylist(rdb, "test")

		require.NoError(t, d.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
		mr.FastForward(2 * time.Minute)

		revoked, err := d.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		require.False(t, revoked)
	})

	t.Run("expired tokens are not stored", func(t *testing.T) {
		rdb, mr := newTestRedis(t)
		d := NewRedisDenylist(rdb, "")

		require.NoError(t, d.Revoke(ctx, "jti-1", time.Now().Add(-time.Second)))
		require.Empty(t, mr.Keys())
	})

	t.Run("redis unavailable", func(t *testing.T) {
		rdb, mr := newTestRedis(t)
		d := NewRedisDenylist(rdb, "")
		mr.Close()

		_, err := d.IsRevoked(ctx, "jti-1")
		require.Error(t, err)
	})

	t.Run("token service fails closed", func(t *testing.T) {
		rdb, mr := newTestRedis(t)
		svc := newTestTokenService(t, WithDenylist(NewRedisDenylist(rdb, "")))

		token, _, err := svc.Issue(testUser())
		require.NoError(t, err)

		_, err = svc.Validate(ctx, token)
		require.NoError(t, err)

		mr.Close()
		_, err = svc.Validate(ctx, token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}
