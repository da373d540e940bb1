package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDenylistPrefix = "tasktracker:revoked"

// RedisDenylist implements Denylist with one expiring redis key per revoked
// token, so revocations are shared by every server instance.
type RedisDenylist struct {
	redis  redis.Cmdable
	prefix string
}

// NewRedisDenylist creates a denylist storing keys under prefix.
func NewRedisDenylist(client redis.Cmdable, prefix string) *RedisDenylist {
	if prefix == "" {
		prefix = defaultDenylistPrefix
	}
	return &RedisDenylist{
		redis:  client,
		prefix: prefix,
	}
}

func (d *RedisDenylist) key(tokenID string) string {
	return d.prefix + ":" + tokenID
}

// Revoke implements Denylist. The key expires with the token.
func (d *RedisDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := d.redis.Set(ctx, d.key(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store revocation: %w", err)
	}
	return nil
}

// IsRevoked implements Denylist.
func (d *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.redis.Exists(ctx, d.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return n > 0, nil
}
