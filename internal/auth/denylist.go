package auth

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Denylist records revoked token ids until the tokens would have expired.
type Denylist interface {
	// Revoke marks tokenID as revoked until expiresAt.
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error

	// IsRevoked reports whether tokenID has been revoked.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryDenylist implements Denylist in process memory. Entries are dropped
// by a background sweep once their token has expired.
// Revocations are lost on restart and are not shared between instances.
type MemoryDenylist struct {
	mu      sync.RWMutex
	revoked map[string]time.Time // token_id -> expires_at
	now     func() time.Time

	sweepInterval time.Duration
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// NewMemoryDenylist creates a denylist that sweeps expired entries every
// sweepInterval until Stop is called. A non-positive interval disables the sweep.
func NewMemoryDenylist(ctx context.Context, sweepInterval time.Duration) *MemoryDenylist {
	d := &MemoryDenylist{
		revoked:       make(map[string]time.Time),
		now:           time.Now,
		sweepInterval: sweepInterval,
	}

	if sweepInterval > 0 {
		sweepCtx, cancel := context.WithCancel(ctx)
		d.cancel = cancel
		d.wg.Add(1)
		go d.sweepLoop(sweepCtx)
	}

	return d
}

// Revoke implements Denylist. Tokens that have already expired are ignored.
func (d *MemoryDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if !expiresAt.After(d.now()) {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.revoked[tokenID] = expiresAt
	return nil
}

// IsRevoked implements Denylist.
func (d *MemoryDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	expiresAt, ok := d.revoked[tokenID]
	if !ok {
		return false, nil
	}
	return expiresAt.After(d.now()), nil
}

// Len returns the number of entries currently held.
func (d *MemoryDenylist) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.revoked)
}

// Stop gracefully stops the background sweep goroutine.
func (d *MemoryDenylist) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
}

func (d *MemoryDenylist) sweepLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Denylist sweep stopped")
			return

		case <-ticker.C:
			if n := d.sweep(); n > 0 {
				log.Debug().Int("removed", n).Msg("Swept expired denylist entries")
			}
		}
	}
}

// sweep removes expired entries and returns how many were removed.
func (d *MemoryDenylist) sweep() int {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	for id, expiresAt := range d.revoked {
		if !expiresAt.After(now) {
			delete(d.revoked, id)
			removed++
		}
	}
	return removed
}
