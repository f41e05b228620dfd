package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const confirmTTL = 24 * time.Hour

// ConfirmDedup short-circuits replayed payment confirmations via Redis.
// Key format: payment:confirm:<session_id>
//
// The stored payment record remains the source of truth; this cache only
// saves the duplicate-check read on redeliveries inside the TTL window.
type ConfirmDedup struct {
	client *redis.Client
}

// NewConfirmDedup creates a ConfirmDedup wrapping the given Redis client.
func NewConfirmDedup(client *redis.Client) *ConfirmDedup {
	return &ConfirmDedup{client: client}
}

// Seen reports whether this checkout session was already confirmed.
func (d *ConfirmDedup) Seen(ctx context.Context, sessionID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("confirm dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this session was confirmed (expires after confirmTTL).
func (d *ConfirmDedup) Mark(ctx context.Context, sessionID string) error {
	return d.client.Set(ctx, d.key(sessionID), "1", confirmTTL).Err()
}

func (d *ConfirmDedup) key(sessionID string) string {
	return fmt.Sprintf("payment:confirm:%s", sessionID)
}
