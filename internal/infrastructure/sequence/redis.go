package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/stockledger/backend/internal/domain/inventory"
)

// RedisSequencer issues document sequence numbers using Redis INCR.
// Per-day counters expire after the configured TTL so stale keys do not
// accumulate; the TTL must exceed one day to keep numbers unique within it.
type RedisSequencer struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSequencer creates a new Redis-backed sequencer
func NewRedisSequencer(client *redis.Client, ttl time.Duration) *RedisSequencer {
	return &RedisSequencer{
		client: client,
		ttl:    ttl,
	}
}

// Next returns the next sequence value for the tenant, prefix and day
func (s *RedisSequencer) Next(ctx context.Context, tenantID uuid.UUID, prefix string, date time.Time) (int64, error) {
	key := fmt.Sprintf("seq:%s:%s:%s", tenantID, prefix, date.Format("20060102"))

	value, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence %s: %w", key, err)
	}

	// First issuer of the day sets the expiry
	if value == 1 && s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return 0, fmt.Errorf("failed to set sequence expiry %s: %w", key, err)
		}
	}

	return value, nil
}

var _ inventory.DocumentSequencer = (*RedisSequencer)(nil)
