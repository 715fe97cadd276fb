// Package events tracks handled webhook deliveries and carries the
// durable outbox used for staff notifications.
package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 24 * time.Hour

// ProcessedStore remembers webhook event ids in Redis for a bounded time.
type ProcessedStore struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewProcessedStore(client redis.Cmdable, ttl time.Duration) *ProcessedStore {
	if client == nil {
		panic("events: redis client required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ProcessedStore{client: client, ttl: ttl, prefix: "webhook:processed:"}
}

func (s *ProcessedStore) key(provider, eventID string) string {
	return s.prefix + strings.ToLower(strings.TrimSpace(provider)) + ":" + strings.TrimSpace(eventID)
}

// MarkProcessed claims the event id, returning false if it was already
// claimed. Events without an id are always treated as new.
func (s *ProcessedStore) MarkProcessed(ctx context.Context, provider, eventID string) (bool, error) {
	if strings.TrimSpace(eventID) == "" {
		return true, nil
	}
	ok, err := s.client.SetNX(ctx, s.key(provider, eventID), time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("events: mark processed: %w", err)
	}
	return ok, nil
}

// Release forgets an event id so a redelivery is processed again. Used when
// handling failed before any reply went out.
func (s *ProcessedStore) Release(ctx context.Context, provider, eventID string) error {
	if strings.TrimSpace(eventID) == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(provider, eventID)).Err(); err != nil {
		return fmt.Errorf("events: release processed: %w", err)
	}
	return nil
}
