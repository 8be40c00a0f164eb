// Package cache keeps a short-lived copy of each event's seat map in redis.
// Entries are written on read and dropped after every committed seat
// transition, so the database stays the only authority on seat state.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type SeatCache struct {
	client redis.Cmdable
	ttl    time.Duration
	log    *zap.Logger
}

// NewSeatCache returns a cache backed by client. A nil client disables caching.
func NewSeatCache(client redis.Cmdable, ttl time.Duration, log *zap.Logger) *SeatCache {
	return &SeatCache{
		client: client,
		ttl:    ttl,
		log:    log.With(zap.String("cache", "seat")),
	}
}

func Key(eventID int64) string {
	return fmt.Sprintf("seats:%d", eventID)
}

// Get decodes the cached seat map into dest and reports whether it was found
func (c *SeatCache) Get(ctx context.Context, eventID int64, dest any) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}

	raw, err := c.client.Get(ctx, Key(eventID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get seat cache for event %d: %w", eventID, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warn("Dropping undecodable seat cache entry",
			zap.Int64("event_id", eventID),
			zap.Error(err),
		)
		return false, nil
	}
	return true, nil
}

func (c *SeatCache) Set(ctx context.Context, eventID int64, value any) error {
	if c == nil || c.client == nil {
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode seat cache for event %d: %w", eventID, err)
	}

	if err := c.client.Set(ctx, Key(eventID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set seat cache for event %d: %w", eventID, err)
	}
	return nil
}

// Invalidate drops the seat map of every given event
func (c *SeatCache) Invalidate(ctx context.Context, eventIDs ...int64) error {
	if c == nil || c.client == nil || len(eventIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(eventIDs))
	seen := make(map[int64]struct{}, len(eventIDs))
	for _, id := range eventIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, Key(id))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate seat cache: %w", err)
	}
	return nil
}

// NewRedisClient connects and pings; an empty addr yields a nil client
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}
