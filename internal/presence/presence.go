// Package presence tracks which visitors have been active within a
// sliding window. Redis holds one TTL key per visitor; without Redis an
// in-memory tracker provides the same behavior for a single process.
package presence

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tracker records visitor activity and reports who is currently active.
type Tracker interface {
	Touch(ctx context.Context, name string) error
	Active(ctx context.Context) ([]string, error)
	Close() error
}

// RedisTracker stores one key per visitor with the window as TTL, so
// inactive visitors age out without any sweep.
type RedisTracker struct {
	client *redis.Client
	prefix string
	window time.Duration
}

func NewRedisTracker(redisURL string, window time.Duration) (*RedisTracker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisTrackerWithClient(client, window), nil
}

func NewRedisTrackerWithClient(client *redis.Client, window time.Duration) *RedisTracker {
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &RedisTracker{client: client, prefix: "visitor:", window: window}
}

func (t *RedisTracker) key(name string) string {
	return t.prefix + name
}

func (t *RedisTracker) Touch(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	if err := t.client.Set(ctx, t.key(name), time.Now().Unix(), t.window).Err(); err != nil {
		return fmt.Errorf("touch visitor: %w", err)
	}
	return nil
}

func (t *RedisTracker) Active(ctx context.Context) ([]string, error) {
	var (
		names  []string
		cursor uint64
	)
	for {
		keys, next, err := t.client.Scan(ctx, cursor, t.prefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan visitors: %w", err)
		}
		for _, key := range keys {
			names = append(names, strings.TrimPrefix(key, t.prefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return names, nil
}

func (t *RedisTracker) Close() error {
	return t.client.Close()
}

// MemoryTracker is the fallback when no Redis is configured. Entries are
// pruned lazily on read.
type MemoryTracker struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	window time.Duration
	now    func() time.Time
}

func NewMemoryTracker(window time.Duration) *MemoryTracker {
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &MemoryTracker{
		seen:   make(map[string]time.Time),
		window: window,
		now:    time.Now,
	}
}

func (t *MemoryTracker) Touch(_ context.Context, name string) error {
	if name == "" {
		return nil
	}
	t.mu.Lock()
	t.seen[name] = t.now()
	t.mu.Unlock()
	return nil
}

func (t *MemoryTracker) Active(_ context.Context) ([]string, error) {
	cutoff := t.now().Add(-t.window)
	t.mu.Lock()
	defer t.mu.Unlock()

	names := make([]string, 0, len(t.seen))
	for name, last := range t.seen {
		if last.Before(cutoff) {
			delete(t.seen, name)
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func (t *MemoryTracker) Close() error {
	return nil
}
