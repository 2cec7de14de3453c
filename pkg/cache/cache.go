package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Counter is an expiring integer counter keyed by string, used for login lockout
// and request throttling.
type Counter interface {
	// Incr adds one and returns the new value. The key expires window after its first increment.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// New returns a Redis-backed counter when redisURL is set and reachable, otherwise an
// in-process one.
func New(redisURL string) Counter {
	if redisURL == "" {
		return NewMemoryCounter()
	}
	rc, err := NewRedisCounter(redisURL)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, using in-memory counters")
		return NewMemoryCounter()
	}
	return rc
}

type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(redisURL string) (*RedisCounter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	log.Info("redis connection established")
	return &RedisCounter{client: client}, nil
}

func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (c *RedisCounter) Get(ctx context.Context, key string) (int64, error) {
	n, err := c.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

func (c *RedisCounter) Reset(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *RedisCounter) Close() error {
	return c.client.Close()
}

type memEntry struct {
	n       int64
	expires time.Time
}

// MemoryCounter is a single-process Counter. Expired keys are swept once a minute.
type MemoryCounter struct {
	mu      sync.Mutex
	entries map[string]*memEntry
	now     func() time.Time
}

func NewMemoryCounter() *MemoryCounter {
	m := &MemoryCounter{entries: make(map[string]*memEntry), now: time.Now}
	go m.cleanup()
	return m
}

func (m *MemoryCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	e, ok := m.entries[key]
	if !ok || !now.Before(e.expires) {
		e = &memEntry{expires: now.Add(window)}
		m.entries[key] = e
	}
	e.n++
	return e.n, nil
}

func (m *MemoryCounter) Get(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || !m.now().Before(e.expires) {
		return 0, nil
	}
	return e.n, nil
}

func (m *MemoryCounter) Reset(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCounter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		m.mu.Lock()
		now := m.now()
		for k, e := range m.entries {
			if !now.Before(e.expires) {
				delete(m.entries, k)
			}
		}
		m.mu.Unlock()
	}
}
