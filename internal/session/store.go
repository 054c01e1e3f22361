package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gardonyia/basket/internal/metrics"
)

// Store keeps session states between web requests
type Store interface {
	Save(ctx context.Context, s *State) error
	Get(ctx context.Context, id string) (*State, error)
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	state     *State
	expiresAt time.Time
}

// MemoryStore is an in-process Store. It keeps and hands out copies, so
// callers never share a State. Expired entries are invisible to Get and
// removed by Sweep.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates an in-memory store with the given TTL
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, s *State) error {
	m.mu.Lock()
	m.entries[s.ID] = memoryEntry{state: s.Clone(), expiresAt: m.now().Add(m.ttl)}
	n := len(m.entries)
	m.mu.Unlock()

	metrics.UpdateSessionStats(n)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, ErrNotFound
	}
	return e.state.Clone(), nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	n := len(m.entries)
	m.mu.Unlock()

	metrics.UpdateSessionStats(n)
	return nil
}

// Sweep removes expired sessions and returns how many were removed
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	now := m.now()
	removed := 0
	for id, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, id)
			removed++
		}
	}
	n := len(m.entries)
	m.mu.Unlock()

	metrics.UpdateSessionStats(n)
	metrics.RecordSessionsSwept(removed)
	return removed
}

// Len returns the number of stored sessions, expired ones included
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

const redisKeyPrefix = "matchfinder:session:"

// RedisStore keeps sessions in Redis; expiry is left to the key TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func (r *RedisStore) Save(ctx context.Context, s *State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	return r.client.Set(ctx, redisKey(s.ID), data, r.ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, id string) (*State, error) {
	data, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshaling session: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, redisKey(id)).Err()
}
