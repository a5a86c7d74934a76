package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"backoffice-service/internal/models"

	"github.com/redis/go-redis/v9"
)

// ResultStore keeps the latest state of every task
type ResultStore interface {
	Save(ctx context.Context, result *models.TaskResult) error
	Get(ctx context.Context, id string) (*models.TaskResult, error)
}

// RedisResultStore stores task results in Redis with a TTL
type RedisResultStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisResultStore creates a Redis backed result store
func NewRedisResultStore(client *redis.Client, ttl time.Duration) *RedisResultStore {
	return &RedisResultStore{client: client, ttl: ttl}
}

func (s *RedisResultStore) key(id string) string {
	return fmt.Sprintf("backoffice:task:%s", id)
}

func (s *RedisResultStore) Save(ctx context.Context, result *models.TaskResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(result.ID), data, s.ttl).Err()
}

func (s *RedisResultStore) Get(ctx context.Context, id string) (*models.TaskResult, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var result models.TaskResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MemoryResultStore keeps task results in process memory. Entries older
// than ttl are dropped on access.
type MemoryResultStore struct {
	mu      sync.RWMutex
	results map[string]memoryEntry
	ttl     time.Duration
}

type memoryEntry struct {
	result    models.TaskResult
	expiresAt time.Time
}

// NewMemoryResultStore creates an in-memory result store
func NewMemoryResultStore(ttl time.Duration) *MemoryResultStore {
	return &MemoryResultStore{
		results: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

func (s *MemoryResultStore) Save(ctx context.Context, result *models.TaskResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, entry := range s.results {
		if s.ttl > 0 && now.After(entry.expiresAt) {
			delete(s.results, id)
		}
	}
	s.results[result.ID] = memoryEntry{result: *result, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *MemoryResultStore) Get(ctx context.Context, id string) (*models.TaskResult, error) {
	s.mu.RLock()
	entry, ok := s.results[id]
	s.mu.RUnlock()

	if !ok || (s.ttl > 0 && time.Now().After(entry.expiresAt)) {
		return nil, ErrNotFound
	}
	result := entry.result
	return &result, nil
}
