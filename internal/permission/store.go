package permission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tinywideclouds/go-push-registration/pkg/registration"
)

// MemoryStore keeps the status in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	status registration.PermissionStatus
}

// NewMemoryStore seeds the store with initial; an empty value means undetermined.
func NewMemoryStore(initial registration.PermissionStatus) *MemoryStore {
	return &MemoryStore{status: initial}
}

func (s *MemoryStore) Load(_ context.Context) (registration.PermissionStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == "" {
		return registration.StatusUndetermined, nil
	}
	return s.status, nil
}

func (s *MemoryStore) Save(_ context.Context, status registration.PermissionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	return nil
}

// KeyValue is the subset of the Redis client the store needs.
type KeyValue interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// RedisStore persists the status under push:permission:<installation>.
type RedisStore struct {
	kv  KeyValue
	key string
}

func NewRedisStore(kv KeyValue, installationID string) *RedisStore {
	return &RedisStore{
		kv:  kv,
		key: fmt.Sprintf("push:permission:%s", installationID),
	}
}

type statusRecord struct {
	Status    registration.PermissionStatus `json:"status"`
	UpdatedAt time.Time                     `json:"updated_at"`
}

func (s *RedisStore) Load(ctx context.Context) (registration.PermissionStatus, error) {
	var rec statusRecord
	err := s.kv.Get(ctx, s.key, &rec)
	if errors.Is(err, redis.Nil) {
		return registration.StatusUndetermined, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load permission status: %w", err)
	}
	if rec.Status == "" {
		return registration.StatusUndetermined, nil
	}
	return rec.Status, nil
}

func (s *RedisStore) Save(ctx context.Context, status registration.PermissionStatus) error {
	// No TTL: a grant stays until the user changes it.
	return s.kv.Set(ctx, s.key, statusRecord{Status: status, UpdatedAt: time.Now()}, 0)
}
