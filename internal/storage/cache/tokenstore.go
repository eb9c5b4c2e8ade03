// Package cache adds a Redis read-aside layer in front of a TokenStore.
package cache

import (
	"context"
	"fmt"
	"time"

	urn "github.com/tinywideclouds/go-platform/pkg/net/v1"

	"github.com/tinywideclouds/go-push-registration/pkg/registry"
)

// CacheClient defines the subset of Redis commands we need.
type CacheClient interface {
	// Get returns the value or redis.Nil if not found.
	Get(ctx context.Context, key string, dest interface{}) error
	// Set stores the value with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Del removes the key.
	Del(ctx context.Context, key string) error
}

// CachedTokenStore is a Decorator that adds Read-Aside caching to any TokenStore.
type CachedTokenStore struct {
	realStore registry.TokenStore
	cache     CacheClient
	ttl       time.Duration
}

func NewCachedTokenStore(realStore registry.TokenStore, cache CacheClient, ttl time.Duration) *CachedTokenStore {
	return &CachedTokenStore{
		realStore: realStore,
		cache:     cache,
		ttl:       ttl,
	}
}

// --- READ PATH (Read-Aside) ---

func (s *CachedTokenStore) Fetch(ctx context.Context, user urn.URN) ([]registry.DeviceToken, error) {
	key := s.cacheKey(user)

	var cached []registry.DeviceToken
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	fresh, err := s.realStore.Fetch(ctx, user)
	if err != nil {
		return nil, err
	}

	// Caching is an optimization; if Redis is down we still serve from the store.
	_ = s.cache.Set(ctx, key, fresh, s.ttl)

	return fresh, nil
}

// --- WRITE PATHS (Invalidate-on-Write) ---

func (s *CachedTokenStore) Register(ctx context.Context, user urn.URN, token registry.DeviceToken) error {
	if err := s.realStore.Register(ctx, user, token); err != nil {
		return err
	}
	return s.invalidate(ctx, user)
}

// Unregister must clear the cache even though the store write succeeded, so a
// disabled device stops showing up immediately.
func (s *CachedTokenStore) Unregister(ctx context.Context, user urn.URN, token string) error {
	if err := s.realStore.Unregister(ctx, user, token); err != nil {
		return err
	}
	return s.invalidate(ctx, user)
}

// --- Helpers ---

func (s *CachedTokenStore) invalidate(ctx context.Context, user urn.URN) error {
	return s.cache.Del(ctx, s.cacheKey(user))
}

func (s *CachedTokenStore) cacheKey(user urn.URN) string {
	return fmt.Sprintf("push:tokens:%s", user.String())
}
