package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	urn "github.com/tinywideclouds/go-platform/pkg/net/v1"

	"github.com/tinywideclouds/go-push-registration/internal/storage/cache"
	"github.com/tinywideclouds/go-push-registration/pkg/registration"
	"github.com/tinywideclouds/go-push-registration/pkg/registry"
)

// --- Mocks ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) error {
	return m.Called(ctx, key, dest).Error(0)
}
func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}
func (m *MockCache) Del(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type MockRealStore struct {
	mock.Mock
}

func (m *MockRealStore) Register(ctx context.Context, user urn.URN, token registry.DeviceToken) error {
	return m.Called(ctx, user, token).Error(0)
}
func (m *MockRealStore) Unregister(ctx context.Context, user urn.URN, token string) error {
	return m.Called(ctx, user, token).Error(0)
}
func (m *MockRealStore) Fetch(ctx context.Context, user urn.URN) ([]registry.DeviceToken, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]registry.DeviceToken), args.Error(1)
}

func TestCachedStore_ImmediateInvalidation(t *testing.T) {
	ctx := context.Background()
	mockCache := new(MockCache)
	mockDB := new(MockRealStore)

	store := cache.NewCachedTokenStore(mockDB, mockCache, 1*time.Hour)
	userURN, _ := urn.Parse("urn:wellness:user:annoyed-user")
	cacheKey := "push:tokens:urn:wellness:user:annoyed-user"

	t.Run("Unregister invalidates cache immediately", func(t *testing.T) {
		mockDB.On("Unregister", ctx, userURN, "old-token").Return(nil).Once()
		mockCache.On("Del", ctx, cacheKey).Return(nil).Once()

		err := store.Unregister(ctx, userURN, "old-token")

		require.NoError(t, err)
		mockDB.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("Subsequent Fetch hits DB (Cache Miss)", func(t *testing.T) {
		mockCache.On("Get", ctx, cacheKey, mock.Anything).Return(assert.AnError).Once()

		empty := []registry.DeviceToken{}
		mockDB.On("Fetch", ctx, userURN).Return(empty, nil).Once()
		mockCache.On("Set", ctx, cacheKey, empty, time.Hour).Return(nil).Once()

		tokens, err := store.Fetch(ctx, userURN)

		require.NoError(t, err)
		assert.Empty(t, tokens)
		mockDB.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})
}

func TestCachedStore_RegisterInvalidates(t *testing.T) {
	ctx := context.Background()
	mockCache := new(MockCache)
	mockDB := new(MockRealStore)
	store := cache.NewCachedTokenStore(mockDB, mockCache, time.Hour)
	userURN, _ := urn.Parse("urn:wellness:user:new-device")
	token := registry.DeviceToken{Token: "tok", Platform: registration.PlatformIOS}

	t.Run("Store failure skips invalidation", func(t *testing.T) {
		mockDB.On("Register", ctx, userURN, token).Return(assert.AnError).Once()

		err := store.Register(ctx, userURN, token)

		require.ErrorIs(t, err, assert.AnError)
		mockCache.AssertNotCalled(t, "Del", mock.Anything, mock.Anything)
	})

	t.Run("Success invalidates", func(t *testing.T) {
		mockDB.On("Register", ctx, userURN, token).Return(nil).Once()
		mockCache.On("Del", ctx, "push:tokens:urn:wellness:user:new-device").Return(nil).Once()

		require.NoError(t, store.Register(ctx, userURN, token))
		mockCache.AssertExpectations(t)
	})
}
