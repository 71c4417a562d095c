package cache

import (
	"context"
	"testing"
	"time"

	"cashon/internal/config"
	"cashon/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachable(t *testing.T) *CacheService {
	t.Helper()
	s := NewCacheService(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	}), time.Minute)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "cashon:wallet:42", walletKey(42))
	assert.Equal(t, "cashon:user_wallets:7", userWalletsKey(7))
	assert.Equal(t, "cashon:wallet:42:ver", versionKey(walletKey(42)))
}

func TestNewRedisClientAddress(t *testing.T) {
	client := NewRedisClient(config.RedisConfig{Host: "cache.internal", Port: "6380", DB: 2})
	t.Cleanup(func() { _ = client.Close() })

	assert.Equal(t, "cache.internal:6380", client.Options().Addr)
	assert.Equal(t, 2, client.Options().DB)
}

func TestCacheWalletRejectsMissingID(t *testing.T) {
	s := unreachable(t)

	for _, w := range []*models.Wallet{nil, {}} {
		stored, err := s.CacheWallet(context.Background(), w, 0)
		assert.Error(t, err)
		assert.False(t, stored)
	}
}

func TestUnreachableRedisSurfacesError(t *testing.T) {
	s := unreachable(t)
	ctx := context.Background()

	w, err := s.GetWallet(ctx, 1)
	require.Error(t, err)
	assert.Nil(t, w)

	_, err = s.WalletVersion(ctx, 1)
	assert.Error(t, err)
	stored, err := s.CacheUserWallets(ctx, 2, []models.Wallet{{ID: 1, UserID: 2}}, 0)
	assert.Error(t, err)
	assert.False(t, stored)
	assert.Error(t, s.InvalidateWallet(ctx, &models.Wallet{ID: 1, UserID: 2}))
	assert.Error(t, s.HealthCheck(ctx))
}
