package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cashon/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "cashon:"
	versionTTL = 24 * time.Hour
)

// CacheService is the wallet read cache. It never holds authoritative
// balances: entries are dropped after every committed ledger mutation and
// expire after ttl regardless.
//
// Every invalidation also bumps a version counter. Read-through writes carry
// the version seen before the database read and are dropped if it moved, so
// a read that raced a commit cannot be cached.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, ttl time.Duration) *CacheService {
	return &CacheService{client: client, ttl: ttl}
}

func walletKey(walletID uint) string {
	return keyPrefix + "wallet:" + strconv.FormatUint(uint64(walletID), 10)
}

func userWalletsKey(userID uint) string {
	return keyPrefix + "user_wallets:" + strconv.FormatUint(uint64(userID), 10)
}

func versionKey(key string) string {
	return key + ":ver"
}

// load decodes key into dest. A miss reports false with no error.
func (s *CacheService) load(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// Undecodable entries are dropped and reported as a miss.
		_ = s.client.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

func (s *CacheService) version(ctx context.Context, key string) (int64, error) {
	v, err := s.client.Get(ctx, versionKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache version %s: %w", key, err)
	}
	return v, nil
}

// storeAt writes value under key while its version still equals version.
// A moved version reports false with no error.
func (s *CacheService) storeAt(ctx context.Context, key string, version int64, value interface{}) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("cache encode %s: %w", key, err)
	}

	verKey := versionKey(key)
	stale := false
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, verKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			stale = true
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}, verKey)
	switch {
	case errors.Is(err, redis.TxFailedErr):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("cache set %s: %w", key, err)
	}
	return !stale, nil
}

// GetWallet returns nil, nil on a miss.
func (s *CacheService) GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error) {
	var w models.Wallet
	found, err := s.load(ctx, walletKey(walletID), &w)
	if err != nil || !found {
		return nil, err
	}
	return &w, nil
}

func (s *CacheService) WalletVersion(ctx context.Context, walletID uint) (int64, error) {
	return s.version(ctx, walletKey(walletID))
}

// CacheWallet stores w if no invalidation happened since version was read.
func (s *CacheService) CacheWallet(ctx context.Context, w *models.Wallet, version int64) (bool, error) {
	if w == nil || w.ID == 0 {
		return false, errors.New("cache: wallet without id")
	}
	return s.storeAt(ctx, walletKey(w.ID), version, w)
}

// GetUserWallets returns nil, nil on a miss.
func (s *CacheService) GetUserWallets(ctx context.Context, userID uint) ([]models.Wallet, error) {
	var wallets []models.Wallet
	found, err := s.load(ctx, userWalletsKey(userID), &wallets)
	if err != nil || !found {
		return nil, err
	}
	return wallets, nil
}

func (s *CacheService) UserWalletsVersion(ctx context.Context, userID uint) (int64, error) {
	return s.version(ctx, userWalletsKey(userID))
}

func (s *CacheService) CacheUserWallets(ctx context.Context, userID uint, wallets []models.Wallet, version int64) (bool, error) {
	return s.storeAt(ctx, userWalletsKey(userID), version, wallets)
}

// InvalidateWallet drops the wallet and its owner's wallet list and bumps
// both versions in one round trip.
func (s *CacheService) InvalidateWallet(ctx context.Context, w *models.Wallet) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range []string{walletKey(w.ID), userWalletsKey(w.UserID)} {
			pipe.Del(ctx, key)
			pipe.Incr(ctx, versionKey(key))
			pipe.Expire(ctx, versionKey(key), versionTTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache invalidate wallet %d: %w", w.ID, err)
	}
	return nil
}

func (s *CacheService) Close() error {
	return s.client.Close()
}
