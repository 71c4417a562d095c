package main

import (
	"context"
	"time"

	"cashon/internal/events"
	"cashon/internal/logger"
	"cashon/internal/metrics"
	"cashon/internal/queue"
	"cashon/internal/repositories"
	"cashon/internal/repositories/cache"
	"cashon/internal/routes"
	"cashon/internal/services/account"
	"cashon/internal/services/activity"
	"cashon/internal/services/deposit"
	"cashon/internal/services/notification"
	"cashon/internal/services/payout"
	"cashon/internal/services/savings"
	"cashon/internal/services/wallet"
	"cashon/internal/services/withdrawal"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const walletCacheTTL = 5 * time.Minute

// deps is everything a command needs, built once from cfg.
type deps struct {
	db        *gorm.DB
	redis     *redis.Client
	store     *repositories.Store
	publisher events.Publisher
	services  routes.Services
}

// bootstrap connects to the database and builds the services. Withdrawal and
// wallet creation jobs go to dispatcher; pass queue.Inline{} to run them in
// the caller.
func bootstrap(ctx context.Context, dispatcher queue.Dispatcher) (*deps, error) {
	db, err := repositories.InitDB(cfg.DB)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("host", cfg.DB.Host).Str("database", cfg.DB.Name).Msg("connected to database")

	d := &deps{
		db:        db,
		store:     repositories.NewStore(db),
		publisher: events.NewPublisher(cfg.KafkaBrokers),
	}

	var walletCache wallet.Cache
	client := cache.NewRedisClient(cfg.Redis)
	cacheService := cache.NewCacheService(client, walletCacheTTL)
	if err := cacheService.HealthCheck(ctx); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, wallet cache disabled")
		_ = client.Close()
	} else {
		d.redis = client
		walletCache = cacheService
	}

	wallets := wallet.NewService(d.store, walletCache, wallet.WalletConfig{}, metrics.NewWalletCollector())
	notifications := notification.NewService(d.store)
	activities := activity.NewService(d.store)

	d.services = routes.Services{
		Accounts: account.NewService(d.store, wallets, dispatcher),
		Wallets:  wallets,
		Withdrawals: withdrawal.NewService(
			d.store,
			wallets,
			payout.NewClient(cfg.Payout),
			notifications,
			d.publisher,
			dispatcher,
			withdrawal.Config{MinAmount: cfg.MinWithdrawalAmount, PayoutTimeout: cfg.Payout.Timeout},
		),
		Deposits:      deposit.NewService(d.store, wallets, notifications, activities, d.publisher),
		Savings:       savings.NewService(d.store, wallets, notifications, activities, d.publisher, savings.Config{AnnualRate: cfg.SavingsAnnualRate}),
		Notifications: notifications,
		Activities:    activities,
	}
	return d, nil
}

func (d *deps) Close() {
	if err := d.publisher.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to close event publisher")
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close redis connection")
		}
	}
	if err := repositories.Close(d.db); err != nil {
		logger.Warn().Err(err).Msg("failed to close database connection")
	}
}
