package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.Payout.Timeout)
	assert.True(t, cfg.MinWithdrawalAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, cfg.SavingsAnnualRate.Equal(decimal.RequireFromString("0.10")))
	assert.Nil(t, cfg.KafkaBrokers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("PAYOUT_TIMEOUT", "5s")
	t.Setenv("MIN_WITHDRAWAL_AMOUNT", "250.50")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, ,kafka-2:9092")
	t.Setenv("QUEUE_WORKERS", "not-a-number")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.Payout.Timeout)
	assert.Equal(t, "250.5", cfg.MinWithdrawalAmount.String())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 4, cfg.QueueWorkers)
}

func TestIsProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	assert.True(t, IsProduction())

	t.Setenv("ENV", "staging")
	assert.False(t, IsProduction())
}
