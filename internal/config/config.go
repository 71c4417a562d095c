package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv parses a Go duration string such as "30s" or "24h".
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// GetDecimalEnv returns a decimal environment variable or a default value.
func GetDecimalEnv(key string, defaultVal decimal.Decimal) decimal.Decimal {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := decimal.NewFromString(strings.TrimSpace(val)); err == nil {
			return d
		}
	}
	return defaultVal
}

// GetListEnv splits a comma separated variable, dropping empty items.
func GetListEnv(key string) []string {
	raw := GetEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}

type DBConfig struct {
	Host            string
	User            string
	Password        string
	Name            string
	Port            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type PayoutConfig struct {
	BaseURL    string
	SecretKey  string
	Timeout    time.Duration
	SenderName string
	Narration  string
	Currency   string
}

type Config struct {
	Port     string
	Env      string
	LogLevel string

	DB    DBConfig
	Redis RedisConfig

	KafkaBrokers []string
	JWTSecret    string

	Payout              PayoutConfig
	MinWithdrawalAmount decimal.Decimal

	SavingsAnnualRate     decimal.Decimal
	InterestSweepInterval time.Duration

	QueueWorkers int
	QueueSize    int
}

// Load builds the runtime configuration from the environment.
// LoadEnv should be called first when a .env file is expected.
func Load() *Config {
	return &Config{
		Port:     GetEnv("PORT", "3000"),
		Env:      GetEnv("ENV", "development"),
		LogLevel: GetEnv("LOG_LEVEL", "info"),
		DB: DBConfig{
			Host:            GetEnv("DB_HOST", "localhost"),
			User:            GetEnv("DB_USER", "postgres"),
			Password:        GetEnv("DB_PASSWORD", "postgres"),
			Name:            GetEnv("DB_NAME", "cashon"),
			Port:            GetEnv("DB_PORT", "5432"),
			SSLMode:         GetEnv("DB_SSLMODE", "disable"),
			MaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetIntEnv("REDIS_DB", 0),
		},
		KafkaBrokers: GetListEnv("KAFKA_BROKERS"),
		JWTSecret:    GetEnv("JWT_SECRET", "cashon"),
		Payout: PayoutConfig{
			BaseURL:    GetEnv("PAYOUT_BASE_URL", "https://mainapi.cashonrails.com/api/v1"),
			SecretKey:  GetEnv("PAYOUT_SECRET_KEY", ""),
			Timeout:    GetDurationEnv("PAYOUT_TIMEOUT", 30*time.Second),
			SenderName: GetEnv("PAYOUT_SENDER_NAME", "Cashon"),
			Narration:  GetEnv("PAYOUT_NARRATION", "Sent from Cashon"),
			Currency:   GetEnv("PAYOUT_CURRENCY", "NGN"),
		},
		MinWithdrawalAmount:   GetDecimalEnv("MIN_WITHDRAWAL_AMOUNT", decimal.NewFromInt(100)),
		SavingsAnnualRate:     GetDecimalEnv("SAVINGS_ANNUAL_RATE", decimal.NewFromFloat(0.10)),
		InterestSweepInterval: GetDurationEnv("INTEREST_SWEEP_INTERVAL", 24*time.Hour),
		QueueWorkers:          GetIntEnv("QUEUE_WORKERS", 4),
		QueueSize:             GetIntEnv("QUEUE_SIZE", 256),
	}
}
