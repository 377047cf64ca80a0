package app

import (
	"os"
	"strconv"
	"time"
)

// StorageDriver выбирает реализацию хранилища.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	// KafkaBrokers — список брокеров через запятую; пустое значение отключает Kafka.
	KafkaBrokers string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration

	CartSweepInterval  time.Duration
	CartSweepBatchSize int
	CartRetention      time.Duration
}

// DefaultConfig возвращает безопасные значения для локального запуска.
func DefaultConfig() Config {
	return Config{
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		OutboxPollInterval:  time.Second,
		OutboxBatchSize:     100,
		OutboxMaxAttempts:   3,
		OutboxRetryDelay:    50 * time.Millisecond,
		CartSweepInterval:   time.Hour,
		CartSweepBatchSize:  500,
		CartRetention:       7 * 24 * time.Hour,
	}
}

// ConfigFromEnv собирает конфигурацию из переменных окружения BOOKSTORE_*,
// используя DefaultConfig как базу.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.MetricsAddr = envString("BOOKSTORE_METRICS_ADDR", cfg.MetricsAddr)
	cfg.PostgresDSN = envString("BOOKSTORE_POSTGRES_DSN", cfg.PostgresDSN)
	cfg.KafkaBrokers = envString("BOOKSTORE_KAFKA_BROKERS", cfg.KafkaBrokers)

	if v := envString("BOOKSTORE_STORAGE_DRIVER", ""); v != "" {
		cfg.StorageDriver = StorageDriver(v)
	} else if cfg.PostgresDSN != "" {
		cfg.StorageDriver = StorageDriverPostgres
	}
	cfg.PostgresAutoMigrate = envBool("BOOKSTORE_POSTGRES_AUTO_MIGRATE", cfg.PostgresAutoMigrate)

	cfg.OutboxPollInterval = envDuration("BOOKSTORE_OUTBOX_POLL_INTERVAL", cfg.OutboxPollInterval)
	cfg.OutboxBatchSize = envInt("BOOKSTORE_OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxMaxAttempts = envInt("BOOKSTORE_OUTBOX_MAX_ATTEMPTS", cfg.OutboxMaxAttempts)
	cfg.OutboxRetryDelay = envDuration("BOOKSTORE_OUTBOX_RETRY_DELAY", cfg.OutboxRetryDelay)

	cfg.CartSweepInterval = envDuration("BOOKSTORE_CART_SWEEP_INTERVAL", cfg.CartSweepInterval)
	cfg.CartSweepBatchSize = envInt("BOOKSTORE_CART_SWEEP_BATCH_SIZE", cfg.CartSweepBatchSize)
	cfg.CartRetention = envDuration("BOOKSTORE_CART_RETENTION", cfg.CartRetention)

	return cfg
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}
