package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	CartStoreRedis  = "redis"
	CartStoreMemory = "memory"
)

type Config struct {
	HTTPAddr        string
	GRPCAddr        string
	MySQLDSN        string
	RedisAddr       string
	RedisPoolSize   int
	CartStore       string
	CartTTL         time.Duration
	IdempotencyTTL  time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	RunMigrations   bool
	SecureCookies   bool
}

func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		GRPCAddr:        getEnv("GRPC_ADDR", ":50051"),
		MySQLDSN:        getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/foodorder?parseTime=true"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		CartStore:       getEnv("CART_STORE", CartStoreRedis),
		RedisPoolSize:   100,
		CartTTL:         7 * 24 * time.Hour,
		IdempotencyTTL:  24 * time.Hour,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		RunMigrations:   true,
	}

	var err error
	if cfg.RedisPoolSize, err = getInt("REDIS_POOL_SIZE", cfg.RedisPoolSize); err != nil {
		return nil, err
	}
	if cfg.CartTTL, err = getDuration("CART_TTL", cfg.CartTTL); err != nil {
		return nil, err
	}
	if cfg.IdempotencyTTL, err = getDuration("IDEMPOTENCY_TTL", cfg.IdempotencyTTL); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return nil, err
	}
	if cfg.RunMigrations, err = getBool("RUN_MIGRATIONS", cfg.RunMigrations); err != nil {
		return nil, err
	}
	if cfg.SecureCookies, err = getBool("SECURE_COOKIES", cfg.SecureCookies); err != nil {
		return nil, err
	}

	switch cfg.CartStore {
	case CartStoreRedis, CartStoreMemory:
	default:
		return nil, fmt.Errorf("CART_STORE must be %q or %q, got %q", CartStoreRedis, CartStoreMemory, cfg.CartStore)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
