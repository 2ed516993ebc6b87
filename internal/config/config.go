// Package config reads server settings from the environment, optionally
// seeded from a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultGRPCAddr        = ":50051"
	defaultMySQLDSN        = "root:root@tcp(localhost:3306)/storefront?parseTime=true"
	defaultRedisAddr       = "localhost:6379"
	defaultJWTTTL          = 5 * time.Hour
	defaultCheckoutLockTTL = 10 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

type Config struct {
	HTTPAddr string
	GRPCAddr string

	Store           string
	MySQLDSN        string
	MySQLMaxOpen    int
	MySQLMaxIdle    int
	MySQLMaxLife    time.Duration
	MigrateOnStart  bool
	RedisAddr       string // empty disables the checkout lock and idempotency keys
	RedisPoolSize   int
	CheckoutLockTTL time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	AdminName     string
	AdminEmail    string
	AdminPassword string

	LogLevel        string
	ShutdownTimeout time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var errs []error
	cfg := Config{
		HTTPAddr:      getString("HTTP_ADDR", defaultHTTPAddr),
		GRPCAddr:      getString("GRPC_ADDR", defaultGRPCAddr),
		Store:         getString("STORE", StoreMySQL),
		MySQLDSN:      getString("MYSQL_DSN", defaultMySQLDSN),
		RedisAddr:     getString("REDIS_ADDR", defaultRedisAddr),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminName:     getString("ADMIN_NAME", "admin"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		LogLevel:      getString("LOG_LEVEL", "info"),
	}
	cfg.MySQLMaxOpen = getInt("MYSQL_MAX_OPEN_CONNS", 50, &errs)
	cfg.MySQLMaxIdle = getInt("MYSQL_MAX_IDLE_CONNS", 25, &errs)
	cfg.MySQLMaxLife = getDuration("MYSQL_CONN_MAX_LIFETIME", 5*time.Minute, &errs)
	cfg.MigrateOnStart = getBool("MIGRATE_ON_START", true, &errs)
	cfg.RedisPoolSize = getInt("REDIS_POOL_SIZE", 100, &errs)
	cfg.CheckoutLockTTL = getDuration("CHECKOUT_LOCK_TTL", defaultCheckoutLockTTL, &errs)
	cfg.JWTTTL = getDuration("JWT_TTL", defaultJWTTTL, &errs)
	cfg.ShutdownTimeout = getDuration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout, &errs)

	if cfg.Store != StoreMySQL && cfg.Store != StoreMemory {
		errs = append(errs, fmt.Errorf("STORE must be %q or %q, got %q", StoreMySQL, StoreMemory, cfg.Store))
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getInt(key string, def int, errs *[]error) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func getBool(key string, def bool, errs *[]error) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func getDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
