package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/rl1809/storefront/internal/adapter/auth"
	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/port"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	initLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		store port.Store
		db    *sql.DB
	)
	switch cfg.Store {
	case config.StoreMySQL:
		db, err = sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			fatal("failed to connect mysql", err)
		}
		db.SetMaxOpenConns(cfg.MySQLMaxOpen)
		db.SetMaxIdleConns(cfg.MySQLMaxIdle)
		db.SetConnMaxLifetime(cfg.MySQLMaxLife)

		if err := db.PingContext(ctx); err != nil {
			fatal("failed to ping mysql", err)
		}
		slog.Info("connected to mysql")

		if cfg.MigrateOnStart {
			if err := storage.ApplySchema(ctx, db); err != nil {
				fatal("failed to apply schema", err)
			}
			slog.Info("schema applied")
		}
		store = storage.NewMySQLAdapter(db)
	case config.StoreMemory:
		store = storage.NewMemoryAdapter()
		slog.Warn("using in-memory store, data is lost on restart")
	}

	var (
		cache port.CacheRepository
		rdb   *redis.Client
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: cfg.RedisPoolSize,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			fatal("failed to connect redis", err)
		}
		cache = storage.NewRedisAdapter(rdb)
		slog.Info("connected to redis")
	} else {
		slog.Warn("redis disabled, checkout lock and idempotency keys are off")
	}

	tokens, err := auth.NewJWT(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		fatal("failed to init token issuer", err)
	}

	// Initialize services
	services := handler.Services{
		Users:     service.NewUserService(store, tokens),
		Catalog:   service.NewCatalogService(store),
		Carts:     service.NewCartService(store),
		Wishlists: service.NewWishlistService(store),
		Checkout:  service.NewCheckoutService(store, cache, cfg.CheckoutLockTTL),
		Orders:    service.NewOrderService(store),
	}

	if cfg.AdminEmail != "" {
		if err := services.Users.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			fatal("failed to create admin user", err)
		}
		slog.Info("admin user ready", "email", cfg.AdminEmail)
	}

	// Initialize gRPC server
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(handler.AuthInterceptor(tokens)))
	handler.RegisterStorefrontServer(grpcServer, handler.NewGRPCHandler(services.Carts, services.Checkout))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		fatal("failed to listen", err)
	}

	go func() {
		slog.Info("gRPC server listening", "addr", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC server error", "error", err)
		}
	}()

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(services, tokens)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpHandler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown error", "error", err)
	}
	slog.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	slog.Info("gRPC server stopped")

	if rdb != nil {
		rdb.Close()
	}
	if db != nil {
		db.Close()
	}
	slog.Info("connections closed")
}

func initLogger(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
