package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/port"
)

const (
	initialStock  = 20
	totalRequests = 50
)

// Seeds one product with limited stock, gives every buyer a cart holding one
// unit, then checks out all carts concurrently. Set STRESS_MYSQL_DSN and
// STRESS_REDIS_ADDR to run against real backends instead of memory.
func main() {
	ctx := context.Background()

	var store port.Store = storage.NewMemoryAdapter()
	if dsn := os.Getenv("STRESS_MYSQL_DSN"); dsn != "" {
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			log.Fatalf("failed to connect mysql: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(totalRequests)
		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("failed to ping mysql: %v", err)
		}
		if err := storage.ApplySchema(ctx, db); err != nil {
			log.Fatalf("failed to apply schema: %v", err)
		}
		store = storage.NewMySQLAdapter(db)
	}

	var cache port.CacheRepository
	if addr := os.Getenv("STRESS_REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		defer rdb.Close()
		cache = storage.NewRedisAdapter(rdb)
	}

	catalog := service.NewCatalogService(store)
	carts := service.NewCartService(store)
	checkout := service.NewCheckoutService(store, cache, service.DefaultLockTTL)

	product, err := catalog.CreateProduct(ctx, service.ProductInput{
		Name:        "flash-sale-item",
		Description: "limited stock",
		Price:       decimal.NewFromInt(20),
		Stock:       initialStock,
	})
	if err != nil {
		log.Fatalf("failed to seed product: %v", err)
	}

	run := uuid.NewString()[:8]
	users := make([]string, totalRequests)
	for i := range users {
		users[i] = fmt.Sprintf("stress-%s-%d", run, i)
		if _, err := carts.AddItem(ctx, users[i], service.AddItemRequest{ProductID: product.ID, Quantity: 1}); err != nil {
			log.Fatalf("failed to fill cart for %s: %v", users[i], err)
		}
	}

	// Counters
	var successCount atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent checkouts
	var wg sync.WaitGroup
	start := time.Now()

	for _, userID := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()

			if _, err := checkout.Checkout(ctx, userID, ""); err == nil {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}(userID)
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	if success == int32(initialStock) && fail == int32(totalRequests-initialStock) {
		fmt.Printf("PASS: Exactly %d checkouts succeeded, %d failed\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d fail, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, fail)
	}

	final, err := catalog.GetProduct(ctx, product.ID)
	if err != nil {
		log.Fatalf("failed to read final stock: %v", err)
	}
	fmt.Printf("Final Stock: %d\n", final.Stock)

	if final.Stock == 0 {
		fmt.Println("PASS: Stock depleted to 0")
	} else {
		fmt.Printf("FAIL: Expected stock 0, got %d\n", final.Stock)
	}
}
