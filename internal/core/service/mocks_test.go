package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// Mock CacheRepository
type mockCacheRepo struct {
	locks          map[string]string
	idempotencySet map[string]bool
	failLock       bool
	mu             sync.Mutex
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{
		locks:          make(map[string]string),
		idempotencySet: make(map[string]bool),
	}
}

func (m *mockCacheRepo) AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failLock {
		return false, errors.New("redis unavailable")
	}
	if _, held := m.locks[key]; held {
		return false, nil
	}
	m.locks[key] = token
	return true, nil
}

func (m *mockCacheRepo) ReleaseLock(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.locks[key] == token {
		delete(m.locks, key)
	}
	return nil
}

func (m *mockCacheRepo) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.idempotencySet[key] {
		return false, nil
	}
	m.idempotencySet[key] = true
	return true, nil
}

func (m *mockCacheRepo) ClearIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.idempotencySet, key)
	return nil
}

func (m *mockCacheRepo) heldLocks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

func (m *mockCacheRepo) hasKey(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.idempotencySet[key]
}

// Mock TokenIssuer
type mockTokens struct{}

func (mockTokens) Sign(ctx context.Context, identity domain.Identity) (string, error) {
	return "token-" + identity.UserID + "-" + string(identity.Role), nil
}

// failingDecrementStore behaves like the wrapped store except that every
// stock decrement reports a lost race.
type failingDecrementStore struct {
	port.Store
}

func (s failingDecrementStore) Catalog() port.CatalogRepository {
	return failingCatalog{s.Store.Catalog()}
}

func (s failingDecrementStore) WithinTx(ctx context.Context, fn func(tx port.Store) error) error {
	return s.Store.WithinTx(ctx, func(tx port.Store) error {
		return fn(failingDecrementStore{tx})
	})
}

type failingCatalog struct {
	port.CatalogRepository
}

func (failingCatalog) DecrementStock(ctx context.Context, productID string, amount int) error {
	return domain.ErrInsufficientStock
}

func seedProduct(t *testing.T, store port.Store, id string, price string, stock int) domain.Product {
	t.Helper()
	now := time.Now().UTC()
	p := domain.Product{
		ID:          id,
		Name:        "product " + id,
		Description: "desc " + id,
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.Catalog().CreateProduct(context.Background(), p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func seedCourse(t *testing.T, store port.Store, id string, price string) domain.Course {
	t.Helper()
	now := time.Now().UTC()
	c := domain.Course{
		ID:           id,
		Title:        "course " + id,
		Description:  "desc " + id,
		InstructorID: "instructor-1",
		Price:        decimal.RequireFromString(price),
		Duration:     "4h",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.Catalog().CreateCourse(context.Background(), c); err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return c
}

func newStore() *storage.MemoryAdapter {
	return storage.NewMemoryAdapter()
}
