package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

func memProduct(id string, stock int) domain.Product {
	now := time.Now().UTC()
	return domain.Product{ID: id, Name: id, Description: id, Price: decimal.NewFromInt(5), Stock: stock, CreatedAt: now, UpdatedAt: now}
}

func TestMemoryWithinTx_Commit(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()
	require.NoError(t, m.CreateProduct(ctx, memProduct("p1", 5)))

	err := m.WithinTx(ctx, func(tx port.Store) error {
		return tx.Catalog().DecrementStock(ctx, "p1", 2)
	})
	require.NoError(t, err)

	p, err := m.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)
}

func TestMemoryWithinTx_Rollback(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()
	require.NoError(t, m.CreateProduct(ctx, memProduct("p1", 5)))

	boom := errors.New("boom")
	err := m.WithinTx(ctx, func(tx port.Store) error {
		if err := tx.Catalog().DecrementStock(ctx, "p1", 5); err != nil {
			return err
		}
		if err := tx.Orders().CreateOrder(ctx, domain.Order{ID: "o1", UserID: "u1"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, _ := m.GetProduct(ctx, "p1")
	assert.Equal(t, 5, p.Stock)
	_, err = m.GetOrder(ctx, "o1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryWithinTx_Nested(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()
	require.NoError(t, m.CreateProduct(ctx, memProduct("p1", 5)))

	err := m.WithinTx(ctx, func(tx port.Store) error {
		return tx.WithinTx(ctx, func(inner port.Store) error {
			return inner.Catalog().DecrementStock(ctx, "p1", 1)
		})
	})
	require.NoError(t, err)

	p, _ := m.GetProduct(ctx, "p1")
	assert.Equal(t, 4, p.Stock)
}

func TestMemoryDecrementStock(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()
	require.NoError(t, m.CreateProduct(ctx, memProduct("p1", 2)))

	assert.ErrorIs(t, m.DecrementStock(ctx, "p1", 3), domain.ErrInsufficientStock)
	assert.ErrorIs(t, m.DecrementStock(ctx, "missing", 1), domain.ErrNotFound)
	assert.NoError(t, m.DecrementStock(ctx, "p1", 2))
}

func TestMemoryDecrementStock_RejectsNonPositive(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()
	require.NoError(t, m.CreateProduct(ctx, memProduct("p1", 2)))

	assert.ErrorIs(t, m.DecrementStock(ctx, "p1", 0), domain.ErrInvalidQuantity)
	assert.ErrorIs(t, m.DecrementStock(ctx, "p1", -3), domain.ErrInvalidQuantity)

	p, _ := m.GetProduct(ctx, "p1")
	assert.Equal(t, 2, p.Stock)
}

func TestMemoryCart_IsolatedCopies(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()

	cart := domain.Cart{ID: "c1", UserID: "u1", Items: []domain.CartItem{{ID: "i1", Kind: domain.ItemKindProduct, RefID: "p1", Quantity: 1}}}
	require.NoError(t, m.SaveCart(ctx, cart))
	cart.Items[0].Quantity = 9

	got, err := m.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Items[0].Quantity)

	got.Items[0].Quantity = 7
	again, _ := m.GetCart(ctx, "u1")
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestMemoryListProducts_Window(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, m.CreateProduct(ctx, memProduct(id, 1)))
	}

	items, total, err := m.ListProducts(ctx, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 1)

	items, _, err = m.ListProducts(ctx, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMemoryCreateUser_DuplicateEmail(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()

	require.NoError(t, m.CreateUser(ctx, domain.User{ID: "u1", Email: "a@example.com"}))
	assert.ErrorIs(t, m.CreateUser(ctx, domain.User{ID: "u2", Email: "a@example.com"}), domain.ErrUserExists)

	u, err := m.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
}
