package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/storefront?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := ApplySchema(context.Background(), db); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, adapter *MySQLAdapter, stock int) domain.Product {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	p := domain.Product{
		ID:          uuid.NewString(),
		Name:        "test-product",
		Description: "integration",
		Price:       decimal.RequireFromString("20.00"),
		Stock:       stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := adapter.CreateProduct(context.Background(), p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func TestMySQLDecrementStock_Success(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	p := seedProduct(t, adapter, 10)
	defer adapter.DeleteProduct(ctx, p.ID)

	if err := adapter.DecrementStock(ctx, p.ID, 3); err != nil {
		t.Fatalf("DecrementStock failed: %v", err)
	}

	got, err := adapter.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if got.Stock != 7 {
		t.Errorf("expected stock 7, got %d", got.Stock)
	}
	if !got.Price.Equal(p.Price) {
		t.Errorf("expected price %s, got %s", p.Price, got.Price)
	}
}

func TestMySQLDecrementStock_InsufficientStock(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	p := seedProduct(t, adapter, 2)
	defer adapter.DeleteProduct(ctx, p.ID)

	err := adapter.DecrementStock(ctx, p.ID, 5)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock, got: %v", err)
	}

	got, _ := adapter.GetProduct(ctx, p.ID)
	if got.Stock != 2 {
		t.Errorf("expected stock unchanged at 2, got %d", got.Stock)
	}
}

func TestMySQLDecrementStock_RejectsNonPositive(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	p := seedProduct(t, adapter, 3)
	defer adapter.DeleteProduct(ctx, p.ID)

	for _, amount := range []int{0, -5} {
		if err := adapter.DecrementStock(ctx, p.ID, amount); !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Errorf("amount %d: expected ErrInvalidQuantity, got: %v", amount, err)
		}
	}

	got, _ := adapter.GetProduct(ctx, p.ID)
	if got.Stock != 3 {
		t.Errorf("expected stock unchanged at 3, got %d", got.Stock)
	}
}

func TestMySQLDecrementStock_NotFound(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	adapter := NewMySQLAdapter(db)

	err := adapter.DecrementStock(context.Background(), "missing-"+uuid.NewString(), 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestMySQLDecrementStock_Concurrent(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	initialStock := 20
	totalRequests := 50
	p := seedProduct(t, adapter, initialStock)
	defer adapter.DeleteProduct(ctx, p.ID)

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := adapter.DecrementStock(ctx, p.ID, 1)
			if err == nil {
				successCount.Add(1)
				return
			}
			if !errors.Is(err, domain.ErrInsufficientStock) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	wg.Wait()

	if successCount.Load() != int32(initialStock) {
		t.Errorf("expected %d successes, got %d", initialStock, successCount.Load())
	}

	got, _ := adapter.GetProduct(ctx, p.ID)
	if got.Stock != 0 {
		t.Errorf("expected stock 0, got %d", got.Stock)
	}
}

func TestMySQLCart_SaveAndLoad(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	now := time.Now().UTC().Truncate(time.Second)

	cart := domain.Cart{
		ID:     uuid.NewString(),
		UserID: uuid.NewString(),
		Items: []domain.CartItem{
			{ID: uuid.NewString(), Kind: domain.ItemKindCourse, RefID: "course-1", Quantity: 1},
			{ID: uuid.NewString(), Kind: domain.ItemKindProduct, RefID: "product-1", Quantity: 3},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := adapter.SaveCart(ctx, cart); err != nil {
		t.Fatalf("SaveCart failed: %v", err)
	}
	defer db.ExecContext(ctx, `DELETE FROM carts WHERE id = ?`, cart.ID)

	got, err := adapter.GetCart(ctx, cart.UserID)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got.Items))
	}
	if got.Items[0].Kind != domain.ItemKindCourse || got.Items[1].Quantity != 3 {
		t.Errorf("items not restored in order: %+v", got.Items)
	}

	// Clearing keeps the cart row
	got.Items = []domain.CartItem{}
	if err := adapter.SaveCart(ctx, *got); err != nil {
		t.Fatalf("SaveCart failed: %v", err)
	}
	got, err = adapter.GetCart(ctx, cart.UserID)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if len(got.Items) != 0 {
		t.Errorf("expected empty cart, got %d items", len(got.Items))
	}
}

func TestMySQLSaveCart_ConcurrentFirstAdd(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	now := time.Now().UTC().Truncate(time.Second)
	userID := uuid.NewString()

	// Both writers saw no cart and generated their own id.
	winner := domain.Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		Items:     []domain.CartItem{{ID: uuid.NewString(), Kind: domain.ItemKindProduct, RefID: "product-1", Quantity: 1}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	loser := domain.Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		Items:     []domain.CartItem{{ID: uuid.NewString(), Kind: domain.ItemKindCourse, RefID: "course-1", Quantity: 1}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := adapter.SaveCart(ctx, winner); err != nil {
		t.Fatalf("SaveCart failed: %v", err)
	}
	defer db.ExecContext(ctx, `DELETE FROM carts WHERE user_id = ?`, userID)

	if err := adapter.SaveCart(ctx, loser); err != nil {
		t.Fatalf("second SaveCart failed: %v", err)
	}

	got, err := adapter.GetCart(ctx, userID)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if got.ID != winner.ID {
		t.Errorf("expected cart id %s, got %s", winner.ID, got.ID)
	}
	if len(got.Items) != 2 || got.Items[0].RefID != "product-1" || got.Items[1].RefID != "course-1" {
		t.Errorf("expected both items in order, got %+v", got.Items)
	}
}

func TestMySQLSaveWishlist_ConcurrentFirstAdd(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	now := time.Now().UTC().Truncate(time.Second)
	userID := uuid.NewString()

	first := domain.Wishlist{
		ID:        uuid.NewString(),
		UserID:    userID,
		Items:     []domain.WishlistItem{{ID: uuid.NewString(), Kind: domain.ItemKindProduct, RefID: "product-1"}},
		CreatedAt: now,
	}
	second := domain.Wishlist{
		ID:        uuid.NewString(),
		UserID:    userID,
		Items:     []domain.WishlistItem{{ID: uuid.NewString(), Kind: domain.ItemKindProduct, RefID: "product-2"}},
		CreatedAt: now,
	}
	if err := adapter.SaveWishlist(ctx, first); err != nil {
		t.Fatalf("SaveWishlist failed: %v", err)
	}
	defer db.ExecContext(ctx, `DELETE FROM wishlists WHERE user_id = ?`, userID)

	if err := adapter.SaveWishlist(ctx, second); err != nil {
		t.Fatalf("second SaveWishlist failed: %v", err)
	}

	got, err := adapter.GetWishlist(ctx, userID)
	if err != nil {
		t.Fatalf("GetWishlist failed: %v", err)
	}
	if got.ID != first.ID || len(got.Items) != 2 {
		t.Errorf("expected wishlist %s with 2 items, got %s with %+v", first.ID, got.ID, got.Items)
	}
}

func TestMySQLWithinTx_RollbackOnError(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	p := seedProduct(t, adapter, 5)
	defer adapter.DeleteProduct(ctx, p.ID)

	boom := errors.New("boom")
	err := adapter.WithinTx(ctx, func(tx port.Store) error {
		if err := tx.Catalog().DecrementStock(ctx, p.ID, 5); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got: %v", err)
	}

	got, _ := adapter.GetProduct(ctx, p.ID)
	if got.Stock != 5 {
		t.Errorf("expected stock restored to 5, got %d", got.Stock)
	}
}

func TestMySQLOrderAndBill(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	now := time.Now().UTC().Truncate(time.Second)

	order := domain.Order{
		ID:     uuid.NewString(),
		UserID: uuid.NewString(),
		Items: []domain.OrderItem{
			{Kind: domain.ItemKindProduct, RefID: "product-1", Quantity: 2},
		},
		TotalAmount:   decimal.RequireFromString("40.00"),
		PaymentStatus: domain.PaymentStatusPaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	totals := domain.ComputeTotals(order.TotalAmount)
	bill := domain.Bill{
		ID:          uuid.NewString(),
		OrderID:     order.ID,
		UserID:      order.UserID,
		Items:       []domain.ItemRef{domain.ProductRef("product-1")},
		TotalAmount: totals.Total,
		Taxes:       totals.Taxes,
		Discounts:   totals.Discounts,
		FinalAmount: totals.Final,
		CreatedAt:   now,
	}

	err := adapter.WithinTx(ctx, func(tx port.Store) error {
		if err := tx.Orders().CreateOrder(ctx, order); err != nil {
			return err
		}
		return tx.Bills().CreateBill(ctx, bill)
	})
	if err != nil {
		t.Fatalf("create order and bill: %v", err)
	}
	defer db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, order.ID)
	defer db.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, bill.ID)

	gotOrder, err := adapter.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if len(gotOrder.Items) != 1 || gotOrder.Items[0].Quantity != 2 {
		t.Errorf("unexpected order items: %+v", gotOrder.Items)
	}

	gotBill, err := adapter.GetBillByOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetBillByOrder failed: %v", err)
	}
	if !gotBill.FinalAmount.Equal(decimal.RequireFromString("42")) {
		t.Errorf("expected final 42, got %s", gotBill.FinalAmount)
	}

	if err := adapter.UpdatePaymentStatus(ctx, order.ID, domain.PaymentStatusCancelled); err != nil {
		t.Fatalf("UpdatePaymentStatus failed: %v", err)
	}
	mine, err := adapter.ListOrdersByUser(ctx, order.UserID)
	if err != nil {
		t.Fatalf("ListOrdersByUser failed: %v", err)
	}
	if len(mine) != 1 || mine[0].PaymentStatus != domain.PaymentStatusCancelled {
		t.Errorf("unexpected orders: %+v", mine)
	}
}

func TestMySQLCreateUser_Duplicate(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	user := domain.User{
		ID:           uuid.NewString(),
		Name:         "dup",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		Role:         domain.RoleUser,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if err := adapter.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	defer db.ExecContext(ctx, `DELETE FROM users WHERE email = ?`, user.Email)

	user.ID = uuid.NewString()
	if err := adapter.CreateUser(ctx, user); !errors.Is(err, domain.ErrUserExists) {
		t.Errorf("expected ErrUserExists, got: %v", err)
	}
}

type brokenResult struct{}

func (brokenResult) LastInsertId() (int64, error) { return 0, errors.New("no insert id") }
func (brokenResult) RowsAffected() (int64, error) { return 0, errors.New("driver lost row count") }

func TestExpectAffected_RowCountError(t *testing.T) {
	err := expectAffected(context.Background(), nil, brokenResult{}, "products", "p1", "product")
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, domain.ErrNotFound) {
		t.Errorf("row count failure must not read as not found: %v", err)
	}
}
