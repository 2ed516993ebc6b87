package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/storefront/internal/port"
)

const mysqlDuplicateEntry = 1062

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// MySQLAdapter implements every repository port on one connection pool.
// Adapters handed out by WithinTx share a single *sql.Tx.
type MySQLAdapter struct {
	db   *sql.DB
	q    querier
	inTx bool
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db, q: db}
}

func (m *MySQLAdapter) Catalog() port.CatalogRepository { return m }
func (m *MySQLAdapter) Carts() port.CartRepository { return m }
func (m *MySQLAdapter) Wishlists() port.WishlistRepository { return m }
func (m *MySQLAdapter) Orders() port.OrderRepository { return m }
func (m *MySQLAdapter) Bills() port.BillRepository { return m }
func (m *MySQLAdapter) Users() port.UserRepository { return m }

func (m *MySQLAdapter) WithinTx(ctx context.Context, fn func(tx port.Store) error) error {
	if m.inTx {
		return fn(m)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&MySQLAdapter{db: m.db, q: tx, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// tx runs fn inside the current transaction, or a fresh one.
func (m *MySQLAdapter) tx(ctx context.Context, fn func(tx *MySQLAdapter) error) error {
	return m.WithinTx(ctx, func(tx port.Store) error {
		return fn(tx.(*MySQLAdapter))
	})
}

// lockClause makes reads inside a transaction hold row locks until commit.
func (m *MySQLAdapter) lockClause() string {
	if m.inTx {
		return " FOR UPDATE"
	}
	return ""
}

func isDuplicateEntry(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}

func ApplySchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		name          VARCHAR(255) NOT NULL,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(16)  NOT NULL DEFAULT 'user',
		created_at    DATETIME(6)  NOT NULL,
		UNIQUE KEY uq_users_email (email)
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id          CHAR(36)      NOT NULL PRIMARY KEY,
		name        VARCHAR(255)  NOT NULL,
		description TEXT          NOT NULL,
		price       DECIMAL(12,2) NOT NULL,
		stock       INT           NOT NULL DEFAULT 0,
		created_at  DATETIME(6)   NOT NULL,
		updated_at  DATETIME(6)   NOT NULL,
		CONSTRAINT chk_products_stock CHECK (stock >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id            CHAR(36)      NOT NULL PRIMARY KEY,
		title         VARCHAR(255)  NOT NULL,
		description   TEXT          NOT NULL,
		instructor_id CHAR(36)      NOT NULL,
		price         DECIMAL(12,2) NOT NULL,
		duration      VARCHAR(64)   NOT NULL,
		created_at    DATETIME(6)   NOT NULL,
		updated_at    DATETIME(6)   NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS carts (
		id         CHAR(36)    NOT NULL PRIMARY KEY,
		user_id    CHAR(36)    NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		UNIQUE KEY uq_carts_user (user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		id        CHAR(36)    NOT NULL PRIMARY KEY,
		cart_id   CHAR(36)    NOT NULL,
		position  INT         NOT NULL,
		item_kind VARCHAR(16) NOT NULL,
		ref_id    CHAR(36)    NOT NULL,
		quantity  INT         NOT NULL,
		UNIQUE KEY uq_cart_items_ref (cart_id, item_kind, ref_id),
		CONSTRAINT fk_cart_items_cart FOREIGN KEY (cart_id) REFERENCES carts (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS wishlists (
		id         CHAR(36)    NOT NULL PRIMARY KEY,
		user_id    CHAR(36)    NOT NULL,
		created_at DATETIME(6) NOT NULL,
		UNIQUE KEY uq_wishlists_user (user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS wishlist_items (
		id          CHAR(36)    NOT NULL PRIMARY KEY,
		wishlist_id CHAR(36)    NOT NULL,
		position    INT         NOT NULL,
		item_kind   VARCHAR(16) NOT NULL,
		ref_id      CHAR(36)    NOT NULL,
		UNIQUE KEY uq_wishlist_items_ref (wishlist_id, item_kind, ref_id),
		CONSTRAINT fk_wishlist_items_wishlist FOREIGN KEY (wishlist_id) REFERENCES wishlists (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id             CHAR(36)      NOT NULL PRIMARY KEY,
		user_id        CHAR(36)      NOT NULL,
		total_amount   DECIMAL(14,2) NOT NULL,
		payment_status VARCHAR(16)   NOT NULL DEFAULT 'Pending',
		created_at     DATETIME(6)   NOT NULL,
		updated_at     DATETIME(6)   NOT NULL,
		KEY idx_orders_user (user_id, created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		order_id  CHAR(36)    NOT NULL,
		position  INT         NOT NULL,
		item_kind VARCHAR(16) NOT NULL,
		ref_id    CHAR(36)    NOT NULL,
		quantity  INT         NOT NULL,
		PRIMARY KEY (order_id, position),
		CONSTRAINT fk_order_items_order FOREIGN KEY (order_id) REFERENCES orders (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS bills (
		id           CHAR(36)      NOT NULL PRIMARY KEY,
		order_id     CHAR(36)      NOT NULL,
		user_id      CHAR(36)      NOT NULL,
		total_amount DECIMAL(14,2) NOT NULL,
		taxes        DECIMAL(14,4) NOT NULL,
		discounts    DECIMAL(14,4) NOT NULL,
		final_amount DECIMAL(14,4) NOT NULL,
		created_at   DATETIME(6)   NOT NULL,
		UNIQUE KEY uq_bills_order (order_id)
	)`,
	`CREATE TABLE IF NOT EXISTS bill_items (
		bill_id   CHAR(36)    NOT NULL,
		position  INT         NOT NULL,
		item_kind VARCHAR(16) NOT NULL,
		ref_id    CHAR(36)    NOT NULL,
		PRIMARY KEY (bill_id, position),
		CONSTRAINT fk_bill_items_bill FOREIGN KEY (bill_id) REFERENCES bills (id) ON DELETE CASCADE
	)`,
}
