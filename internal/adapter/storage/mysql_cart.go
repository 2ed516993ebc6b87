package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/storefront/internal/core/domain"
)

func (m *MySQLAdapter) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart
	err := m.q.QueryRowContext(ctx, `
		SELECT id, user_id, created_at, updated_at
		FROM carts WHERE user_id = ?`+m.lockClause(), userID,
	).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cart %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}

	rows, err := m.q.QueryContext(ctx, `
		SELECT id, item_kind, ref_id, quantity
		FROM cart_items WHERE cart_id = ? ORDER BY position`, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	cart.Items = []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.Kind, &item.RefID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}
	return &cart, nil
}

// SaveCart replaces the stored items of the user's cart. When a concurrent
// first add created the row under another id, the items are appended to
// that row instead.
func (m *MySQLAdapter) SaveCart(ctx context.Context, cart domain.Cart) error {
	return m.tx(ctx, func(tx *MySQLAdapter) error {
		_, err := tx.q.ExecContext(ctx, `
			INSERT INTO carts (id, user_id, created_at, updated_at)
			VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE updated_at = VALUES(updated_at)`,
			cart.ID, cart.UserID, cart.CreatedAt, cart.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert cart: %w", err)
		}

		cartID, start, err := tx.ownerRow(ctx, "carts", "cart_items", "cart_id", cart.UserID, cart.ID)
		if err != nil {
			return fmt.Errorf("resolve cart: %w", err)
		}

		for i, item := range cart.Items {
			_, err := tx.q.ExecContext(ctx, `
				INSERT INTO cart_items (id, cart_id, position, item_kind, ref_id, quantity)
				VALUES (?, ?, ?, ?, ?, ?)`,
				item.ID, cartID, start+i, string(item.Kind), item.RefID, item.Quantity,
			)
			if isDuplicateEntry(err) {
				return fmt.Errorf("%w: %s %s", domain.ErrDuplicateItem, item.Kind, item.RefID)
			}
			if err != nil {
				return fmt.Errorf("insert cart item: %w", err)
			}
		}
		return nil
	})
}

// ownerRow returns the id stored for the user's row in table and the first
// free item position. When the stored id is the caller's, the existing items
// are cleared and positions restart at zero.
func (m *MySQLAdapter) ownerRow(ctx context.Context, table, itemTable, fk, userID, id string) (string, int, error) {
	var stored string
	err := m.q.QueryRowContext(ctx, `SELECT id FROM `+table+` WHERE user_id = ?`, userID).Scan(&stored)
	if err != nil {
		return "", 0, err
	}

	if stored == id {
		if _, err := m.q.ExecContext(ctx, `DELETE FROM `+itemTable+` WHERE `+fk+` = ?`, id); err != nil {
			return "", 0, fmt.Errorf("clear items: %w", err)
		}
		return stored, 0, nil
	}

	var next int
	err = m.q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM `+itemTable+` WHERE `+fk+` = ?`, stored,
	).Scan(&next)
	if err != nil {
		return "", 0, fmt.Errorf("next position: %w", err)
	}
	return stored, next, nil
}

func (m *MySQLAdapter) GetWishlist(ctx context.Context, userID string) (*domain.Wishlist, error) {
	var wl domain.Wishlist
	err := m.q.QueryRowContext(ctx, `
		SELECT id, user_id, created_at
		FROM wishlists WHERE user_id = ?`+m.lockClause(), userID,
	).Scan(&wl.ID, &wl.UserID, &wl.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("wishlist %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query wishlist: %w", err)
	}

	rows, err := m.q.QueryContext(ctx, `
		SELECT id, item_kind, ref_id
		FROM wishlist_items WHERE wishlist_id = ? ORDER BY position`, wl.ID)
	if err != nil {
		return nil, fmt.Errorf("query wishlist items: %w", err)
	}
	defer rows.Close()

	wl.Items = []domain.WishlistItem{}
	for rows.Next() {
		var item domain.WishlistItem
		if err := rows.Scan(&item.ID, &item.Kind, &item.RefID); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		wl.Items = append(wl.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist items: %w", err)
	}
	return &wl, nil
}

func (m *MySQLAdapter) SaveWishlist(ctx context.Context, wl domain.Wishlist) error {
	return m.tx(ctx, func(tx *MySQLAdapter) error {
		_, err := tx.q.ExecContext(ctx, `
			INSERT IGNORE INTO wishlists (id, user_id, created_at)
			VALUES (?, ?, ?)`,
			wl.ID, wl.UserID, wl.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert wishlist: %w", err)
		}

		wishlistID, start, err := tx.ownerRow(ctx, "wishlists", "wishlist_items", "wishlist_id", wl.UserID, wl.ID)
		if err != nil {
			return fmt.Errorf("resolve wishlist: %w", err)
		}

		for i, item := range wl.Items {
			_, err := tx.q.ExecContext(ctx, `
				INSERT INTO wishlist_items (id, wishlist_id, position, item_kind, ref_id)
				VALUES (?, ?, ?, ?, ?)`,
				item.ID, wishlistID, start+i, string(item.Kind), item.RefID,
			)
			if isDuplicateEntry(err) {
				return fmt.Errorf("%w: %s %s", domain.ErrDuplicateItem, item.Kind, item.RefID)
			}
			if err != nil {
				return fmt.Errorf("insert wishlist item: %w", err)
			}
		}
		return nil
	})
}
