package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/storefront/internal/core/domain"
)

func (m *MySQLAdapter) CreateOrder(ctx context.Context, order domain.Order) error {
	return m.tx(ctx, func(tx *MySQLAdapter) error {
		_, err := tx.q.ExecContext(ctx, `
			INSERT INTO orders (id, user_id, total_amount, payment_status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			order.ID, order.UserID, order.TotalAmount, string(order.PaymentStatus),
			order.CreatedAt, order.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i, item := range order.Items {
			_, err := tx.q.ExecContext(ctx, `
				INSERT INTO order_items (order_id, position, item_kind, ref_id, quantity)
				VALUES (?, ?, ?, ?, ?)`,
				order.ID, i, string(item.Kind), item.RefID, item.Quantity,
			)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}
		return nil
	})
}

func (m *MySQLAdapter) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := m.q.QueryRowContext(ctx, `
		SELECT id, user_id, total_amount, payment_status, created_at, updated_at
		FROM orders WHERE id = ?`, id,
	).Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.PaymentStatus, &o.CreatedAt, &o.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	if o.Items, err = m.orderItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (m *MySQLAdapter) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return m.listOrders(ctx, `
		SELECT id, user_id, total_amount, payment_status, created_at, updated_at
		FROM orders ORDER BY created_at DESC, id`)
}

func (m *MySQLAdapter) ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return m.listOrders(ctx, `
		SELECT id, user_id, total_amount, payment_status, created_at, updated_at
		FROM orders WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
}

func (m *MySQLAdapter) listOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := m.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	orders := []domain.Order{}
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.PaymentStatus, &o.CreatedAt, &o.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	// Items are loaded after the cursor is closed: a *sql.Tx cannot run a
	// second query while rows are still open.
	for i := range orders {
		if orders[i].Items, err = m.orderItems(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (m *MySQLAdapter) orderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := m.q.QueryContext(ctx, `
		SELECT item_kind, ref_id, quantity
		FROM order_items WHERE order_id = ? ORDER BY position`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.Kind, &item.RefID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}

func (m *MySQLAdapter) UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	result, err := m.q.ExecContext(ctx, `
		UPDATE orders SET payment_status = ?, updated_at = NOW(6)
		WHERE id = ?`, string(status), id,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("order %w", domain.ErrNotFound)
	}
	return nil
}

func (m *MySQLAdapter) CreateBill(ctx context.Context, bill domain.Bill) error {
	return m.tx(ctx, func(tx *MySQLAdapter) error {
		_, err := tx.q.ExecContext(ctx, `
			INSERT INTO bills (id, order_id, user_id, total_amount, taxes, discounts, final_amount, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			bill.ID, bill.OrderID, bill.UserID, bill.TotalAmount, bill.Taxes,
			bill.Discounts, bill.FinalAmount, bill.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert bill: %w", err)
		}

		for i, item := range bill.Items {
			_, err := tx.q.ExecContext(ctx, `
				INSERT INTO bill_items (bill_id, position, item_kind, ref_id)
				VALUES (?, ?, ?, ?)`,
				bill.ID, i, string(item.Kind), item.ID,
			)
			if err != nil {
				return fmt.Errorf("insert bill item: %w", err)
			}
		}
		return nil
	})
}

func (m *MySQLAdapter) GetBillByOrder(ctx context.Context, orderID string) (*domain.Bill, error) {
	var b domain.Bill
	err := m.q.QueryRowContext(ctx, `
		SELECT id, order_id, user_id, total_amount, taxes, discounts, final_amount, created_at
		FROM bills WHERE order_id = ?`, orderID,
	).Scan(&b.ID, &b.OrderID, &b.UserID, &b.TotalAmount, &b.Taxes, &b.Discounts, &b.FinalAmount, &b.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query bill: %w", err)
	}

	rows, err := m.q.QueryContext(ctx, `
		SELECT item_kind, ref_id
		FROM bill_items WHERE bill_id = ? ORDER BY position`, b.ID)
	if err != nil {
		return nil, fmt.Errorf("query bill items: %w", err)
	}
	defer rows.Close()

	b.Items = []domain.ItemRef{}
	for rows.Next() {
		var ref domain.ItemRef
		if err := rows.Scan(&ref.Kind, &ref.ID); err != nil {
			return nil, fmt.Errorf("scan bill item: %w", err)
		}
		b.Items = append(b.Items, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bill items: %w", err)
	}
	return &b, nil
}
