package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/storefront/internal/core/domain"
)

func (m *MySQLAdapter) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := m.q.QueryRowContext(ctx, `
		SELECT id, name, description, price, stock, created_at, updated_at
		FROM products WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return &p, nil
}

func (m *MySQLAdapter) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	var c domain.Course
	err := m.q.QueryRowContext(ctx, `
		SELECT id, title, description, instructor_id, price, duration, created_at, updated_at
		FROM courses WHERE id = ?`, id,
	).Scan(&c.ID, &c.Title, &c.Description, &c.InstructorID, &c.Price, &c.Duration, &c.CreatedAt, &c.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("course %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query course: %w", err)
	}
	return &c, nil
}

func (m *MySQLAdapter) DecrementStock(ctx context.Context, productID string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: decrement by %d", domain.ErrInvalidQuantity, amount)
	}
	result, err := m.q.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - ?, updated_at = NOW(6)
		WHERE id = ? AND stock >= ?`,
		amount, productID, amount,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if rows == 1 {
		return nil
	}

	if _, err := m.GetProduct(ctx, productID); err != nil {
		return err
	}
	return domain.ErrInsufficientStock
}

func (m *MySQLAdapter) ListProducts(ctx context.Context, offset, limit int) ([]domain.Product, int, error) {
	var total int
	if err := m.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	rows, err := m.q.QueryContext(ctx, `
		SELECT id, name, description, price, stock, created_at, updated_at
		FROM products ORDER BY created_at, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate products: %w", err)
	}
	return products, total, nil
}

func (m *MySQLAdapter) CreateProduct(ctx context.Context, p domain.Product) error {
	_, err := m.q.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price, stock, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) UpdateProduct(ctx context.Context, p domain.Product) error {
	result, err := m.q.ExecContext(ctx, `
		UPDATE products
		SET name = ?, description = ?, price = ?, stock = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Description, p.Price, p.Stock, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return expectAffected(ctx, m, result, "products", p.ID, "product")
}

func (m *MySQLAdapter) DeleteProduct(ctx context.Context, id string) error {
	result, err := m.q.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("product %w", domain.ErrNotFound)
	}
	return nil
}

func (m *MySQLAdapter) ListCourses(ctx context.Context, offset, limit int) ([]domain.Course, int, error) {
	var total int
	if err := m.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	rows, err := m.q.QueryContext(ctx, `
		SELECT id, title, description, instructor_id, price, duration, created_at, updated_at
		FROM courses ORDER BY created_at, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	var courses []domain.Course
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.InstructorID, &c.Price, &c.Duration, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate courses: %w", err)
	}
	return courses, total, nil
}

func (m *MySQLAdapter) CreateCourse(ctx context.Context, c domain.Course) error {
	_, err := m.q.ExecContext(ctx, `
		INSERT INTO courses (id, title, description, instructor_id, price, duration, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Description, c.InstructorID, c.Price, c.Duration, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) UpdateCourse(ctx context.Context, c domain.Course) error {
	result, err := m.q.ExecContext(ctx, `
		UPDATE courses
		SET title = ?, description = ?, instructor_id = ?, price = ?, duration = ?, updated_at = ?
		WHERE id = ?`,
		c.Title, c.Description, c.InstructorID, c.Price, c.Duration, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return expectAffected(ctx, m, result, "courses", c.ID, "course")
}

func (m *MySQLAdapter) DeleteCourse(ctx context.Context, id string) error {
	result, err := m.q.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("course %w", domain.ErrNotFound)
	}
	return nil
}

// expectAffected reports ErrNotFound for an UPDATE that matched no row.
// MySQL counts unchanged rows as unaffected, so a zero count is confirmed
// with an existence check.
func expectAffected(ctx context.Context, m *MySQLAdapter, result sql.Result, table, id, entity string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", entity, err)
	}
	if rows > 0 {
		return nil
	}
	var exists int
	err = m.q.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %w", entity, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("query %s: %w", entity, err)
	}
	return nil
}
