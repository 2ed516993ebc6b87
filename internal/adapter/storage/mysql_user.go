package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/storefront/internal/core/domain"
)

func (m *MySQLAdapter) CreateUser(ctx context.Context, user domain.User) error {
	_, err := m.q.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.PasswordHash, string(user.Role), user.CreatedAt,
	)
	if isDuplicateEntry(err) {
		return domain.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return m.getUser(ctx, `WHERE id = ?`, id)
}

func (m *MySQLAdapter) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getUser(ctx, `WHERE email = ?`, email)
}

func (m *MySQLAdapter) getUser(ctx context.Context, where string, arg string) (*domain.User, error) {
	var u domain.User
	err := m.q.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role, created_at
		FROM users `+where, arg,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}
