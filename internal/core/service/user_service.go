package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

const minPasswordLength = 6

type UserService struct {
	store  port.Store
	tokens port.TokenIssuer
	cost   int
}

func NewUserService(store port.Store, tokens port.TokenIssuer) *UserService {
	return &UserService{store: store, tokens: tokens, cost: bcrypt.DefaultCost}
}

type AuthResult struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

func (s *UserService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	user, err := s.createUser(ctx, name, email, password, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Sign(ctx, domain.Identity{UserID: user.ID, Role: user.Role})
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{User: *user, Token: token}, nil
}

// EnsureAdmin creates an admin account unless the email is already taken.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	_, err := s.createUser(ctx, name, email, password, domain.RoleAdmin)
	if errors.Is(err, domain.ErrUserExists) {
		return nil
	}
	return err
}

func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.store.Users().GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Sign(ctx, domain.Identity{UserID: user.ID, Role: user.Role})
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{User: *user, Token: token}, nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.store.Users().GetUser(ctx, userID)
}

func (s *UserService) createUser(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	email = normalizeEmail(email)
	var problems []string
	if strings.TrimSpace(name) == "" {
		problems = append(problems, "name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		problems = append(problems, "a valid email is required")
	}
	if len(password) < minPasswordLength {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, ", "))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    nowUTC(),
	}
	if err := s.store.Users().CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
