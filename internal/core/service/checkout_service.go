package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

const (
	checkoutLockPrefix   = "checkout:lock:"
	idempotencyKeyPrefix = "checkout:idem:"
	DefaultLockTTL       = 10 * time.Second
)

type CheckoutResult struct {
	Order domain.Order `json:"order"`
	Bill  domain.Bill  `json:"bill"`
}

type CheckoutService struct {
	store   port.Store
	cache   port.CacheRepository
	lockTTL time.Duration
}

// NewCheckoutService wires the checkout engine. cache may be nil, in which case
// the per-user lock and idempotency keys are skipped and the storage
// transaction alone guards against overselling.
func NewCheckoutService(store port.Store, cache port.CacheRepository, lockTTL time.Duration) *CheckoutService {
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	return &CheckoutService{store: store, cache: cache, lockTTL: lockTTL}
}

// Checkout turns the user's cart into a paid order and its bill. Validation,
// persistence, stock decrement and cart clearing run in one transaction, so a
// failure at any step leaves nothing behind.
func (s *CheckoutService) Checkout(ctx context.Context, userID, idempotencyKey string) (_ *CheckoutResult, err error) {
	if s.cache != nil {
		if idempotencyKey != "" {
			key := fmt.Sprintf("%s%s:%s", idempotencyKeyPrefix, userID, idempotencyKey)
			ok, setErr := s.cache.SetIdempotency(ctx, key)
			if setErr != nil {
				return nil, fmt.Errorf("idempotency check failed: %w", setErr)
			}
			if !ok {
				return nil, domain.ErrDuplicateRequest
			}
			defer func() {
				if err == nil {
					return
				}
				if clearErr := s.cache.ClearIdempotency(context.WithoutCancel(ctx), key); clearErr != nil {
					slog.WarnContext(ctx, "failed to clear idempotency key", "key", key, "error", clearErr)
				}
			}()
		}

		lockKey := checkoutLockPrefix + userID
		token := uuid.NewString()
		ok, lockErr := s.cache.AcquireLock(ctx, lockKey, token, s.lockTTL)
		if lockErr != nil {
			return nil, fmt.Errorf("checkout lock failed: %w", lockErr)
		}
		if !ok {
			return nil, domain.ErrCheckoutInProgress
		}
		defer func() {
			if relErr := s.cache.ReleaseLock(context.WithoutCancel(ctx), lockKey, token); relErr != nil {
				slog.WarnContext(ctx, "failed to release checkout lock", "user_id", userID, "error", relErr)
			}
		}()
	}

	var result *CheckoutResult
	err = s.store.WithinTx(ctx, func(tx port.Store) error {
		r, err := checkout(ctx, tx, userID)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "checkout completed",
		"user_id", userID,
		"order_id", result.Order.ID,
		"final_amount", result.Bill.FinalAmount.String(),
	)
	return result, nil
}

func checkout(ctx context.Context, tx port.Store, userID string) (*CheckoutResult, error) {
	cart, err := tx.Carts().GetCart(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrEmptyCart
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	total := decimal.Zero
	billItems := make([]domain.ItemRef, 0, len(cart.Items))
	orderItems := make([]domain.OrderItem, 0, len(cart.Items))

	for _, item := range cart.Items {
		switch item.Kind {
		case domain.ItemKindProduct:
			product, err := tx.Catalog().GetProduct(ctx, item.RefID)
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: product %s", domain.ErrItemNotFound, item.RefID)
			}
			if err != nil {
				return nil, fmt.Errorf("load product %s: %w", item.RefID, err)
			}
			if item.Quantity <= 0 {
				return nil, fmt.Errorf("%w: product %s has quantity %d", domain.ErrInvalidQuantity, item.RefID, item.Quantity)
			}
			if product.Stock < item.Quantity {
				return nil, fmt.Errorf("%w: product %s", domain.ErrOutOfStock, product.Name)
			}
			if product.Price.IsNegative() {
				return nil, fmt.Errorf("%w: product %s", domain.ErrInvalidPrice, product.Name)
			}
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))

		case domain.ItemKindCourse:
			course, err := tx.Catalog().GetCourse(ctx, item.RefID)
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: course %s", domain.ErrItemNotFound, item.RefID)
			}
			if err != nil {
				return nil, fmt.Errorf("load course %s: %w", item.RefID, err)
			}
			if course.Price.IsNegative() {
				return nil, fmt.Errorf("%w: course %s", domain.ErrInvalidPrice, course.Title)
			}
			total = total.Add(course.Price)

		default:
			return nil, fmt.Errorf("%w: item kind %q", domain.ErrInvalidInput, item.Kind)
		}

		billItems = append(billItems, item.Ref())
		orderItems = append(orderItems, domain.OrderItem{Kind: item.Kind, RefID: item.RefID, Quantity: item.Quantity})
	}

	totals := domain.ComputeTotals(total)
	now := nowUTC()

	order := domain.Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		Items:         orderItems,
		TotalAmount:   totals.Total,
		PaymentStatus: domain.PaymentStatusPaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := tx.Orders().CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	bill := domain.Bill{
		ID:          uuid.NewString(),
		OrderID:     order.ID,
		UserID:      userID,
		Items:       billItems,
		TotalAmount: totals.Total,
		Taxes:       totals.Taxes,
		Discounts:   totals.Discounts,
		FinalAmount: totals.Final,
		CreatedAt:   now,
	}
	if err := tx.Bills().CreateBill(ctx, bill); err != nil {
		return nil, fmt.Errorf("create bill: %w", err)
	}

	for _, item := range cart.Items {
		if item.Kind != domain.ItemKindProduct {
			continue
		}
		err := tx.Catalog().DecrementStock(ctx, item.RefID, item.Quantity)
		if errors.Is(err, domain.ErrInsufficientStock) {
			return nil, fmt.Errorf("%w: product %s", domain.ErrOutOfStock, item.RefID)
		}
		if err != nil {
			return nil, fmt.Errorf("decrement stock %s: %w", item.RefID, err)
		}
	}

	cart.Items = []domain.CartItem{}
	cart.UpdatedAt = now
	if err := tx.Carts().SaveCart(ctx, *cart); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	return &CheckoutResult{Order: order, Bill: bill}, nil
}
