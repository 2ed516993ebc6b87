package service

import (
	"context"
	"fmt"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// OrderService exposes checkout outputs to their owners and to admins.
type OrderService struct {
	store port.Store
}

func NewOrderService(store port.Store) *OrderService {
	return &OrderService{store: store}
}

func (s *OrderService) ListMyOrders(ctx context.Context, caller domain.Identity) ([]domain.Order, error) {
	orders, err := s.store.Orders().ListOrdersByUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) ListAllOrders(ctx context.Context, caller domain.Identity) ([]domain.Order, error) {
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	orders, err := s.store.Orders().ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) GetOrder(ctx context.Context, caller domain.Identity, id string) (*domain.Order, error) {
	order, err := s.store.Orders().GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

func (s *OrderService) UpdatePaymentStatus(ctx context.Context, caller domain.Identity, id, status string) (*domain.Order, error) {
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	st, err := domain.ParsePaymentStatus(status)
	if err != nil {
		return nil, err
	}

	var out domain.Order
	err = s.store.WithinTx(ctx, func(tx port.Store) error {
		if err := tx.Orders().UpdatePaymentStatus(ctx, id, st); err != nil {
			return err
		}
		order, err := tx.Orders().GetOrder(ctx, id)
		if err != nil {
			return err
		}
		out = *order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *OrderService) GetBill(ctx context.Context, caller domain.Identity, orderID string) (*domain.Bill, error) {
	if _, err := s.GetOrder(ctx, caller, orderID); err != nil {
		return nil, err
	}
	return s.store.Bills().GetBillByOrder(ctx, orderID)
}
