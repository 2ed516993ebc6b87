package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

type CartService struct {
	store port.Store
}

func NewCartService(store port.Store) *CartService {
	return &CartService{store: store}
}

// AddItemRequest may carry a course, a product, or both. Both are applied
// in the same call, course first. Quantity applies to the product only and
// defaults to 1.
type AddItemRequest struct {
	CourseID  string
	ProductID string
	Quantity  int
}

func (s *CartService) AddItem(ctx context.Context, userID string, req AddItemRequest) (*domain.Cart, error) {
	if req.CourseID == "" && req.ProductID == "" {
		return nil, fmt.Errorf("%w: courseId or productId is required", domain.ErrInvalidInput)
	}
	if req.Quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	var out domain.Cart
	err := s.store.WithinTx(ctx, func(tx port.Store) error {
		cart, err := loadOrNewCart(ctx, tx.Carts(), userID)
		if err != nil {
			return err
		}

		if req.CourseID != "" {
			if cart.Find(domain.CourseRef(req.CourseID)) >= 0 {
				return fmt.Errorf("%w: course already in cart", domain.ErrDuplicateItem)
			}
			if _, err := tx.Catalog().GetCourse(ctx, req.CourseID); err != nil {
				return err
			}
			cart.Items = append(cart.Items, domain.CartItem{
				ID:       uuid.NewString(),
				Kind:     domain.ItemKindCourse,
				RefID:    req.CourseID,
				Quantity: 1,
			})
		}

		if req.ProductID != "" {
			product, err := tx.Catalog().GetProduct(ctx, req.ProductID)
			if err != nil {
				return err
			}

			quantity := req.Quantity
			if quantity == 0 {
				quantity = 1
			}

			if idx := cart.Find(domain.ProductRef(req.ProductID)); idx >= 0 {
				existing := cart.Items[idx].Quantity
				// Compared without summing so a huge request cannot wrap around.
				if quantity > product.Stock-existing {
					return fmt.Errorf("%w: requested %d more, available %d, in cart %d",
						domain.ErrInsufficientStock, quantity, product.Stock, existing)
				}
				cart.Items[idx].Quantity = existing + quantity
			} else {
				if quantity > product.Stock {
					return fmt.Errorf("%w: requested %d, available %d", domain.ErrInsufficientStock, quantity, product.Stock)
				}
				cart.Items = append(cart.Items, domain.CartItem{
					ID:       uuid.NewString(),
					Kind:     domain.ItemKindProduct,
					RefID:    req.ProductID,
					Quantity: quantity,
				})
			}
		}

		cart.UpdatedAt = nowUTC()
		if err := tx.Carts().SaveCart(ctx, *cart); err != nil {
			return fmt.Errorf("save cart: %w", err)
		}
		out = *cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCart returns the cart with course and product display fields expanded.
// Entries whose catalog record has since been deleted are kept with empty fields.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.CartView, error) {
	cart, err := s.store.Carts().GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &domain.CartView{
		ID:     cart.ID,
		UserID: cart.UserID,
		Items:  make([]domain.CartItemView, 0, len(cart.Items)),
	}
	for _, item := range cart.Items {
		iv := domain.CartItemView{CartItem: item}
		switch item.Kind {
		case domain.ItemKindCourse:
			course, err := s.store.Catalog().GetCourse(ctx, item.RefID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			if course != nil {
				iv.Title = course.Title
				iv.Description = course.Description
			}
		case domain.ItemKindProduct:
			product, err := s.store.Catalog().GetProduct(ctx, item.RefID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			if product != nil {
				stock := product.Stock
				iv.Name = product.Name
				iv.Description = product.Description
				iv.Stock = &stock
			}
		}
		view.Items = append(view.Items, iv)
	}
	return view, nil
}

// UpdateItemQuantity sets the quantity of a product line. Course lines accept
// the call but always stay at quantity 1.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	var out domain.Cart
	err := s.store.WithinTx(ctx, func(tx port.Store) error {
		cart, err := tx.Carts().GetCart(ctx, userID)
		if err != nil {
			return err
		}

		item, ok := cart.ItemByID(itemID)
		if !ok {
			return fmt.Errorf("%w: item not found in cart", domain.ErrNotFound)
		}

		if item.Kind == domain.ItemKindProduct {
			product, err := tx.Catalog().GetProduct(ctx, item.RefID)
			if err != nil {
				return err
			}
			if quantity > product.Stock {
				return fmt.Errorf("%w: requested %d, available %d", domain.ErrInsufficientStock, quantity, product.Stock)
			}
			item.Quantity = quantity
		}

		cart.UpdatedAt = nowUTC()
		if err := tx.Carts().SaveCart(ctx, *cart); err != nil {
			return fmt.Errorf("save cart: %w", err)
		}
		out = *cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveItem is idempotent: an unknown item id leaves the cart unchanged.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	var out domain.Cart
	err := s.store.WithinTx(ctx, func(tx port.Store) error {
		cart, err := tx.Carts().GetCart(ctx, userID)
		if err != nil {
			return err
		}

		cart.Remove(itemID)
		cart.UpdatedAt = nowUTC()
		if err := tx.Carts().SaveCart(ctx, *cart); err != nil {
			return fmt.Errorf("save cart: %w", err)
		}
		out = *cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func loadOrNewCart(ctx context.Context, carts port.CartRepository, userID string) (*domain.Cart, error) {
	cart, err := carts.GetCart(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		now := nowUTC()
		return &domain.Cart{
			ID:        uuid.NewString(),
			UserID:    userID,
			Items:     []domain.CartItem{},
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return cart, nil
}
