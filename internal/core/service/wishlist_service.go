package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

type WishlistService struct {
	store port.Store
}

func NewWishlistService(store port.Store) *WishlistService {
	return &WishlistService{store: store}
}

func (s *WishlistService) AddToWishlist(ctx context.Context, userID, courseID, productID string) (*domain.Wishlist, error) {
	if courseID == "" && productID == "" {
		return nil, fmt.Errorf("%w: courseId or productId is required", domain.ErrInvalidInput)
	}

	var out domain.Wishlist
	err := s.store.WithinTx(ctx, func(tx port.Store) error {
		wishlist, err := tx.Wishlists().GetWishlist(ctx, userID)
		if errors.Is(err, domain.ErrNotFound) {
			wishlist = &domain.Wishlist{
				ID:        uuid.NewString(),
				UserID:    userID,
				Items:     []domain.WishlistItem{},
				CreatedAt: nowUTC(),
			}
		} else if err != nil {
			return fmt.Errorf("load wishlist: %w", err)
		}

		if courseID != "" {
			ref := domain.CourseRef(courseID)
			if wishlist.Contains(ref) {
				return fmt.Errorf("%w: course already in wishlist", domain.ErrDuplicateItem)
			}
			if _, err := tx.Catalog().GetCourse(ctx, courseID); err != nil {
				return err
			}
			wishlist.Items = append(wishlist.Items, domain.WishlistItem{ID: uuid.NewString(), Kind: ref.Kind, RefID: ref.ID})
		}

		if productID != "" {
			ref := domain.ProductRef(productID)
			if wishlist.Contains(ref) {
				return fmt.Errorf("%w: product already in wishlist", domain.ErrDuplicateItem)
			}
			if _, err := tx.Catalog().GetProduct(ctx, productID); err != nil {
				return err
			}
			wishlist.Items = append(wishlist.Items, domain.WishlistItem{ID: uuid.NewString(), Kind: ref.Kind, RefID: ref.ID})
		}

		if err := tx.Wishlists().SaveWishlist(ctx, *wishlist); err != nil {
			return fmt.Errorf("save wishlist: %w", err)
		}
		out = *wishlist
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *WishlistService) GetWishlist(ctx context.Context, userID string) (*domain.WishlistView, error) {
	wishlist, err := s.store.Wishlists().GetWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &domain.WishlistView{
		ID:     wishlist.ID,
		UserID: wishlist.UserID,
		Items:  make([]domain.WishlistItemView, 0, len(wishlist.Items)),
	}
	for _, item := range wishlist.Items {
		iv := domain.WishlistItemView{WishlistItem: item}
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
				iv.Name = product.Name
				iv.Description = product.Description
			}
		}
		view.Items = append(view.Items, iv)
	}
	return view, nil
}

// RemoveFromWishlist is idempotent like its cart counterpart.
func (s *WishlistService) RemoveFromWishlist(ctx context.Context, userID, itemID string) (*domain.Wishlist, error) {
	var out domain.Wishlist
	err := s.store.WithinTx(ctx, func(tx port.Store) error {
		wishlist, err := tx.Wishlists().GetWishlist(ctx, userID)
		if err != nil {
			return err
		}
		wishlist.Remove(itemID)
		if err := tx.Wishlists().SaveWishlist(ctx, *wishlist); err != nil {
			return fmt.Errorf("save wishlist: %w", err)
		}
		out = *wishlist
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
