package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

type CatalogService struct {
	store port.Store
}

func NewCatalogService(store port.Store) *CatalogService {
	return &CatalogService{store: store}
}

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
}

// ProductPatch updates only the fields that are set.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
}

type CourseInput struct {
	Title        string
	Description  string
	InstructorID string
	Price        decimal.Decimal
	Duration     string
}

type CoursePatch struct {
	Title        *string
	Description  *string
	InstructorID *string
	Price        *decimal.Decimal
	Duration     *string
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	var problems []string
	if strings.TrimSpace(in.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		problems = append(problems, "description is required")
	}
	if in.Price.IsNegative() {
		problems = append(problems, "price must not be negative")
	}
	if in.Stock < 0 {
		problems = append(problems, "quantity must not be negative")
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, ", "))
	}

	now := nowUTC()
	p := domain.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Catalog().CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &p, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.store.Catalog().GetProduct(ctx, id)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*domain.Product, error) {
	if patch.Price != nil && patch.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", domain.ErrInvalidInput)
	}

	var out domain.Product
	err := s.store.WithinTx(ctx, func(tx port.Store) error {
		p, err := tx.Catalog().GetProduct(ctx, id)
		if err != nil {
			return err
		}
		if patch.Name != nil && *patch.Name != "" {
			p.Name = *patch.Name
		}
		if patch.Description != nil && *patch.Description != "" {
			p.Description = *patch.Description
		}
		if patch.Price != nil {
			p.Price = *patch.Price
		}
		if patch.Stock != nil {
			p.Stock = *patch.Stock
		}
		p.UpdatedAt = nowUTC()
		if err := tx.Catalog().UpdateProduct(ctx, *p); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		out = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	return s.store.Catalog().DeleteProduct(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context, page, limit int) (domain.Page[domain.Product], error) {
	page, limit = domain.NormalizePage(page, limit)
	items, total, err := s.store.Catalog().ListProducts(ctx, (page-1)*limit, limit)
	if err != nil {
		return domain.Page[domain.Product]{}, fmt.Errorf("list products: %w", err)
	}
	return domain.NewPage(items, total, page, limit), nil
}

func (s *CatalogService) CreateCourse(ctx context.Context, in CourseInput) (*domain.Course, error) {
	var problems []string
	if strings.TrimSpace(in.Title) == "" {
		problems = append(problems, "title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		problems = append(problems, "description is required")
	}
	if strings.TrimSpace(in.InstructorID) == "" {
		problems = append(problems, "instructor is required")
	}
	if strings.TrimSpace(in.Duration) == "" {
		problems = append(problems, "duration is required")
	}
	if in.Price.IsNegative() {
		problems = append(problems, "price must not be negative")
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, ", "))
	}

	now := nowUTC()
	c := domain.Course{
		ID:           uuid.NewString(),
		Title:        in.Title,
		Description:  in.Description,
		InstructorID: in.InstructorID,
		Price:        in.Price,
		Duration:     in.Duration,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Catalog().CreateCourse(ctx, c); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return &c, nil
}

func (s *CatalogService) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	return s.store.Catalog().GetCourse(ctx, id)
}

func (s *CatalogService) UpdateCourse(ctx context.Context, id string, patch CoursePatch) (*domain.Course, error) {
	if patch.Price != nil && patch.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}

	var out domain.Course
	err := s.store.WithinTx(ctx, func(tx port.Store) error {
		c, err := tx.Catalog().GetCourse(ctx, id)
		if err != nil {
			return err
		}
		if patch.Title != nil && *patch.Title != "" {
			c.Title = *patch.Title
		}
		if patch.Description != nil && *patch.Description != "" {
			c.Description = *patch.Description
		}
		if patch.InstructorID != nil && *patch.InstructorID != "" {
			c.InstructorID = *patch.InstructorID
		}
		if patch.Price != nil {
			c.Price = *patch.Price
		}
		if patch.Duration != nil && *patch.Duration != "" {
			c.Duration = *patch.Duration
		}
		c.UpdatedAt = nowUTC()
		if err := tx.Catalog().UpdateCourse(ctx, *c); err != nil {
			return fmt.Errorf("update course: %w", err)
		}
		out = *c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CatalogService) DeleteCourse(ctx context.Context, id string) error {
	return s.store.Catalog().DeleteCourse(ctx, id)
}

func (s *CatalogService) ListCourses(ctx context.Context, page, limit int) (domain.Page[domain.Course], error) {
	page, limit = domain.NormalizePage(page, limit)
	items, total, err := s.store.Catalog().ListCourses(ctx, (page-1)*limit, limit)
	if err != nil {
		return domain.Page[domain.Course]{}, fmt.Errorf("list courses: %w", err)
	}
	return domain.NewPage(items, total, page, limit), nil
}
