package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type CatalogRepository interface {
	// GetProduct returns domain.ErrNotFound when the product does not exist
	GetProduct(ctx context.Context, id string) (*domain.Product, error)

	// GetCourse returns domain.ErrNotFound when the course does not exist
	GetCourse(ctx context.Context, id string) (*domain.Course, error)

	// DecrementStock atomically decreases stock, returns domain.ErrInsufficientStock
	// without touching the row when fewer than amount units remain
	DecrementStock(ctx context.Context, productID string, amount int) error

	ListProducts(ctx context.Context, offset, limit int) ([]domain.Product, int, error)
	CreateProduct(ctx context.Context, p domain.Product) error
	UpdateProduct(ctx context.Context, p domain.Product) error
	DeleteProduct(ctx context.Context, id string) error

	ListCourses(ctx context.Context, offset, limit int) ([]domain.Course, int, error)
	CreateCourse(ctx context.Context, c domain.Course) error
	UpdateCourse(ctx context.Context, c domain.Course) error
	DeleteCourse(ctx context.Context, id string) error
}

type CartRepository interface {
	// GetCart returns domain.ErrNotFound when the user has no cart yet.
	// Inside a transaction the cart is locked until commit.
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)

	// SaveCart creates the cart if needed and replaces its items
	SaveCart(ctx context.Context, cart domain.Cart) error
}

type WishlistRepository interface {
	GetWishlist(ctx context.Context, userID string) (*domain.Wishlist, error)
	SaveWishlist(ctx context.Context, wishlist domain.Wishlist) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error
}

type BillRepository interface {
	CreateBill(ctx context.Context, bill domain.Bill) error
	GetBillByOrder(ctx context.Context, orderID string) (*domain.Bill, error)
}

type UserRepository interface {
	// CreateUser returns domain.ErrUserExists on a duplicate email
	CreateUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Store groups the repositories that share one transaction.
type Store interface {
	Catalog() CatalogRepository
	Carts() CartRepository
	Wishlists() WishlistRepository
	Orders() OrderRepository
	Bills() BillRepository
	Users() UserRepository

	// WithinTx runs fn against a Store bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
