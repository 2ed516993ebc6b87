package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

type memoryState struct {
	products  map[string]domain.Product
	courses   map[string]domain.Course
	carts     map[string]domain.Cart
	wishlists map[string]domain.Wishlist
	orders    map[string]domain.Order
	bills     map[string]domain.Bill
	users     map[string]domain.User
}

func newMemoryState() *memoryState {
	return &memoryState{
		products:  make(map[string]domain.Product),
		courses:   make(map[string]domain.Course),
		carts:     make(map[string]domain.Cart),
		wishlists: make(map[string]domain.Wishlist),
		orders:    make(map[string]domain.Order),
		bills:     make(map[string]domain.Bill),
		users:     make(map[string]domain.User),
	}
}

// clone deep-copies every slice held by the state so a rolled back
// transaction cannot leak writes into the committed copy.
func (s *memoryState) clone() *memoryState {
	cp := newMemoryState()
	for k, v := range s.products {
		cp.products[k] = v
	}
	for k, v := range s.courses {
		cp.courses[k] = v
	}
	for k, v := range s.carts {
		cp.carts[k] = v.Clone()
	}
	for k, v := range s.wishlists {
		cp.wishlists[k] = v.Clone()
	}
	for k, v := range s.orders {
		v.Items = append([]domain.OrderItem(nil), v.Items...)
		cp.orders[k] = v
	}
	for k, v := range s.bills {
		v.Items = append([]domain.ItemRef(nil), v.Items...)
		cp.bills[k] = v
	}
	for k, v := range s.users {
		cp.users[k] = v
	}
	return cp
}

type memoryRoot struct {
	mu    sync.Mutex
	state *memoryState
}

// MemoryAdapter is an in-process Store. Transactions are serialized under one
// mutex and applied copy-on-write, giving the same all-or-nothing checkout as
// the MySQL adapter.
type MemoryAdapter struct {
	root  *memoryRoot
	state *memoryState // non-nil only inside WithinTx
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{root: &memoryRoot{state: newMemoryState()}}
}

func (m *MemoryAdapter) Catalog() port.CatalogRepository { return m }
func (m *MemoryAdapter) Carts() port.CartRepository { return m }
func (m *MemoryAdapter) Wishlists() port.WishlistRepository { return m }
func (m *MemoryAdapter) Orders() port.OrderRepository { return m }
func (m *MemoryAdapter) Bills() port.BillRepository { return m }
func (m *MemoryAdapter) Users() port.UserRepository { return m }

func (m *MemoryAdapter) WithinTx(ctx context.Context, fn func(tx port.Store) error) error {
	if m.state != nil {
		return fn(m)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.root.mu.Lock()
	defer m.root.mu.Unlock()

	working := m.root.state.clone()
	if err := fn(&MemoryAdapter{root: m.root, state: working}); err != nil {
		return err
	}
	m.root.state = working
	return nil
}

func (m *MemoryAdapter) with(fn func(s *memoryState) error) error {
	if m.state != nil {
		return fn(m.state)
	}
	m.root.mu.Lock()
	defer m.root.mu.Unlock()
	return fn(m.root.state)
}

func (m *MemoryAdapter) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var out domain.Product
	err := m.with(func(s *memoryState) error {
		p, ok := s.products[id]
		if !ok {
			return fmt.Errorf("product %w", domain.ErrNotFound)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *MemoryAdapter) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	var out domain.Course
	err := m.with(func(s *memoryState) error {
		c, ok := s.courses[id]
		if !ok {
			return fmt.Errorf("course %w", domain.ErrNotFound)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *MemoryAdapter) DecrementStock(ctx context.Context, productID string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: decrement by %d", domain.ErrInvalidQuantity, amount)
	}
	return m.with(func(s *memoryState) error {
		p, ok := s.products[productID]
		if !ok {
			return fmt.Errorf("product %w", domain.ErrNotFound)
		}
		if p.Stock < amount {
			return domain.ErrInsufficientStock
		}
		p.Stock -= amount
		p.UpdatedAt = timeNow()
		s.products[productID] = p
		return nil
	})
}

func (m *MemoryAdapter) ListProducts(ctx context.Context, offset, limit int) ([]domain.Product, int, error) {
	var out []domain.Product
	var total int
	err := m.with(func(s *memoryState) error {
		all := make([]domain.Product, 0, len(s.products))
		for _, p := range s.products {
			all = append(all, p)
		}
		sort.Slice(all, func(i, j int) bool {
			if all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].ID < all[j].ID
			}
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		})
		total = len(all)
		out = window(all, offset, limit)
		return nil
	})
	return out, total, err
}

func (m *MemoryAdapter) CreateProduct(ctx context.Context, p domain.Product) error {
	return m.with(func(s *memoryState) error {
		s.products[p.ID] = p
		return nil
	})
}

func (m *MemoryAdapter) UpdateProduct(ctx context.Context, p domain.Product) error {
	return m.with(func(s *memoryState) error {
		if _, ok := s.products[p.ID]; !ok {
			return fmt.Errorf("product %w", domain.ErrNotFound)
		}
		s.products[p.ID] = p
		return nil
	})
}

func (m *MemoryAdapter) DeleteProduct(ctx context.Context, id string) error {
	return m.with(func(s *memoryState) error {
		if _, ok := s.products[id]; !ok {
			return fmt.Errorf("product %w", domain.ErrNotFound)
		}
		delete(s.products, id)
		return nil
	})
}

func (m *MemoryAdapter) ListCourses(ctx context.Context, offset, limit int) ([]domain.Course, int, error) {
	var out []domain.Course
	var total int
	err := m.with(func(s *memoryState) error {
		all := make([]domain.Course, 0, len(s.courses))
		for _, c := range s.courses {
			all = append(all, c)
		}
		sort.Slice(all, func(i, j int) bool {
			if all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].ID < all[j].ID
			}
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		})
		total = len(all)
		out = window(all, offset, limit)
		return nil
	})
	return out, total, err
}

func (m *MemoryAdapter) CreateCourse(ctx context.Context, c domain.Course) error {
	return m.with(func(s *memoryState) error {
		s.courses[c.ID] = c
		return nil
	})
}

func (m *MemoryAdapter) UpdateCourse(ctx context.Context, c domain.Course) error {
	return m.with(func(s *memoryState) error {
		if _, ok := s.courses[c.ID]; !ok {
			return fmt.Errorf("course %w", domain.ErrNotFound)
		}
		s.courses[c.ID] = c
		return nil
	})
}

func (m *MemoryAdapter) DeleteCourse(ctx context.Context, id string) error {
	return m.with(func(s *memoryState) error {
		if _, ok := s.courses[id]; !ok {
			return fmt.Errorf("course %w", domain.ErrNotFound)
		}
		delete(s.courses, id)
		return nil
	})
}

func (m *MemoryAdapter) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var out domain.Cart
	err := m.with(func(s *memoryState) error {
		cart, ok := s.carts[userID]
		if !ok {
			return fmt.Errorf("cart %w", domain.ErrNotFound)
		}
		out = cart.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *MemoryAdapter) SaveCart(ctx context.Context, cart domain.Cart) error {
	return m.with(func(s *memoryState) error {
		s.carts[cart.UserID] = cart.Clone()
		return nil
	})
}

func (m *MemoryAdapter) GetWishlist(ctx context.Context, userID string) (*domain.Wishlist, error) {
	var out domain.Wishlist
	err := m.with(func(s *memoryState) error {
		wl, ok := s.wishlists[userID]
		if !ok {
			return fmt.Errorf("wishlist %w", domain.ErrNotFound)
		}
		out = wl.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *MemoryAdapter) SaveWishlist(ctx context.Context, wl domain.Wishlist) error {
	return m.with(func(s *memoryState) error {
		s.wishlists[wl.UserID] = wl.Clone()
		return nil
	})
}

func (m *MemoryAdapter) CreateOrder(ctx context.Context, order domain.Order) error {
	return m.with(func(s *memoryState) error {
		order.Items = append([]domain.OrderItem(nil), order.Items...)
		s.orders[order.ID] = order
		return nil
	})
}

func (m *MemoryAdapter) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var out domain.Order
	err := m.with(func(s *memoryState) error {
		o, ok := s.orders[id]
		if !ok {
			return fmt.Errorf("order %w", domain.ErrNotFound)
		}
		o.Items = append([]domain.OrderItem(nil), o.Items...)
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *MemoryAdapter) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return m.listOrders(func(domain.Order) bool { return true })
}

func (m *MemoryAdapter) ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return m.listOrders(func(o domain.Order) bool { return o.UserID == userID })
}

func (m *MemoryAdapter) listOrders(keep func(domain.Order) bool) ([]domain.Order, error) {
	out := []domain.Order{}
	err := m.with(func(s *memoryState) error {
		for _, o := range s.orders {
			if keep(o) {
				o.Items = append([]domain.OrderItem(nil), o.Items...)
				out = append(out, o)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, err
}

func (m *MemoryAdapter) UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	return m.with(func(s *memoryState) error {
		o, ok := s.orders[id]
		if !ok {
			return fmt.Errorf("order %w", domain.ErrNotFound)
		}
		o.PaymentStatus = status
		o.UpdatedAt = timeNow()
		s.orders[id] = o
		return nil
	})
}

func (m *MemoryAdapter) CreateBill(ctx context.Context, bill domain.Bill) error {
	return m.with(func(s *memoryState) error {
		bill.Items = append([]domain.ItemRef(nil), bill.Items...)
		s.bills[bill.OrderID] = bill
		return nil
	})
}

func (m *MemoryAdapter) GetBillByOrder(ctx context.Context, orderID string) (*domain.Bill, error) {
	var out domain.Bill
	err := m.with(func(s *memoryState) error {
		b, ok := s.bills[orderID]
		if !ok {
			return fmt.Errorf("bill %w", domain.ErrNotFound)
		}
		b.Items = append([]domain.ItemRef(nil), b.Items...)
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *MemoryAdapter) CreateUser(ctx context.Context, user domain.User) error {
	return m.with(func(s *memoryState) error {
		for _, u := range s.users {
			if u.Email == user.Email {
				return domain.ErrUserExists
			}
		}
		s.users[user.ID] = user
		return nil
	})
}

func (m *MemoryAdapter) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var out domain.User
	err := m.with(func(s *memoryState) error {
		u, ok := s.users[id]
		if !ok {
			return fmt.Errorf("user %w", domain.ErrNotFound)
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *MemoryAdapter) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var out domain.User
	err := m.with(func(s *memoryState) error {
		for _, u := range s.users {
			if u.Email == email {
				out = u
				return nil
			}
		}
		return fmt.Errorf("user %w", domain.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func window[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
