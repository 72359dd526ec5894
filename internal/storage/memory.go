package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/frozenfresh/internal/catalog"
)

// Memory bundles in-memory repositories over one shared state. It backs
// handler tests and DEV_MODE runs of the API.
type Memory struct {
	Products *MemoryProductRepo
	Users    *MemoryUserRepo
	Orders   *MemoryOrderRepo
}

type memoryState struct {
	mu       sync.RWMutex
	products map[string]catalog.Product
	users    map[string]User
	orders   map[string]catalog.Order
}

func NewMemory() *Memory {
	state := &memoryState{
		products: make(map[string]catalog.Product),
		users:    make(map[string]User),
		orders:   make(map[string]catalog.Order),
	}
	return &Memory{
		Products: &MemoryProductRepo{state},
		Users:    &MemoryUserRepo{state},
		Orders:   &MemoryOrderRepo{state},
	}
}

// MemoryProductRepo implements ProductRepository.
type MemoryProductRepo struct{ state *memoryState }

func (r *MemoryProductRepo) Create(ctx context.Context, p *catalog.Product) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.InStock = p.Stock > 0
	r.state.products[p.ID] = *p
	return nil
}

func (r *MemoryProductRepo) Update(ctx context.Context, p *catalog.Product) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	existing, ok := r.state.products[p.ID]
	if !ok {
		return ErrProductNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()
	p.InStock = p.Stock > 0
	r.state.products[p.ID] = *p
	return nil
}

func (r *MemoryProductRepo) Delete(ctx context.Context, id string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if _, ok := r.state.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(r.state.products, id)
	return nil
}

func (r *MemoryProductRepo) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	p, ok := r.state.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (r *MemoryProductRepo) List(ctx context.Context) ([]catalog.Product, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	products := make([]catalog.Product, 0, len(r.state.products))
	for _, p := range r.state.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

// MemoryUserRepo implements UserRepository.
type MemoryUserRepo struct{ state *memoryState }

func (r *MemoryUserRepo) Create(ctx context.Context, u *User) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	for _, existing := range r.state.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.CreatedAt = time.Now()
	r.state.users[u.ID] = *u
	return nil
}

func (r *MemoryUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	for _, u := range r.state.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryUserRepo) GetByID(ctx context.Context, id string) (*User, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	u, ok := r.state.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// MemoryOrderRepo implements OrderRepository.
type MemoryOrderRepo struct{ state *memoryState }

func (r *MemoryOrderRepo) Create(ctx context.Context, o *catalog.Order) error {
	if len(o.Items) == 0 {
		return catalog.ErrEmptyOrder
	}

	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	// Check stock for every item before taking any
	for _, item := range o.Items {
		p, ok := r.state.products[item.ProductID]
		if !ok {
			return ErrProductNotFound
		}
		if p.Stock < item.Quantity {
			return ErrInsufficientStock
		}
	}
	for _, item := range o.Items {
		p := r.state.products[item.ProductID]
		p.Stock -= item.Quantity
		p.InStock = p.Stock > 0
		p.UpdatedAt = time.Now()
		r.state.products[item.ProductID] = p
	}

	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	r.state.orders[o.ID] = *o
	return nil
}

func (r *MemoryOrderRepo) GetByID(ctx context.Context, id string) (*catalog.Order, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	o, ok := r.state.orders[id]
	if !ok {
		return nil, catalog.ErrOrderNotFound
	}
	return &o, nil
}

func (r *MemoryOrderRepo) ListByUser(ctx context.Context, userID string) ([]catalog.Order, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	var orders []catalog.Order
	for _, o := range r.state.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	sortOrders(orders)
	return orders, nil
}

func (r *MemoryOrderRepo) ListAll(ctx context.Context) ([]catalog.Order, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	orders := make([]catalog.Order, 0, len(r.state.orders))
	for _, o := range r.state.orders {
		orders = append(orders, o)
	}
	sortOrders(orders)
	return orders, nil
}

func (r *MemoryOrderRepo) UpdateStatus(ctx context.Context, id string, status catalog.Status) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	o, ok := r.state.orders[id]
	if !ok {
		return catalog.ErrOrderNotFound
	}
	if !o.Status.CanTransitionTo(status) {
		return o.Status.TransitionError(status)
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.state.orders[id] = o
	return nil
}

// newest first
func sortOrders(orders []catalog.Order) {
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
}
