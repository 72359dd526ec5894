// Package storage holds the backend's repositories. Handlers depend on
// the interfaces; Postgres backs production and the in-memory
// implementation backs tests and dev mode.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/example/frozenfresh/internal/catalog"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// User is a stored account. PasswordHash never leaves this package's
// callers in API responses.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type ProductRepository interface {
	Create(ctx context.Context, p *catalog.Product) error
	Update(ctx context.Context, p *catalog.Product) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*catalog.Product, error)
	List(ctx context.Context) ([]catalog.Product, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

type OrderRepository interface {
	// Create stores the order and reserves stock for every line item in
	// the same transaction; no stock is taken when any item is short.
	Create(ctx context.Context, o *catalog.Order) error
	GetByID(ctx context.Context, id string) (*catalog.Order, error)
	ListByUser(ctx context.Context, userID string) ([]catalog.Order, error)
	ListAll(ctx context.Context) ([]catalog.Order, error)
	// UpdateStatus applies an order status transition, enforcing the
	// catalog status machine.
	UpdateStatus(ctx context.Context, id string, status catalog.Status) error
}
