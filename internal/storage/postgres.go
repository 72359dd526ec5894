package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/example/frozenfresh/internal/catalog"
)

// Schema holds the bootstrap SQL for local development and tests.
//
//go:embed schema.sql
var Schema string

// ConnectPostgres establishes a connection to PostgreSQL and applies the
// bootstrap schema.
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}

// Postgres bundles the production repositories over one connection pool.
type Postgres struct {
	Products *PostgresProductRepo
	Users    *PostgresUserRepo
	Orders   *PostgresOrderRepo
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{
		Products: &PostgresProductRepo{db: db},
		Users:    &PostgresUserRepo{db: db},
		Orders:   &PostgresOrderRepo{db: db},
	}
}

// PostgresProductRepo implements ProductRepository.
type PostgresProductRepo struct{ db *sql.DB }

func (r *PostgresProductRepo) Create(ctx context.Context, p *catalog.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.InStock = p.Stock > 0

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (id, name, description, price, category, image_url, stock, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Name, p.Description, p.Price, p.Category, p.ImageURL, p.Stock, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (r *PostgresProductRepo) Update(ctx context.Context, p *catalog.Product) error {
	p.UpdatedAt = time.Now()
	p.InStock = p.Stock > 0

	res, err := r.db.ExecContext(ctx,
		`UPDATE products
		 SET name = $2, description = $3, price = $4, category = $5, image_url = $6, stock = $7, updated_at = $8
		 WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Price, p.Category, p.ImageURL, p.Stock, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *PostgresProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *PostgresProductRepo) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	var p catalog.Product
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, price, category, image_url, stock, created_at, updated_at
		 FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.ImageURL, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	p.InStock = p.Stock > 0
	return &p, nil
}

func (r *PostgresProductRepo) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, price, category, image_url, stock, created_at, updated_at
		 FROM products ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.ImageURL, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.InStock = p.Stock > 0
		products = append(products, p)
	}
	return products, rows.Err()
}

// PostgresUserRepo implements UserRepository.
type PostgresUserRepo struct{ db *sql.DB }

func (r *PostgresUserRepo) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.get(ctx, `SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = $1`, email)
}

func (r *PostgresUserRepo) GetByID(ctx context.Context, id string) (*User, error) {
	return r.get(ctx, `SELECT id, name, email, password_hash, role, created_at FROM users WHERE id = $1`, id)
}

func (r *PostgresUserRepo) get(ctx context.Context, query, arg string) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// PostgresOrderRepo implements OrderRepository.
type PostgresOrderRepo struct{ db *sql.DB }

func (r *PostgresOrderRepo) Create(ctx context.Context, o *catalog.Order) error {
	if len(o.Items) == 0 {
		return catalog.ErrEmptyOrder
	}
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Reserve stock first; the conditional update fails the whole order
	// when any item is short.
	for _, item := range o.Items {
		res, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $2, updated_at = $3
			 WHERE id = $1 AND stock >= $2`,
			item.ProductID, item.Quantity, now,
		)
		if err != nil {
			return fmt.Errorf("reserve stock for %s: %w", item.ProductID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			if err := checkProduct(ctx, tx, item.ProductID); err != nil {
				return err
			}
			return ErrInsufficientStock
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, subtotal, delivery_fee, total, status, payment_method, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, o.UserID, o.Subtotal, o.DeliveryFee, o.Total, o.Status, o.PaymentMethod, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, product_id, name, price, quantity)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.NewString(), o.ID, item.ProductID, item.Name, item.Price, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// checkProduct distinguishes a missing product from an out-of-stock one
// after a conditional stock update touched no rows.
func checkProduct(ctx context.Context, tx *sql.Tx, id string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM products WHERE id = $1`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("check product %s: %w", id, err)
	}
	return nil
}

func (r *PostgresOrderRepo) GetByID(ctx context.Context, id string) (*catalog.Order, error) {
	var o catalog.Order
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, subtotal, delivery_fee, total, status, payment_method, created_at, updated_at
		 FROM orders WHERE id = $1`, id,
	).Scan(&o.ID, &o.UserID, &o.Subtotal, &o.DeliveryFee, &o.Total, &o.Status, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.itemsFor(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *PostgresOrderRepo) ListByUser(ctx context.Context, userID string) ([]catalog.Order, error) {
	return r.list(ctx,
		`SELECT id, user_id, subtotal, delivery_fee, total, status, payment_method, created_at, updated_at
		 FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *PostgresOrderRepo) ListAll(ctx context.Context) ([]catalog.Order, error) {
	return r.list(ctx,
		`SELECT id, user_id, subtotal, delivery_fee, total, status, payment_method, created_at, updated_at
		 FROM orders ORDER BY created_at DESC`)
}

func (r *PostgresOrderRepo) list(ctx context.Context, query string, args ...any) ([]catalog.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []catalog.Order
	for rows.Next() {
		var o catalog.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Subtotal, &o.DeliveryFee, &o.Total, &o.Status, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.itemsFor(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *PostgresOrderRepo) itemsFor(ctx context.Context, orderID string) ([]catalog.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, name, price, quantity FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	var items []catalog.OrderItem
	for rows.Next() {
		var item catalog.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PostgresOrderRepo) UpdateStatus(ctx context.Context, id string, status catalog.Status) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current catalog.Status
	err = tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return catalog.ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get order status: %w", err)
	}

	if !current.CanTransitionTo(status) {
		return current.TransitionError(status)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now(),
	); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return tx.Commit()
}
