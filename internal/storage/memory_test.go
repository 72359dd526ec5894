package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/frozenfresh/internal/catalog"
)

func seedProduct(t *testing.T, m *Memory, name string, price, stock int) *catalog.Product {
	t.Helper()
	p := &catalog.Product{Name: name, Price: price, Stock: stock, Category: "Veg"}
	require.NoError(t, m.Products.Create(context.Background(), p))
	return p
}

func TestMemoryProducts_CRUD(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	p := seedProduct(t, m, "Frozen Margherita Pizza", 299, 10)
	require.NotEmpty(t, p.ID)
	assert.True(t, p.InStock)

	got, err := m.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Frozen Margherita Pizza", got.Name)

	p.Price = 319
	require.NoError(t, m.Products.Update(ctx, p))
	got, err = m.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 319, got.Price)

	require.NoError(t, m.Products.Delete(ctx, p.ID))
	_, err = m.Products.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryProducts_ZeroStockIsOutOfStock(t *testing.T) {
	m := NewMemory()
	p := seedProduct(t, m, "Vegetable Spring Rolls", 189, 0)
	assert.False(t, p.InStock)
}

func TestMemoryProducts_UpdateUnknown(t *testing.T) {
	m := NewMemory()
	err := m.Products.Update(context.Background(), &catalog.Product{ID: "missing"})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryProducts_ListSortedByName(t *testing.T) {
	m := NewMemory()
	seedProduct(t, m, "Fish Fingers", 329, 5)
	seedProduct(t, m, "Chicken Nuggets", 249, 5)

	products, err := m.Products.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Chicken Nuggets", products[0].Name)
	assert.Equal(t, "Fish Fingers", products[1].Name)
}

func TestMemoryUsers_EmailUniqueness(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	u := &User{Name: "Asha", Email: "asha@example.com", PasswordHash: "hash", Role: "user"}
	require.NoError(t, m.Users.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	dup := &User{Name: "Other", Email: "asha@example.com", PasswordHash: "hash", Role: "user"}
	assert.ErrorIs(t, m.Users.Create(ctx, dup), ErrEmailTaken)

	got, err := m.Users.GetByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = m.Users.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryOrders_CreateReservesStock(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	p := seedProduct(t, m, "Chicken Nuggets", 249, 3)

	order := &catalog.Order{
		UserID:        "u1",
		Items:         []catalog.OrderItem{{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: 2}},
		Subtotal:      498,
		DeliveryFee:   50,
		Total:         548,
		Status:        catalog.StatusPending,
		PaymentMethod: catalog.PaymentCOD,
	}
	require.NoError(t, m.Orders.Create(ctx, order))
	require.NotEmpty(t, order.ID)

	got, err := m.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)
	assert.True(t, got.InStock)
}

func TestMemoryOrders_InsufficientStockTakesNothing(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	p1 := seedProduct(t, m, "Fish Fingers", 329, 5)
	p2 := seedProduct(t, m, "Chicken Nuggets", 249, 1)

	order := &catalog.Order{
		UserID: "u1",
		Items: []catalog.OrderItem{
			{ProductID: p1.ID, Price: p1.Price, Quantity: 2},
			{ProductID: p2.ID, Price: p2.Price, Quantity: 5},
		},
	}
	assert.ErrorIs(t, m.Orders.Create(ctx, order), ErrInsufficientStock)

	// First item's stock must be untouched
	got, err := m.Products.GetByID(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
}

func TestMemoryOrders_EmptyOrderRejected(t *testing.T) {
	m := NewMemory()

	err := m.Orders.Create(context.Background(), &catalog.Order{UserID: "u1"})

	assert.ErrorIs(t, err, catalog.ErrEmptyOrder)
}

func TestMemoryOrders_UnknownProduct(t *testing.T) {
	m := NewMemory()
	order := &catalog.Order{
		UserID: "u1",
		Items:  []catalog.OrderItem{{ProductID: "missing", Quantity: 1}},
	}
	assert.ErrorIs(t, m.Orders.Create(context.Background(), order), ErrProductNotFound)
}

func TestMemoryOrders_ListByUser(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	p := seedProduct(t, m, "Pizza", 299, 100)

	for _, userID := range []string{"u1", "u2", "u1"} {
		order := &catalog.Order{
			UserID: userID,
			Items:  []catalog.OrderItem{{ProductID: p.ID, Price: p.Price, Quantity: 1}},
			Status: catalog.StatusPending,
		}
		require.NoError(t, m.Orders.Create(ctx, order))
	}

	orders, err := m.Orders.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	all, err := m.Orders.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryOrders_StatusTransitions(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	p := seedProduct(t, m, "Pizza", 299, 100)

	order := &catalog.Order{
		UserID: "u1",
		Items:  []catalog.OrderItem{{ProductID: p.ID, Price: p.Price, Quantity: 1}},
		Status: catalog.StatusPending,
	}
	require.NoError(t, m.Orders.Create(ctx, order))

	require.NoError(t, m.Orders.UpdateStatus(ctx, order.ID, catalog.StatusShipped))
	require.NoError(t, m.Orders.UpdateStatus(ctx, order.ID, catalog.StatusDelivered))

	// Delivered is terminal
	err := m.Orders.UpdateStatus(ctx, order.ID, catalog.StatusCancelled)
	assert.ErrorIs(t, err, catalog.ErrOrderDelivered)

	err = m.Orders.UpdateStatus(ctx, "missing", catalog.StatusShipped)
	assert.ErrorIs(t, err, catalog.ErrOrderNotFound)
}
