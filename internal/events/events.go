package events

import (
	"time"

	"github.com/example/frozenfresh/internal/catalog"
)

// Event type discriminator carried in every message
const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
)

type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
}

// OrderPlaced is published after an order has been persisted and stock reserved.
type OrderPlaced struct {
	Envelope
	OrderID       string              `json:"order_id"`
	UserID        string              `json:"user_id"`
	Email         string              `json:"email"`
	Items         []catalog.OrderItem `json:"items"`
	Subtotal      int                 `json:"subtotal"`
	DeliveryFee   int                 `json:"delivery_fee"`
	Total         int                 `json:"total"`
	PaymentMethod string              `json:"payment_method"`
}

// OrderStatusChanged is published when an admin moves an order through its lifecycle.
type OrderStatusChanged struct {
	Envelope
	OrderID string         `json:"order_id"`
	UserID  string         `json:"user_id"`
	Email   string         `json:"email"`
	Status  catalog.Status `json:"status"`
}
