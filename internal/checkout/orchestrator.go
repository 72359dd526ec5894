// Package checkout coordinates the transition from a priced cart to a
// submitted order: it snapshots the cart, submits it to the order API and
// applies the success or failure effect to local state.
package checkout

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/example/frozenfresh/internal/cart"
	"github.com/example/frozenfresh/internal/catalog"
	"github.com/example/frozenfresh/internal/client"
)

// State of the current checkout attempt. Completed and Failed both return
// to Idle when the next attempt starts.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Precondition errors. These are raised before any network call and are
// distinct from a service failure.
var (
	ErrEmptyCart   = errors.New("cannot place an order with an empty cart")
	ErrNotSignedIn = errors.New("sign in to place an order")
	ErrInFlight    = errors.New("an order submission is already in progress")
)

const fallbackMessage = "Could not place order. Please try again."

// Error is a checkout failure from the order service. Message is safe to
// show to the user: the service's own message when it supplied one, a
// generic fallback otherwise.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// OrderPlacer is the slice of the REST client the orchestrator needs.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, req client.OrderRequest) (*catalog.Order, error)
}

// Session gates checkout on an authenticated identity.
type Session interface {
	Active() bool
}

// Orchestrator runs one checkout attempt at a time over a cart container.
type Orchestrator struct {
	mu      sync.Mutex
	cart    *cart.Container
	session Session
	api     OrderPlacer
	state   State
}

func New(cartContainer *cart.Container, session Session, api OrderPlacer) *Orchestrator {
	return &Orchestrator{
		cart:    cartContainer,
		session: session,
		api:     api,
		state:   StateIdle,
	}
}

// State returns the state of the current attempt.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// PlaceOrder submits the current cart as a cash-on-delivery order.
//
// The cart is frozen for the duration of the submission, so no mutation
// can make local state drift from the payload in flight. On success the
// cart is cleared, and only then; on failure it is left exactly as it
// was, and the caller may retry explicitly.
func (o *Orchestrator) PlaceOrder(ctx context.Context) (*catalog.Order, error) {
	o.mu.Lock()
	if o.state == StateSubmitting {
		o.mu.Unlock()
		return nil, ErrInFlight
	}
	if o.session != nil && !o.session.Active() {
		o.mu.Unlock()
		return nil, ErrNotSignedIn
	}

	o.cart.Freeze()
	items := o.cart.Items()
	if len(items) == 0 {
		o.cart.Thaw()
		o.mu.Unlock()
		return nil, ErrEmptyCart
	}

	req := client.OrderRequest{
		Items:         orderItems(items),
		Subtotal:      o.cart.Subtotal(),
		DeliveryFee:   o.cart.DeliveryFee(),
		Total:         o.cart.Total(),
		PaymentMethod: catalog.PaymentCOD,
	}
	o.state = StateSubmitting
	o.mu.Unlock()

	order, err := o.api.CreateOrder(ctx, req)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.cart.Thaw()

	if err != nil {
		o.state = StateFailed
		return nil, checkoutError(err)
	}

	// Clearing happens only after the service confirmed creation; a
	// failed submission must never lose the cart, and a confirmed one
	// must never leave it behind for resubmission.
	o.state = StateCompleted
	if err := o.cart.ClearCart(); err != nil {
		log.Printf("[Checkout] Failed to clear cart after order %s: %v", order.ID, err)
	}
	return order, nil
}

func orderItems(items []cart.LineItem) []catalog.OrderItem {
	out := make([]catalog.OrderItem, len(items))
	for i, item := range items {
		out[i] = catalog.OrderItem{
			ProductID: item.ID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}
	return out
}

func checkoutError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return &Error{Message: apiErr.Message, Err: err}
	}
	return &Error{Message: fallbackMessage, Err: err}
}
