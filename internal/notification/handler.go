package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/frozenfresh/internal/catalog"
	"github.com/example/frozenfresh/internal/events"
)

// Mailer sends customer-facing order emails
type Mailer interface {
	SendOrderConfirmation(to, orderID string, total int, items []catalog.OrderItem) error
	SendOrderStatusUpdate(to, orderID string, status catalog.Status) error
}

// Handler turns order events into customer notifications
type Handler struct {
	mailer Mailer
}

// NewHandler creates a new notification handler
func NewHandler(mailer Mailer) *Handler {
	return &Handler{mailer: mailer}
}

// HandleEvent processes a single event message
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var envelope events.Envelope
	if err := json.Unmarshal(value, &envelope); err != nil {
		log.Printf("[Notifier] unmarshal envelope: %v", err)
		return err
	}

	switch envelope.Type {
	case events.TypeOrderPlaced:
		return h.handleOrderPlaced(value)
	case events.TypeOrderStatusChanged:
		return h.handleStatusChanged(value)
	default:
		// Other event types need no notification
		return nil
	}
}

func (h *Handler) handleOrderPlaced(value []byte) error {
	var e events.OrderPlaced
	if err := json.Unmarshal(value, &e); err != nil {
		log.Printf("[Notifier] unmarshal order placed: %v", err)
		return err
	}

	if e.Email == "" {
		log.Printf("[Notifier] order %s has no customer email, skipping", e.OrderID)
		return nil
	}

	if err := h.mailer.SendOrderConfirmation(e.Email, e.OrderID, e.Total, e.Items); err != nil {
		log.Printf("[Notifier] send confirmation to %s: %v", e.Email, err)
		return err
	}

	log.Printf("[Notifier] order confirmation sent to %s for order %s", e.Email, e.OrderID)
	return nil
}

func (h *Handler) handleStatusChanged(value []byte) error {
	var e events.OrderStatusChanged
	if err := json.Unmarshal(value, &e); err != nil {
		log.Printf("[Notifier] unmarshal status changed: %v", err)
		return err
	}

	if e.Email == "" {
		log.Printf("[Notifier] order %s has no customer email, skipping", e.OrderID)
		return nil
	}

	if err := h.mailer.SendOrderStatusUpdate(e.Email, e.OrderID, e.Status); err != nil {
		log.Printf("[Notifier] send status update to %s: %v", e.Email, err)
		return err
	}

	log.Printf("[Notifier] status update (%s) sent to %s for order %s", e.Status, e.Email, e.OrderID)
	return nil
}
