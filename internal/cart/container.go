// Package cart holds the cart and wishlist state container. It is the only
// code path that mutates the two collections; views, the CLI and the
// checkout orchestrator go through its operations and accessors.
package cart

import (
	"errors"
	"log"
	"sync"

	"github.com/example/frozenfresh/internal/catalog"
	"github.com/example/frozenfresh/internal/pricing"
)

// Storage keys. Both collections are written as whole values on every
// mutation so a reload observes the latest state.
const (
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
)

var ErrCartLocked = errors.New("cart is locked while a checkout is in progress")

// Store is the device-local persistence the container writes through to.
// A nil Store keeps the container purely in-memory.
type Store interface {
	Get(key string, v any) (bool, error)
	Put(key string, v any) error
}

// LineItem is a product snapshot plus a quantity. At most one line item
// per product ID exists in the cart, and Quantity is always >= 1.
type LineItem struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

// Container owns the cart and wishlist collections for one session.
type Container struct {
	mu      sync.Mutex
	store   Store
	pricing pricing.Config

	items    []LineItem        // insertion order, stable for display
	wishlist []catalog.Product // set semantics, keyed by product ID
	frozen   bool
}

func NewContainer(store Store, cfg pricing.Config) *Container {
	return &Container{store: store, pricing: cfg}
}

// Load rehydrates both collections from the store. Missing or unparseable
// values are treated as empty collections, never as a fatal error.
func (c *Container) Load() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store == nil {
		return
	}

	var items []LineItem
	if _, err := c.store.Get(KeyCart, &items); err != nil {
		log.Printf("[Cart] Discarding unreadable stored cart: %v", err)
		items = nil
	}
	c.items = sanitize(items)

	var wishlist []catalog.Product
	if _, err := c.store.Get(KeyWishlist, &wishlist); err != nil {
		log.Printf("[Cart] Discarding unreadable stored wishlist: %v", err)
		wishlist = nil
	}
	c.wishlist = dedupe(wishlist)
}

// sanitize re-establishes the cart invariants over persisted data: no
// duplicate product IDs (quantities merge) and no quantity below 1.
func sanitize(items []LineItem) []LineItem {
	var out []LineItem
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		out = addLine(out, item.Product, item.Quantity)
	}
	return out
}

func dedupe(products []catalog.Product) []catalog.Product {
	var out []catalog.Product
	seen := make(map[string]bool)
	for _, p := range products {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

// addLine is the pure add transition: merge quantity into an existing line
// item or append a new one.
func addLine(items []LineItem, p catalog.Product, quantity int) []LineItem {
	for i := range items {
		if items[i].ID == p.ID {
			items[i].Quantity += quantity
			return items
		}
	}
	return append(items, LineItem{Product: p, Quantity: quantity})
}

// removeLine is the pure remove transition; unknown IDs are a no-op.
func removeLine(items []LineItem, productID string) []LineItem {
	out := items[:0]
	for _, item := range items {
		if item.ID != productID {
			out = append(out, item)
		}
	}
	return out
}

// AddToCart inserts a line item for the product or increments the existing
// one. Non-positive quantities are clamped to 1.
func (c *Container) AddToCart(p catalog.Product, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return ErrCartLocked
	}
	if quantity < 1 {
		quantity = 1
	}
	c.items = addLine(c.items, p, quantity)
	c.persistCart()
	return nil
}

// UpdateQuantity sets the line item's quantity to exactly quantity. A value
// of zero or below removes the item; an unknown product ID is a no-op.
func (c *Container) UpdateQuantity(productID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return ErrCartLocked
	}
	if quantity <= 0 {
		c.items = removeLine(c.items, productID)
		c.persistCart()
		return nil
	}
	for i := range c.items {
		if c.items[i].ID == productID {
			c.items[i].Quantity = quantity
			c.persistCart()
			return nil
		}
	}
	return nil
}

// RemoveFromCart removes the line item with that product ID if present.
func (c *Container) RemoveFromCart(productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return ErrCartLocked
	}
	c.items = removeLine(c.items, productID)
	c.persistCart()
	return nil
}

// ClearCart empties the cart unconditionally. Called after a successful
// checkout and on logout.
func (c *Container) ClearCart() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return ErrCartLocked
	}
	c.items = nil
	c.persistCart()
	return nil
}

// AddToWishlist inserts the product if not already present.
func (c *Container) AddToWishlist(p catalog.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.wishlist {
		if existing.ID == p.ID {
			return nil
		}
	}
	c.wishlist = append(c.wishlist, p)
	c.persistWishlist()
	return nil
}

// RemoveFromWishlist removes the product if present.
func (c *Container) RemoveFromWishlist(productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.wishlist[:0]
	for _, p := range c.wishlist {
		if p.ID != productID {
			out = append(out, p)
		}
	}
	c.wishlist = out
	c.persistWishlist()
	return nil
}

// Reset drops both collections without touching the store. Used at logout
// after the store itself has been wiped.
func (c *Container) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.wishlist = nil
	c.frozen = false
}

// Freeze rejects cart mutations until Thaw is called. The checkout
// orchestrator holds the cart frozen while an order submission is in
// flight so local state cannot drift from the payload already sent.
func (c *Container) Freeze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
}

func (c *Container) Thaw() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = false
}

// Items returns a copy of the cart line items in insertion order.
func (c *Container) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// WishlistItems returns a copy of the wishlist.
func (c *Container) WishlistItems() []catalog.Product {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]catalog.Product, len(c.wishlist))
	copy(out, c.wishlist)
	return out
}

func (c *Container) InWishlist(productID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.wishlist {
		if p.ID == productID {
			return true
		}
	}
	return false
}

// Subtotal is the sum of price times quantity over all line items.
func (c *Container) Subtotal() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return subtotal(c.items)
}

func subtotal(items []LineItem) int {
	var sum int
	for _, item := range items {
		sum += item.Price * item.Quantity
	}
	return sum
}

func (c *Container) DeliveryFee() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pricing.DeliveryFee(subtotal(c.items))
}

func (c *Container) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pricing.Total(subtotal(c.items))
}

// ItemCount is the sum of quantities, used for the cart badge.
func (c *Container) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var count int
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Len is the number of distinct line items.
func (c *Container) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// persistCart and persistWishlist write through synchronously after each
// mutation. Write failures are logged and never fatal; the in-memory state
// remains authoritative for the session. Callers hold c.mu.
func (c *Container) persistCart() {
	if c.store == nil {
		return
	}
	if err := c.store.Put(KeyCart, c.items); err != nil {
		log.Printf("[Cart] Failed to persist cart: %v", err)
	}
}

func (c *Container) persistWishlist() {
	if c.store == nil {
		return
	}
	if err := c.store.Put(KeyWishlist, c.wishlist); err != nil {
		log.Printf("[Cart] Failed to persist wishlist: %v", err)
	}
}
