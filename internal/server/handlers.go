package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/example/frozenfresh/internal/catalog"
	"github.com/example/frozenfresh/internal/pricing"
	"github.com/example/frozenfresh/internal/server/middleware"
	"github.com/example/frozenfresh/internal/storage"
)

// OrderPublisher publishes order lifecycle events
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *catalog.Order, email string) error
	PublishOrderStatusChanged(ctx context.Context, order *catalog.Order, email string) error
}

type Handlers struct {
	products  storage.ProductRepository
	users     storage.UserRepository
	orders    storage.OrderRepository
	publisher OrderPublisher
	pricing   pricing.Config
}

func NewHandlers(products storage.ProductRepository, users storage.UserRepository, orders storage.OrderRepository, publisher OrderPublisher, cfg pricing.Config) *Handlers {
	return &Handlers{
		products:  products,
		users:     users,
		orders:    orders,
		publisher: publisher,
		pricing:   cfg,
	}
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondJSONError(w, "Failed to load products", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	product, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			respondJSONError(w, "Product not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, "Failed to load product", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if product.Name == "" || product.Price <= 0 {
		respondJSONError(w, "Product name and a positive price are required", http.StatusBadRequest)
		return
	}
	if product.Stock < 0 {
		respondJSONError(w, "Stock cannot be negative", http.StatusBadRequest)
		return
	}

	if err := h.products.Create(r.Context(), &product); err != nil {
		respondJSONError(w, "Failed to create product", http.StatusInternalServerError)
		return
	}

	log.Printf("[Products] created %s (%s)", product.Name, product.ID)
	respondJSON(w, http.StatusCreated, product)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")

	var product catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	product.ID = id

	if product.Name == "" || product.Price <= 0 {
		respondJSONError(w, "Product name and a positive price are required", http.StatusBadRequest)
		return
	}

	if err := h.products.Update(r.Context(), &product); err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			respondJSONError(w, "Product not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, "Failed to update product", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")

	if err := h.products.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			respondJSONError(w, "Product not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, "Failed to delete product", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Product removed"})
}

// Order Handlers

type orderRequest struct {
	Items         []catalog.OrderItem `json:"items"`
	Subtotal      int                 `json:"subtotal"`
	DeliveryFee   int                 `json:"delivery_fee"`
	Total         int                 `json:"total"`
	PaymentMethod string              `json:"payment_method"`
}

func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Not authorized, no token", http.StatusUnauthorized)
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Items) == 0 {
		respondJSONError(w, "No order items", http.StatusBadRequest)
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = catalog.PaymentCOD
	}

	// Prices and totals come from the catalog, never from the request;
	// whatever amounts the client sent are ignored.
	items := make([]catalog.OrderItem, 0, len(req.Items))
	subtotal := 0
	for _, item := range req.Items {
		if item.Quantity < 1 {
			respondJSONError(w, "Item quantity must be at least 1", http.StatusBadRequest)
			return
		}
		product, err := h.products.GetByID(r.Context(), item.ProductID)
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				respondJSONError(w, "Product not found", http.StatusNotFound)
				return
			}
			respondJSONError(w, "Failed to load product", http.StatusInternalServerError)
			return
		}
		items = append(items, catalog.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
		})
		subtotal += product.Price * item.Quantity
	}

	deliveryFee := h.pricing.DeliveryFee(subtotal)
	total := subtotal + deliveryFee

	order := &catalog.Order{
		UserID:        claims.UserID,
		Items:         items,
		Subtotal:      subtotal,
		DeliveryFee:   deliveryFee,
		Total:         total,
		Status:        catalog.StatusPending,
		PaymentMethod: req.PaymentMethod,
	}

	if err := h.orders.Create(r.Context(), order); err != nil {
		switch {
		case errors.Is(err, catalog.ErrEmptyOrder):
			respondJSONError(w, "No order items", http.StatusBadRequest)
		case errors.Is(err, storage.ErrInsufficientStock):
			respondJSONError(w, "Insufficient stock", http.StatusBadRequest)
		case errors.Is(err, storage.ErrProductNotFound):
			respondJSONError(w, "Product not found", http.StatusNotFound)
		default:
			log.Printf("[Orders] create failed: %v", err)
			respondJSONError(w, "Failed to place order", http.StatusInternalServerError)
		}
		return
	}

	log.Printf("[Orders] placed %s for user %s, total %d", order.ID, order.UserID, order.Total)

	if h.publisher != nil {
		if err := h.publisher.PublishOrderPlaced(r.Context(), order, claims.Email); err != nil {
			log.Printf("[Orders] publish order placed: %v", err)
		}
	}

	respondJSON(w, http.StatusCreated, order)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Not authorized, no token", http.StatusUnauthorized)
		return
	}

	id := extractPathParam(r.URL.Path, "/orders/")
	order, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrOrderNotFound) {
			respondJSONError(w, "Order not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, "Failed to load order", http.StatusInternalServerError)
		return
	}

	// Customers can only see their own orders
	if order.UserID != claims.UserID && claims.Role != "admin" {
		respondJSONError(w, "Not authorized", http.StatusForbidden)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (h *Handlers) MyOrders(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		respondJSONError(w, "Failed to load orders", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// Admin Order Handlers

func (h *Handlers) AllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		respondJSONError(w, "Failed to load orders", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/admin/orders/")
	id := strings.TrimSuffix(path, "/status")

	var req struct {
		Status catalog.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !req.Status.Valid() {
		respondJSONError(w, "Invalid order status", http.StatusBadRequest)
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, catalog.ErrOrderNotFound) {
			respondJSONError(w, "Order not found", http.StatusNotFound)
			return
		}
		// Remaining errors are invalid transitions; report them verbatim.
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	order, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		respondJSONError(w, "Order not found", http.StatusNotFound)
		return
	}

	if h.publisher != nil {
		if err := h.publisher.PublishOrderStatusChanged(r.Context(), order, h.customerEmail(r.Context(), order.UserID)); err != nil {
			log.Printf("[Orders] publish status changed: %v", err)
		}
	}

	respondJSON(w, http.StatusOK, order)
}

// customerEmail resolves the order owner's email for notifications.
// Lookup failures degrade to an empty address, which the notifier skips.
func (h *Handlers) customerEmail(ctx context.Context, userID string) string {
	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		log.Printf("[Orders] lookup user %s: %v", userID, err)
		return ""
	}
	return user.Email
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}
