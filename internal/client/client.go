// Package client is the storefront's REST client for the FrozenFresh
// backend: authentication, catalog reads, order placement and history,
// plus the admin product/order management calls.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/example/frozenfresh/internal/catalog"
)

// User is the authenticated identity as returned by the backend.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthResult is the outcome of a successful login or registration.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// OrderRequest is the order-submission payload: a snapshot of the cart
// line items with the totals the client computed.
type OrderRequest struct {
	Items         []catalog.OrderItem `json:"items"`
	Subtotal      int                 `json:"subtotal"`
	DeliveryFee   int                 `json:"delivery_fee"`
	Total         int                 `json:"total"`
	PaymentMethod string              `json:"payment_method"`
}

// APIError is a structured error response from the backend. Message is
// surfaced verbatim to the user.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// TokenFunc supplies the current bearer token, or "" when signed out.
type TokenFunc func() string

type Client struct {
	baseURL string
	http    *http.Client
	token   TokenFunc
}

func New(baseURL string, token TokenFunc) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		token:   token,
	}
}

// do issues a JSON request and decodes the response into out (when out is
// non-nil). Non-2xx responses become *APIError carrying the server's
// error message when one was supplied.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Login authenticates against the user or admin endpoint depending on the
// role hint.
func (c *Client) Login(ctx context.Context, email, password, role string) (*AuthResult, error) {
	endpoint := "/auth/login"
	if role == "admin" {
		endpoint = "/admin/login"
	}

	req := map[string]string{"email": email, "password": password}
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, endpoint, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates a new user account.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	req := map[string]string{"name": name, "email": email, "password": password}
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	var p catalog.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+id, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateOrder submits an order and returns the created record.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*catalog.Order, error) {
	var order catalog.Order
	if err := c.do(ctx, http.MethodPost, "/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// MyOrders returns the authenticated user's order history.
func (c *Client) MyOrders(ctx context.Context) ([]catalog.Order, error) {
	var orders []catalog.Order
	if err := c.do(ctx, http.MethodGet, "/orders/myorders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Admin calls

func (c *Client) CreateProduct(ctx context.Context, p catalog.Product) (*catalog.Product, error) {
	var created catalog.Product
	if err := c.do(ctx, http.MethodPost, "/products", p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateProduct(ctx context.Context, p catalog.Product) error {
	return c.do(ctx, http.MethodPut, "/products/"+p.ID, p, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+id, nil, nil)
}

func (c *Client) AllOrders(ctx context.Context) ([]catalog.Order, error) {
	var orders []catalog.Order
	if err := c.do(ctx, http.MethodGet, "/admin/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status catalog.Status) error {
	req := map[string]string{"status": string(status)}
	return c.do(ctx, http.MethodPut, "/admin/orders/"+id+"/status", req, nil)
}
