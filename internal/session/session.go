// Package session holds the authenticated identity for the storefront
// client: bearer token plus user profile, established by login or signup
// and torn down by logout. The cart and wishlist are scoped to the
// identity, so logout clears them too.
package session

import (
	"context"
	"log"
	"sync"

	"github.com/example/frozenfresh/internal/cart"
	"github.com/example/frozenfresh/internal/client"
)

// Storage keys for the persisted session.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Store is the device-local persistence for the session. Reset wipes
// every key, including the cart and wishlist collections.
type Store interface {
	Get(key string, v any) (bool, error)
	Put(key string, v any) error
	Reset() error
}

// Authenticator is the slice of the REST client the session needs.
type Authenticator interface {
	Login(ctx context.Context, email, password, role string) (*client.AuthResult, error)
	Register(ctx context.Context, name, email, password string) (*client.AuthResult, error)
}

// Manager owns the current session state.
type Manager struct {
	mu    sync.Mutex
	api   Authenticator
	store Store
	cart  *cart.Container

	token string
	user  *client.User
}

func NewManager(api Authenticator, store Store, cartContainer *cart.Container) *Manager {
	return &Manager{api: api, store: store, cart: cartContainer}
}

// Restore rehydrates a previously persisted session. Missing or
// unreadable values leave the manager signed out.
func (m *Manager) Restore() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store == nil {
		return
	}

	var token string
	if ok, err := m.store.Get(KeyToken, &token); err != nil || !ok {
		if err != nil {
			log.Printf("[Session] Discarding unreadable stored token: %v", err)
		}
		return
	}

	var user client.User
	if ok, err := m.store.Get(KeyUser, &user); err != nil || !ok {
		if err != nil {
			log.Printf("[Session] Discarding unreadable stored profile: %v", err)
		}
		return
	}

	m.token = token
	m.user = &user
}

// Login authenticates and establishes the session.
func (m *Manager) Login(ctx context.Context, email, password, role string) (*client.User, error) {
	result, err := m.api.Login(ctx, email, password, role)
	if err != nil {
		return nil, err
	}
	m.establish(result)
	return &result.User, nil
}

// Register creates an account and establishes the session.
func (m *Manager) Register(ctx context.Context, name, email, password string) (*client.User, error) {
	result, err := m.api.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	m.establish(result)
	return &result.User, nil
}

func (m *Manager) establish(result *client.AuthResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = result.Token
	user := result.User
	m.user = &user

	if m.store == nil {
		return
	}
	if err := m.store.Put(KeyToken, result.Token); err != nil {
		log.Printf("[Session] Failed to persist token: %v", err)
	}
	if err := m.store.Put(KeyUser, result.User); err != nil {
		log.Printf("[Session] Failed to persist profile: %v", err)
	}
}

// Logout tears the session down: every persisted key is wiped together
// and the cart container is reset.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	store := m.store
	m.mu.Unlock()

	if store != nil {
		if err := store.Reset(); err != nil {
			log.Printf("[Session] Failed to clear local store: %v", err)
		}
	}
	if m.cart != nil {
		m.cart.Reset()
	}
}

// Token returns the current bearer token, or "" when signed out. Matches
// client.TokenFunc.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Current returns the signed-in user, if any.
func (m *Manager) Current() (client.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return client.User{}, false
	}
	return *m.user, true
}

// Active reports whether a session is established.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != "" && m.user != nil
}

func (m *Manager) IsAdmin() bool {
	user, ok := m.Current()
	return ok && user.Role == "admin"
}
