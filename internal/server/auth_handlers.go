package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/example/frozenfresh/internal/auth"
	"github.com/example/frozenfresh/internal/storage"
)

// AuthHandlers handles registration and login
type AuthHandlers struct {
	users storage.UserRepository
	jwt   *auth.JWTService
}

func NewAuthHandlers(users storage.UserRepository, jwt *auth.JWTService) *AuthHandlers {
	return &AuthHandlers{users: users, jwt: jwt}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// Register creates a new customer account and returns a signed token
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		respondJSONError(w, "Name and email are required", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			respondJSONError(w, "Password must be at least 8 characters", http.StatusBadRequest)
			return
		}
		respondJSONError(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	user := &storage.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         "user",
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			respondJSONError(w, "Email already registered", http.StatusConflict)
			return
		}
		respondJSONError(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	log.Printf("[Auth] registered %s", user.Email)
	h.respondWithToken(w, http.StatusCreated, user)
}

// Login authenticates a customer
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, "")
}

// AdminLogin authenticates a user and additionally requires the admin role
func (h *AuthHandlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, "admin")
}

func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request, requiredRole string) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			respondJSONError(w, "Invalid email or password", http.StatusUnauthorized)
			return
		}
		respondJSONError(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		respondJSONError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	if requiredRole != "" && user.Role != requiredRole {
		respondJSONError(w, "Not authorized as admin", http.StatusForbidden)
		return
	}

	h.respondWithToken(w, http.StatusOK, user)
}

func (h *AuthHandlers) respondWithToken(w http.ResponseWriter, status int, user *storage.User) {
	token, _, err := h.jwt.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		respondJSONError(w, "Failed to sign token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, status, authResponse{
		Token: token,
		User: userResponse{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		},
	})
}
