package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mecdoors/siteledger/internal/auth"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

// PublicRoutes are mounted outside the auth middleware.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/login", h.login)
}

// Routes are mounted behind the auth middleware.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/logout", h.logout)
	r.Get("/me", h.me)
	r.Post("/register", h.register)
	r.Get("/users", h.listUsers)
	r.Put("/users/{id}", h.updateUser)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.svc.Login(r.Context(), req.Username, req.Password, clientIP(r), r.UserAgent())
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      toUserResponse(result.User),
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), bearerToken(r)); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	u := CurrentUser(r.Context())
	if u == nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

type registerRequest struct {
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Password   string    `json:"password"`
	FullName   string    `json:"fullName"`
	Role       auth.Role `json:"role"`
	Department string    `json:"department"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u, err := h.svc.Register(r.Context(), CurrentUser(r.Context()), auth.RegisterParams{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		FullName:   req.FullName,
		Role:       req.Role,
		Department: req.Department,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrForbidden):
			http.Error(w, "admin access required", http.StatusForbidden)
		case errors.Is(err, auth.ErrUserExists):
			http.Error(w, "username or email already exists", http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}

		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context(), CurrentUser(r.Context()))
	if err != nil {
		if errors.Is(err, auth.ErrForbidden) {
			http.Error(w, "admin access required", http.StatusForbidden)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, toUserResponseList(users))
}

type updateUserRequest struct {
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Role       auth.Role `json:"role"`
	Department string    `json:"department"`
	IsActive   bool      `json:"isActive"`
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u, err := h.svc.UpdateUser(r.Context(), CurrentUser(r.Context()), id, auth.UpdateUserParams{
		Username:   req.Username,
		Email:      req.Email,
		FullName:   req.FullName,
		Role:       req.Role,
		Department: req.Department,
		IsActive:   req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrForbidden):
			http.Error(w, "admin access required", http.StatusForbidden)
		case errors.Is(err, auth.ErrNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
		case errors.Is(err, auth.ErrUserExists):
			http.Error(w, "username or email already exists", http.StatusConflict)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}

	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
