package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"fintrack/internal/domain/user"
	"fintrack/internal/shared/auth"
)

type AuthHandler struct {
	users    user.Repository
	jwt      *auth.JWT
	validate *validator.Validate
}

func NewAuthHandler(users user.Repository, jwt *auth.JWT) *AuthHandler {
	return &AuthHandler{
		users:    users,
		jwt:      jwt,
		validate: validator.New(),
	}
}

type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	FullName *string `json:"fullName" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	u, err := h.users.Create(r.Context(), req.Email, hash, req.FullName)
	if err != nil {
		respondError(w, err)
		return
	}

	h.issueToken(w, u, http.StatusCreated)
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		// Unknown email answers the same as a wrong password.
		if errors.Is(err, user.ErrNotFound) {
			respondError(w, user.ErrBadCredentials)
			return
		}
		respondError(w, err)
		return
	}

	if err := auth.VerifyPassword(u.PasswordHash, req.Password); err != nil {
		respondError(w, user.ErrBadCredentials)
		return
	}

	h.issueToken(w, u, http.StatusOK)
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) issueToken(w http.ResponseWriter, u *user.User, status int) {
	token, err := h.jwt.Generate(u.ID, u.Email)
	if err != nil {
		log.Printf("Error generating token for user %s: %v", u.ID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	writeJSON(w, status, AuthResponse{Token: token, User: u})
}
