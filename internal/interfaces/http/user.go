package http

import (
	"net/http"

	"fintrack/internal/domain/user"
	"fintrack/internal/shared/middleware"
)

type UserHandler struct {
	users user.Repository
}

func NewUserHandler(users user.Repository) *UserHandler {
	return &UserHandler{users: users}
}

// HandleMe returns the authenticated user's profile.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, u)
}
