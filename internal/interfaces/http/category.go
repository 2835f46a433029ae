package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"fintrack/internal/domain/category"
	"fintrack/internal/shared/middleware"
)

type CategoryHandler struct {
	categories *category.Service
}

func NewCategoryHandler(categories *category.Service) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// HandleCategoryByID serves a single category: get, patch, delete.
func (h *CategoryHandler) HandleCategoryByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid category id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		c, err := h.categories.Get(r.Context(), userID, id)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)

	case http.MethodPatch:
		var params category.UpdateParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		c, err := h.categories.Update(r.Context(), userID, id, params)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)

	case http.MethodDelete:
		if err := h.categories.Delete(r.Context(), userID, id); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
