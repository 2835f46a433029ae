package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"fintrack/internal/domain/account"
	"fintrack/internal/domain/budget"
	"fintrack/internal/domain/category"
	"fintrack/internal/domain/transaction"
	"fintrack/internal/domain/user"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// respondError translates domain errors into HTTP status codes. Anything
// unrecognized is an internal failure: it gets logged with detail and
// answered with an opaque 500 so storage internals never leak to clients.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, transaction.ErrValidation),
		errors.Is(err, account.ErrInvalidInput),
		errors.Is(err, budget.ErrInvalidInput),
		errors.Is(err, category.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)

	case errors.Is(err, user.ErrBadCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)

	case errors.Is(err, transaction.ErrForbidden),
		errors.Is(err, account.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)

	case errors.Is(err, transaction.ErrNotFound),
		errors.Is(err, account.ErrNotFound),
		errors.Is(err, budget.ErrNotFound),
		errors.Is(err, category.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)

	case errors.Is(err, transaction.ErrConflict),
		errors.Is(err, budget.ErrDuplicate),
		errors.Is(err, budget.ErrInUse),
		errors.Is(err, category.ErrInUse),
		errors.Is(err, user.ErrEmailTaken):
		http.Error(w, err.Error(), http.StatusConflict)

	default:
		log.Printf("Internal error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
