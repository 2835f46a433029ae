package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/domain/transaction"
	"fintrack/internal/shared/middleware"
)

type TransactionHandler struct {
	transactions *transaction.Service
}

func NewTransactionHandler(transactions *transaction.Service) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

type CreateTransactionRequest struct {
	CategoryID  uuid.UUID       `json:"categoryId"`
	AccountID   *uuid.UUID      `json:"accountId"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind"`
	OccurredAt  time.Time       `json:"occurredAt"`
	Description *string         `json:"description"`
}

// UpdateTransactionRequest distinguishes an absent accountId (keep) from an
// explicit null (clear); every other absent field keeps its current value.
type UpdateTransactionRequest struct {
	CategoryID  *uuid.UUID             `json:"categoryId"`
	AccountID   transaction.OptionalID `json:"accountId"`
	Amount      *decimal.Decimal       `json:"amount"`
	Kind        *string                `json:"kind"`
	OccurredAt  *time.Time             `json:"occurredAt"`
	Description *string                `json:"description"`
}

type ListTransactionsResponse struct {
	Transactions []*transaction.Transaction `json:"transactions"`
	Total        int64                      `json:"total"`
	Limit        int64                      `json:"limit"`
	Offset       int64                      `json:"offset"`
}

// HandleTransactions serves the transaction collection: filtered list and
// create.
func (h *TransactionHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		filters, err := parseTransactionFilters(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		transactions, total, err := h.transactions.List(r.Context(), userID, filters)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ListTransactionsResponse{
			Transactions: transactions,
			Total:        total,
			Limit:        filters.Limit,
			Offset:       filters.Offset,
		})

	case http.MethodPost:
		var req CreateTransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		t, err := h.transactions.Create(r.Context(), userID, transaction.CreateParams{
			CategoryID:  req.CategoryID,
			AccountID:   req.AccountID,
			Amount:      req.Amount,
			Kind:        transaction.Kind(req.Kind),
			OccurredAt:  req.OccurredAt,
			Description: req.Description,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, t)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleTransactionByID serves a single transaction: get, patch, delete.
func (h *TransactionHandler) HandleTransactionByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		t, err := h.transactions.Get(r.Context(), userID, id)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)

	case http.MethodPatch:
		var req UpdateTransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		params := transaction.UpdateParams{
			CategoryID:  req.CategoryID,
			AccountID:   req.AccountID,
			Amount:      req.Amount,
			OccurredAt:  req.OccurredAt,
			Description: req.Description,
		}
		if req.Kind != nil {
			kind := transaction.Kind(*req.Kind)
			params.Kind = &kind
		}

		t, err := h.transactions.Update(r.Context(), userID, id, params)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)

	case http.MethodDelete:
		if err := h.transactions.Delete(r.Context(), userID, id); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleSummary returns aggregate income, expenses, and the per-category
// expense breakdown over the filtered window.
func (h *TransactionHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var filters transaction.SummaryFilters
	var err error
	if filters.StartDate, err = parseTimeParam(r, "startDate"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if filters.EndDate, err = parseTimeParam(r, "endDate"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if filters.AccountID, err = parseUUIDParam(r, "accountId"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.transactions.Summary(r.Context(), userID, filters)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleByCategories lists the transactions of several categories at once.
// Ownership is all-or-nothing: a single foreign category id fails the whole
// request.
func (h *TransactionHandler) HandleByCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	raw := r.URL.Query().Get("ids")
	if raw == "" {
		http.Error(w, "ids is required", http.StatusBadRequest)
		return
	}

	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid category id %q", part), http.StatusBadRequest)
			return
		}
		ids = append(ids, id)
	}

	transactions, err := h.transactions.ListByCategories(r.Context(), userID, ids)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

// HandleCategoryTransactions lists one category's transactions.
func (h *TransactionHandler) HandleCategoryTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	categoryID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid category id", http.StatusBadRequest)
		return
	}

	transactions, err := h.transactions.ListByCategory(r.Context(), userID, categoryID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

func parseTransactionFilters(r *http.Request) (transaction.Filters, error) {
	filters := transaction.Filters{
		Limit: transaction.DefaultListLimit,
	}

	var err error
	if filters.StartDate, err = parseTimeParam(r, "startDate"); err != nil {
		return filters, err
	}
	if filters.EndDate, err = parseTimeParam(r, "endDate"); err != nil {
		return filters, err
	}
	if filters.CategoryID, err = parseUUIDParam(r, "categoryId"); err != nil {
		return filters, err
	}
	if filters.AccountID, err = parseUUIDParam(r, "accountId"); err != nil {
		return filters, err
	}

	if kindStr := r.URL.Query().Get("kind"); kindStr != "" {
		kind := transaction.Kind(kindStr)
		filters.Kind = &kind
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || limit <= 0 {
			return filters, fmt.Errorf("invalid limit %q", limitStr)
		}
		filters.Limit = min(limit, transaction.MaxListLimit)
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		offset, err := strconv.ParseInt(offsetStr, 10, 64)
		if err != nil || offset < 0 {
			return filters, fmt.Errorf("invalid offset %q", offsetStr)
		}
		filters.Offset = offset
	}

	return filters, nil
}

func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s (expected RFC 3339): %q", name, value)
	}
	return &t, nil
}

func parseUUIDParam(r *http.Request, name string) (*uuid.UUID, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", name, value)
	}
	return &id, nil
}
