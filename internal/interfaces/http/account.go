package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/domain/account"
	"fintrack/internal/domain/transaction"
	"fintrack/internal/shared/middleware"
)

type AccountHandler struct {
	accounts     *account.Service
	transactions *transaction.Service
}

func NewAccountHandler(accounts *account.Service, transactions *transaction.Service) *AccountHandler {
	return &AccountHandler{accounts: accounts, transactions: transactions}
}

type CreateAccountRequest struct {
	Name           string          `json:"name"`
	AccountType    string          `json:"accountType"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	ColorHex       string          `json:"colorHex"`
}

// HandleAccounts serves the account collection: list and create.
func (h *AccountHandler) HandleAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		accounts, err := h.accounts.List(r.Context(), userID)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, accounts)

	case http.MethodPost:
		var req CreateAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		a, err := h.accounts.Create(r.Context(), account.CreateParams{
			OwnerID:        userID,
			Name:           req.Name,
			AccountType:    req.AccountType,
			InitialBalance: req.InitialBalance,
			ColorHex:       req.ColorHex,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, a)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleAccountByID serves a single account: get, patch, delete.
func (h *AccountHandler) HandleAccountByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid account id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		a, err := h.accounts.Get(r.Context(), userID, id)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)

	case http.MethodPatch:
		var params account.UpdateParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		a, err := h.accounts.Update(r.Context(), userID, id, params)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)

	case http.MethodDelete:
		if err := h.accounts.Delete(r.Context(), userID, id); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleAccountTransactions lists the transactions recorded against one
// account, newest first.
func (h *AccountHandler) HandleAccountTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid account id", http.StatusBadRequest)
		return
	}

	filters, err := parseTransactionFilters(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	transactions, total, err := h.transactions.ListByAccount(r.Context(), userID, id, filters)
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
}
