package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/domain/budget"
	"fintrack/internal/domain/category"
	"fintrack/internal/shared/middleware"
)

type BudgetHandler struct {
	budgets    *budget.Service
	categories *category.Service
}

func NewBudgetHandler(budgets *budget.Service, categories *category.Service) *BudgetHandler {
	return &BudgetHandler{budgets: budgets, categories: categories}
}

type CreateBudgetRequest struct {
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	TotalIncome decimal.Decimal `json:"totalIncome"`
	SavingsRate decimal.Decimal `json:"savingsRate"`
	Currency    string          `json:"currency"`
}

type CreateCategoryRequest struct {
	Name            string          `json:"name"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
	ColorHex        string          `json:"colorHex"`
}

// HandleBudgets serves the budget collection: list and create.
func (h *BudgetHandler) HandleBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		budgets, err := h.budgets.List(r.Context(), userID)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, budgets)

	case http.MethodPost:
		var req CreateBudgetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		b, err := h.budgets.Create(r.Context(), budget.CreateParams{
			OwnerID:     userID,
			Month:       req.Month,
			Year:        req.Year,
			TotalIncome: req.TotalIncome,
			SavingsRate: req.SavingsRate,
			Currency:    req.Currency,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, b)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleBudgetByID serves a single budget: get, patch, delete.
func (h *BudgetHandler) HandleBudgetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid budget id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		b, err := h.budgets.Get(r.Context(), userID, id)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, b)

	case http.MethodPatch:
		var params budget.UpdateParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		b, err := h.budgets.Update(r.Context(), userID, id, params)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, b)

	case http.MethodDelete:
		if err := h.budgets.Delete(r.Context(), userID, id); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleBudgetCategories serves a budget's categories: list with spent
// amounts, and create.
func (h *BudgetHandler) HandleBudgetCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	budgetID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid budget id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		categories, err := h.categories.ListByBudget(r.Context(), userID, budgetID)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, categories)

	case http.MethodPost:
		var req CreateCategoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		c, err := h.categories.Create(r.Context(), userID, category.CreateParams{
			BudgetID:        budgetID,
			Name:            req.Name,
			AllocatedAmount: req.AllocatedAmount,
			ColorHex:        req.ColorHex,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
