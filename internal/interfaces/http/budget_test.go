package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"fintrack/internal/domain/budget"
	"fintrack/internal/domain/category"
)

type mockBudgetRepo struct {
	CreateFunc      func(ctx context.Context, params budget.CreateParams) (*budget.Budget, error)
	GetByIDFunc     func(ctx context.Context, ownerID, id uuid.UUID) (*budget.Budget, error)
	ListByOwnerFunc func(ctx context.Context, ownerID uuid.UUID) ([]*budget.Budget, error)
	UpdateFunc      func(ctx context.Context, ownerID, id uuid.UUID, params budget.UpdateParams) (*budget.Budget, error)
	DeleteFunc      func(ctx context.Context, ownerID, id uuid.UUID) error
}

func (m *mockBudgetRepo) Create(ctx context.Context, params budget.CreateParams) (*budget.Budget, error) {
	return m.CreateFunc(ctx, params)
}

func (m *mockBudgetRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*budget.Budget, error) {
	return m.GetByIDFunc(ctx, ownerID, id)
}

func (m *mockBudgetRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*budget.Budget, error) {
	return m.ListByOwnerFunc(ctx, ownerID)
}

func (m *mockBudgetRepo) Update(ctx context.Context, ownerID, id uuid.UUID, params budget.UpdateParams) (*budget.Budget, error) {
	return m.UpdateFunc(ctx, ownerID, id, params)
}

func (m *mockBudgetRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.DeleteFunc(ctx, ownerID, id)
}

type mockCategoryRepo struct {
	CreateFunc       func(ctx context.Context, ownerID uuid.UUID, params category.CreateParams) (*category.Category, error)
	GetByIDFunc      func(ctx context.Context, ownerID, id uuid.UUID) (*category.Category, error)
	ListByBudgetFunc func(ctx context.Context, ownerID, budgetID uuid.UUID) ([]*category.WithSpent, error)
	UpdateFunc       func(ctx context.Context, ownerID, id uuid.UUID, params category.UpdateParams) (*category.Category, error)
	DeleteFunc       func(ctx context.Context, ownerID, id uuid.UUID) error
}

func (m *mockCategoryRepo) Create(ctx context.Context, ownerID uuid.UUID, params category.CreateParams) (*category.Category, error) {
	return m.CreateFunc(ctx, ownerID, params)
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*category.Category, error) {
	return m.GetByIDFunc(ctx, ownerID, id)
}

func (m *mockCategoryRepo) ListByBudget(ctx context.Context, ownerID, budgetID uuid.UUID) ([]*category.WithSpent, error) {
	return m.ListByBudgetFunc(ctx, ownerID, budgetID)
}

func (m *mockCategoryRepo) Update(ctx context.Context, ownerID, id uuid.UUID, params category.UpdateParams) (*category.Category, error) {
	return m.UpdateFunc(ctx, ownerID, id, params)
}

func (m *mockCategoryRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.DeleteFunc(ctx, ownerID, id)
}

// A budget whose categories still carry transactions cannot be deleted:
// removing those rows is the ledger engine's job, since it must reverse
// their balance effects first.
func TestHandleBudgetByID_DeleteInUse(t *testing.T) {
	handler := NewBudgetHandler(budget.NewService(&mockBudgetRepo{
		DeleteFunc: func(ctx context.Context, ownerID, id uuid.UUID) error {
			return budget.ErrInUse
		},
	}), nil)

	id := uuid.NewString()
	req := authedRequest(http.MethodDelete, "/api/budgets/"+id, "")
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()

	handler.HandleBudgetByID(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestHandleBudgetByID_Delete(t *testing.T) {
	deleted := false
	handler := NewBudgetHandler(budget.NewService(&mockBudgetRepo{
		DeleteFunc: func(ctx context.Context, ownerID, id uuid.UUID) error {
			deleted = true
			return nil
		},
	}), nil)

	id := uuid.NewString()
	req := authedRequest(http.MethodDelete, "/api/budgets/"+id, "")
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()

	handler.HandleBudgetByID(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if !deleted {
		t.Error("repository delete was not invoked")
	}
}

func TestHandleCategoryByID_DeleteInUse(t *testing.T) {
	handler := NewCategoryHandler(category.NewService(&mockCategoryRepo{
		DeleteFunc: func(ctx context.Context, ownerID, id uuid.UUID) error {
			return category.ErrInUse
		},
	}))

	id := uuid.NewString()
	req := authedRequest(http.MethodDelete, "/api/categories/"+id, "")
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()

	handler.HandleCategoryByID(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}
