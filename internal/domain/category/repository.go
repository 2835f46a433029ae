package category

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for category data access. All methods
// are scoped to the acting user via the category's budget.
type Repository interface {
	Create(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*Category, error)
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*Category, error)
	// ListByBudget returns the budget's categories with their derived
	// spent amounts.
	ListByBudget(ctx context.Context, ownerID, budgetID uuid.UUID) ([]*WithSpent, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (*Category, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}
