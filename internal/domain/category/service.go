package category

import (
	"context"

	"github.com/google/uuid"
)

// Service contains the business logic for category operations.
type Service struct {
	repo Repository
}

// NewService creates a new category service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a category inside a budget the user owns.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*Category, error) {
	if params.ColorHex == "" {
		params.ColorHex = "#7B8794"
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, ownerID, params)
}

// Get retrieves a category owned by the user.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Category, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

// ListByBudget retrieves a budget's categories with derived spent amounts.
func (s *Service) ListByBudget(ctx context.Context, ownerID, budgetID uuid.UUID) ([]*WithSpent, error) {
	return s.repo.ListByBudget(ctx, ownerID, budgetID)
}

// Update changes category fields.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (*Category, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, ownerID, id, params)
}

// Delete removes a category. Categories with transaction history cannot be
// deleted, because cascading the transactions away would silently strip
// their balance effects from accounts.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.Delete(ctx, ownerID, id)
}
