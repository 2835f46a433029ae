package budget

import (
	"context"

	"github.com/google/uuid"
)

// Service contains the business logic for budget operations.
type Service struct {
	repo Repository
}

// NewService creates a new budget service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a budget for one month.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Budget, error) {
	if params.Currency == "" {
		params.Currency = "USD"
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, params)
}

// Get retrieves a budget owned by the user.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Budget, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

// List retrieves all budgets for a user.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]*Budget, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Update changes budget fields.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (*Budget, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, ownerID, id, params)
}

// Delete removes a budget and everything under it.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.Delete(ctx, ownerID, id)
}
