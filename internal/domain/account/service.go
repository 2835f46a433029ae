package account

import (
	"context"

	"github.com/google/uuid"
)

// Service contains the business logic for account operations.
type Service struct {
	repo Repository
}

// NewService creates a new account service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new account. The stored balance starts equal to the
// initial balance; from then on only the ledger engine moves it.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Account, error) {
	if params.ColorHex == "" {
		params.ColorHex = "#4A90D9"
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, params)
}

// Get retrieves an account owned by the user.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

// List retrieves all accounts for a user.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]*Account, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Update changes account metadata. Balances cannot be set through here.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (*Account, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, ownerID, id, params)
}

// Delete removes an account owned by the user.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.Delete(ctx, ownerID, id)
}
