package transaction

import (
	"context"

	"github.com/google/uuid"
)

// Service contains the business logic for ledger operations. Input
// validation happens here; atomicity, locking and ownership enforcement
// happen inside the repository's unit of work.
type Service struct {
	repo Repository
}

// NewService creates a new transaction service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates the parameters and persists a new transaction.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, userID, params)
}

// Get returns one transaction owned by the user.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// List returns filtered transactions and the total count. The limit is
// defaulted and capped so a single request cannot page in the whole ledger.
func (s *Service) List(ctx context.Context, userID uuid.UUID, filters Filters) ([]*Transaction, int64, error) {
	filters = clampFilters(filters)
	if filters.Kind != nil && !filters.Kind.Valid() {
		return nil, 0, validationError("kind must be one of expense, income, transfer")
	}
	return s.repo.List(ctx, userID, filters)
}

// ListByCategory returns all transactions of one owned category.
func (s *Service) ListByCategory(ctx context.Context, userID, categoryID uuid.UUID) ([]*Transaction, error) {
	return s.repo.ListByCategory(ctx, userID, categoryID)
}

// ListByCategories returns transactions for a set of owned categories. An
// empty set is a valid request with an empty result.
func (s *Service) ListByCategories(ctx context.Context, userID uuid.UUID, categoryIDs []uuid.UUID) ([]*Transaction, error) {
	if len(categoryIDs) == 0 {
		return []*Transaction{}, nil
	}
	return s.repo.ListByCategories(ctx, userID, categoryIDs)
}

// ListByAccount returns transactions referencing one owned account.
func (s *Service) ListByAccount(ctx context.Context, userID, accountID uuid.UUID, filters Filters) ([]*Transaction, int64, error) {
	filters = clampFilters(filters)
	if filters.Kind != nil && !filters.Kind.Valid() {
		return nil, 0, validationError("kind must be one of expense, income, transfer")
	}
	return s.repo.ListByAccount(ctx, userID, accountID, filters)
}

// Update validates the partial update and applies it.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, userID, id, params)
}

// Delete removes a transaction, reversing its balance effect.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.Delete(ctx, userID, id)
}

// Summary aggregates totals over the filtered window.
func (s *Service) Summary(ctx context.Context, userID uuid.UUID, filters SummaryFilters) (*Summary, error) {
	return s.repo.Summary(ctx, userID, filters)
}

func clampFilters(filters Filters) Filters {
	if filters.Limit <= 0 {
		filters.Limit = DefaultListLimit
	}
	if filters.Limit > MaxListLimit {
		filters.Limit = MaxListLimit
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	return filters
}
