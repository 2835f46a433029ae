package transaction

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for the ledger. Every mutating
// method runs as one atomic unit of work: ownership checks, row locks,
// balance adjustments and the row write either all commit or all roll back.
// All methods are scoped to the acting user's ownership chain
// (category -> budget -> owner, account -> owner).
type Repository interface {
	// Create persists a new transaction and applies its balance effect to
	// the referenced account, if any.
	Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Transaction, error)

	// GetByID returns a single transaction owned by the user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Transaction, error)

	// List returns filtered, paginated transactions plus the total count
	// matching the filters.
	List(ctx context.Context, userID uuid.UUID, filters Filters) ([]*Transaction, int64, error)

	// ListByCategory returns all transactions of one owned category.
	ListByCategory(ctx context.Context, userID, categoryID uuid.UUID) ([]*Transaction, error)

	// ListByCategories is the batched equivalent of ListByCategory. If any
	// requested category is not owned by the user the whole call fails,
	// rather than silently filtering the unowned ids out.
	ListByCategories(ctx context.Context, userID uuid.UUID, categoryIDs []uuid.UUID) ([]*Transaction, error)

	// ListByAccount returns transactions referencing one owned account.
	ListByAccount(ctx context.Context, userID, accountID uuid.UUID, filters Filters) ([]*Transaction, int64, error)

	// Update applies a partial update, adjusting any touched account
	// balances by the net difference between the old and new state.
	Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Transaction, error)

	// Delete reverses the transaction's balance effect and removes the row.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// Summary aggregates totals and a per-category expense breakdown.
	Summary(ctx context.Context, userID uuid.UUID, filters SummaryFilters) (*Summary, error)
}
