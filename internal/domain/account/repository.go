package account

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for account data access. Balance writes
// are not part of this contract; the ledger engine adjusts balances inside
// its own unit of work.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Account, error)
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*Account, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Account, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (*Account, error)
	// Delete removes the account; transactions referencing it keep existing
	// with their account reference cleared.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	// FindBalanceDrift recomputes each of the owner's account balances from
	// its transactions and returns the accounts where the stored balance
	// disagrees.
	FindBalanceDrift(ctx context.Context, ownerID uuid.UUID) ([]BalanceDrift, error)
}
