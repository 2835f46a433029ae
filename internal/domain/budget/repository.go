package budget

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for budget data access.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Budget, error)
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*Budget, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Budget, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (*Budget, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}
