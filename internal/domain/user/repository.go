package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for user data access.
type Repository interface {
	Create(ctx context.Context, email, passwordHash string, fullName *string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// ListIDs returns every user id; consumed by the reconciliation job.
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}
