package budget

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrNotFound     = errors.New("budget not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("budget already exists for this month")
	ErrInUse        = errors.New("budget has recorded transactions")
)

// Budget is the monthly container that categories hang off. Ownership of
// categories, and transitively of transactions, resolves through here.
type Budget struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     uuid.UUID       `json:"ownerId"`
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	TotalIncome decimal.Decimal `json:"totalIncome"`
	SavingsRate decimal.Decimal `json:"savingsRate"`
	Currency    string          `json:"currency"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CreateParams contains parameters for creating a new budget.
type CreateParams struct {
	OwnerID     uuid.UUID
	Month       int
	Year        int
	TotalIncome decimal.Decimal
	SavingsRate decimal.Decimal
	Currency    string
}

// Validate validates the create parameters.
func (p CreateParams) Validate() error {
	if p.OwnerID == uuid.Nil {
		return ErrInvalidInput
	}
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidInput
	}
	if p.Year < 2000 || p.Year > 2200 {
		return ErrInvalidInput
	}
	if p.TotalIncome.IsNegative() {
		return ErrInvalidInput
	}
	if p.SavingsRate.IsNegative() || p.SavingsRate.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidInput
	}
	if len(p.Currency) != 3 {
		return ErrInvalidInput
	}
	return nil
}

// UpdateParams contains parameters for updating a budget.
type UpdateParams struct {
	TotalIncome *decimal.Decimal
	SavingsRate *decimal.Decimal
	Currency    *string
}

// Validate validates whichever update fields were provided.
func (p UpdateParams) Validate() error {
	if p.TotalIncome != nil && p.TotalIncome.IsNegative() {
		return ErrInvalidInput
	}
	if p.SavingsRate != nil && (p.SavingsRate.IsNegative() || p.SavingsRate.GreaterThan(decimal.NewFromInt(100))) {
		return ErrInvalidInput
	}
	if p.Currency != nil && len(*p.Currency) != 3 {
		return ErrInvalidInput
	}
	return nil
}
