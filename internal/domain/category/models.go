package category

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var colorHexPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Domain errors
var (
	ErrNotFound     = errors.New("category not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInUse        = errors.New("category has transactions")
)

// Category is a spending bucket inside a budget. Transactions reference
// categories; the owning user resolves through the category's budget.
type Category struct {
	ID              uuid.UUID       `json:"id"`
	BudgetID        uuid.UUID       `json:"budgetId"`
	Name            string          `json:"name"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
	ColorHex        string          `json:"colorHex"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// WithSpent extends Category with the spent amount derived at read time
// from expense-kind transactions. Never stored.
type WithSpent struct {
	Category
	SpentAmount decimal.Decimal `json:"spentAmount"`
}

// CreateParams contains parameters for creating a new category.
type CreateParams struct {
	BudgetID        uuid.UUID
	Name            string
	AllocatedAmount decimal.Decimal
	ColorHex        string
}

// Validate validates the create parameters.
func (p CreateParams) Validate() error {
	if p.BudgetID == uuid.Nil {
		return ErrInvalidInput
	}
	if p.Name == "" || len(p.Name) > 100 {
		return ErrInvalidInput
	}
	if p.AllocatedAmount.IsNegative() {
		return ErrInvalidInput
	}
	if p.ColorHex != "" && !colorHexPattern.MatchString(p.ColorHex) {
		return ErrInvalidInput
	}
	return nil
}

// UpdateParams contains parameters for updating a category.
type UpdateParams struct {
	Name            *string
	AllocatedAmount *decimal.Decimal
	ColorHex        *string
}

// Validate validates whichever update fields were provided.
func (p UpdateParams) Validate() error {
	if p.Name != nil && (*p.Name == "" || len(*p.Name) > 100) {
		return ErrInvalidInput
	}
	if p.AllocatedAmount != nil && p.AllocatedAmount.IsNegative() {
		return ErrInvalidInput
	}
	if p.ColorHex != nil && !colorHexPattern.MatchString(*p.ColorHex) {
		return ErrInvalidInput
	}
	return nil
}
