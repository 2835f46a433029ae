package account

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Allowed account types.
var accountTypes = map[string]struct{}{
	"checking":   {},
	"savings":    {},
	"credit":     {},
	"cash":       {},
	"investment": {},
}

var colorHexPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Domain errors
var (
	ErrNotFound     = errors.New("account not found")
	ErrForbidden    = errors.New("access forbidden")
	ErrInvalidInput = errors.New("invalid input")

	// Validation failures match ErrInvalidInput under errors.Is.
	ErrInvalidType    = fmt.Errorf("%w: unknown account type", ErrInvalidInput)
	ErrInvalidColor   = fmt.Errorf("%w: color must be a #RRGGBB hex value", ErrInvalidInput)
	ErrInvalidBalance = fmt.Errorf("%w: initial balance cannot have more than 2 decimal places", ErrInvalidInput)
)

// Account is a financial account whose running balance is kept consistent
// with the transactions referencing it. The balance column is written only
// by the ledger engine; credit-type accounts may go negative.
type Account struct {
	ID             uuid.UUID       `json:"id"`
	OwnerID        uuid.UUID       `json:"ownerId"`
	Name           string          `json:"name"`
	AccountType    string          `json:"accountType"`
	Balance        decimal.Decimal `json:"balance"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	ColorHex       string          `json:"colorHex"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// BalanceDrift reports an account whose stored balance disagrees with the
// balance recomputed from its transactions. Produced by the reconciliation
// job; a non-empty result means the consistency invariant was violated.
type BalanceDrift struct {
	AccountID uuid.UUID
	Name      string
	Stored    decimal.Decimal
	Expected  decimal.Decimal
}

// CreateParams contains parameters for creating a new account.
type CreateParams struct {
	OwnerID        uuid.UUID
	Name           string
	AccountType    string
	InitialBalance decimal.Decimal
	ColorHex       string
}

// Validate validates the create parameters.
func (p CreateParams) Validate() error {
	if p.OwnerID == uuid.Nil {
		return ErrInvalidInput
	}
	if p.Name == "" {
		return ErrInvalidInput
	}
	if !IsValidType(p.AccountType) {
		return ErrInvalidType
	}
	if p.InitialBalance.Exponent() < -2 {
		return ErrInvalidBalance
	}
	if p.ColorHex != "" && !colorHexPattern.MatchString(p.ColorHex) {
		return ErrInvalidColor
	}
	return nil
}

// UpdateParams contains parameters for updating account metadata. The
// balance is deliberately absent: it is owned by the ledger engine.
type UpdateParams struct {
	Name        *string
	AccountType *string
	ColorHex    *string
}

// Validate validates whichever update fields were provided.
func (p UpdateParams) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return ErrInvalidInput
	}
	if p.AccountType != nil && !IsValidType(*p.AccountType) {
		return ErrInvalidType
	}
	if p.ColorHex != nil && !colorHexPattern.MatchString(*p.ColorHex) {
		return ErrInvalidColor
	}
	return nil
}

// IsValidType checks if the provided account type is valid.
func IsValidType(t string) bool {
	_, ok := accountTypes[t]
	return ok
}
