package transaction

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxDescriptionLength bounds the free-text description field.
const MaxDescriptionLength = 200

// Pagination bounds for listing queries.
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// Domain errors
var (
	ErrValidation = errors.New("invalid input")
	ErrNotFound   = errors.New("transaction not found")
	ErrForbidden  = errors.New("access forbidden")
	ErrConflict   = errors.New("conflict")

	// Referenced-entity failures. Both satisfy errors.Is(err, ErrNotFound):
	// a reference that resolves to nothing and one that resolves to another
	// owner's data answer identically, so existence is never leaked.
	ErrCategoryNotFound = &refError{msg: "category not found or access denied"}
	ErrAccountNotFound  = &refError{msg: "account not found or access denied"}
)

type refError struct{ msg string }

func (e *refError) Error() string        { return e.msg }
func (e *refError) Is(target error) bool { return target == ErrNotFound }

// Kind is the closed set of transaction kinds. The amount stored on a
// transaction is always positive; the direction of its effect on an account
// balance is derived from the kind alone.
type Kind string

const (
	KindExpense  Kind = "expense"
	KindIncome   Kind = "income"
	KindTransfer Kind = "transfer"
)

// ParseKind returns the Kind for s, or false if s is not a known kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindExpense, KindIncome, KindTransfer:
		return Kind(s), true
	}
	return "", false
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := ParseKind(string(k))
	return ok
}

// Effect returns the signed delta that a transaction of this kind and amount
// exerts on an account balance: negative for expenses, positive for income.
// Transfer-kind transactions currently carry no balance effect; the upstream
// design models them without a destination account, so reworking them into a
// debit/credit pair is deliberately not done here.
func (k Kind) Effect(amount decimal.Decimal) decimal.Decimal {
	switch k {
	case KindExpense:
		return amount.Neg()
	case KindIncome:
		return amount
	case KindTransfer:
		return decimal.Zero
	}
	// Kinds are validated at every input boundary, so reaching this means a
	// new variant was added without extending the switch above.
	panic("transaction: unknown kind " + string(k))
}

// Transaction is the ledger's append/mutate/remove unit.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	CategoryID  uuid.UUID       `json:"categoryId"`
	AccountID   *uuid.UUID      `json:"accountId,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        Kind            `json:"kind"`
	OccurredAt  time.Time       `json:"occurredAt"`
	Description *string         `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CreateParams contains parameters for creating a new transaction.
type CreateParams struct {
	CategoryID  uuid.UUID
	AccountID   *uuid.UUID
	Amount      decimal.Decimal
	Kind        Kind
	OccurredAt  time.Time
	Description *string
}

// Validate validates the create parameters.
func (p CreateParams) Validate() error {
	if p.CategoryID == uuid.Nil {
		return validationError("category is required")
	}
	if err := validateAmount(p.Amount); err != nil {
		return err
	}
	if !p.Kind.Valid() {
		return validationError("kind must be one of expense, income, transfer")
	}
	if p.OccurredAt.IsZero() {
		return validationError("occurredAt is required")
	}
	return validateDescription(p.Description)
}

// OptionalID is a three-state update instruction for a nullable id field:
// not provided (keep the current value), explicit null (clear it), or a
// concrete id (set it). A plain pointer cannot express the first two states
// at once, which is why this type exists.
type OptionalID struct {
	Set   bool
	Value *uuid.UUID
}

// UnmarshalJSON marks the field as provided; a JSON null clears the value.
// Absent fields never reach UnmarshalJSON, leaving Set false.
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

// UpdateParams contains the partial fields of an update. Nil pointers mean
// "keep the current value"; AccountID additionally distinguishes clearing.
type UpdateParams struct {
	CategoryID  *uuid.UUID
	AccountID   OptionalID
	Amount      *decimal.Decimal
	Kind        *Kind
	OccurredAt  *time.Time
	Description *string
}

// Validate validates whichever update fields were provided.
func (p UpdateParams) Validate() error {
	if p.CategoryID != nil && *p.CategoryID == uuid.Nil {
		return validationError("category id must not be empty")
	}
	if p.Amount != nil {
		if err := validateAmount(*p.Amount); err != nil {
			return err
		}
	}
	if p.Kind != nil && !p.Kind.Valid() {
		return validationError("kind must be one of expense, income, transfer")
	}
	return validateDescription(p.Description)
}

// Filters narrows listing queries. Nil fields are not applied.
type Filters struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID *uuid.UUID
	AccountID  *uuid.UUID
	Kind       *Kind
	Limit      int64
	Offset     int64
}

// SummaryFilters narrows the aggregate summary query.
type SummaryFilters struct {
	StartDate *time.Time
	EndDate   *time.Time
	AccountID *uuid.UUID
}

// CategorySummary is one row of the per-category expense breakdown.
type CategorySummary struct {
	CategoryID   uuid.UUID       `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	ColorHex     string          `json:"colorHex"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Count        int64           `json:"transactionCount"`
}

// Summary aggregates transactions over the filtered window. All values are
// derived at read time; nothing here is stored.
type Summary struct {
	TotalIncome   decimal.Decimal   `json:"totalIncome"`
	TotalExpenses decimal.Decimal   `json:"totalExpenses"`
	Count         int64             `json:"transactionCount"`
	ByCategory    []CategorySummary `json:"byCategory"`
}

func validationError(msg string) error {
	return &fieldError{msg: msg}
}

// fieldError carries a human-readable validation message while matching
// ErrValidation under errors.Is.
type fieldError struct {
	msg string
}

func (e *fieldError) Error() string { return e.msg }

func (e *fieldError) Is(target error) bool { return target == ErrValidation }

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return validationError("amount must be positive")
	}
	if amount.Exponent() < -2 {
		return validationError("amount cannot have more than 2 decimal places")
	}
	return nil
}

func validateDescription(description *string) error {
	if description != nil && len(*description) > MaxDescriptionLength {
		return validationError("description cannot exceed 200 characters")
	}
	return nil
}
