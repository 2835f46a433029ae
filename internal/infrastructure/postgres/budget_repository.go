package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"fintrack/internal/domain/budget"
)

// BudgetRepository implements budget.Repository on postgres.
type BudgetRepository struct {
	db *DB
}

func NewBudgetRepository(db *DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

const budgetColumns = `id, owner_id, month, year, total_income, savings_rate, currency, created_at, updated_at`

func (r *BudgetRepository) Create(ctx context.Context, params budget.CreateParams) (*budget.Budget, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO budgets (owner_id, month, year, total_income, savings_rate, currency)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+budgetColumns,
		params.OwnerID, params.Month, params.Year, params.TotalIncome, params.SavingsRate, params.Currency,
	)
	b, err := scanBudget(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, budget.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}
	return b, nil
}

func (r *BudgetRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*budget.Budget, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, budget.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return b, nil
}

func (r *BudgetRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*budget.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE owner_id = $1
		ORDER BY year DESC, month DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	budgets := []*budget.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read budgets: %w", err)
	}
	return budgets, nil
}

func (r *BudgetRepository) Update(ctx context.Context, ownerID, id uuid.UUID, params budget.UpdateParams) (*budget.Budget, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE budgets SET
			total_income = COALESCE($3, total_income),
			savings_rate = COALESCE($4, savings_rate),
			currency = COALESCE($5, currency),
			updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING `+budgetColumns,
		id, ownerID, decimalPtr(params.TotalIncome), decimalPtr(params.SavingsRate), params.Currency,
	)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, budget.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}
	return b, nil
}

func (r *BudgetRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	// The delete cascades to the budget's categories, but transaction rows
	// are guarded by an ON DELETE RESTRICT foreign key: only the ledger
	// engine removes them, reversing their balance effect first. A budget
	// with recorded transactions therefore cannot be deleted.
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return budget.ErrInUse
		}
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return budget.ErrNotFound
	}
	return nil
}

func scanBudget(row scannable) (*budget.Budget, error) {
	var b budget.Budget
	err := row.Scan(
		&b.ID, &b.OwnerID, &b.Month, &b.Year, &b.TotalIncome,
		&b.SavingsRate, &b.Currency, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// decimalPtr keeps an absent decimal an SQL NULL; a nil *decimal.Decimal
// cannot be handed to the driver directly.
func decimalPtr(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return *d
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
