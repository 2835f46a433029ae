package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/domain/category"
)

// CategoryRepository implements category.Repository on postgres. Every query
// is scoped to the acting user through the category's budget.
type CategoryRepository struct {
	db *DB
}

func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const categoryColumns = `c.id, c.budget_id, c.name, c.allocated_amount, c.color_hex, c.created_at, c.updated_at`

func (r *CategoryRepository) Create(ctx context.Context, ownerID uuid.UUID, params category.CreateParams) (*category.Category, error) {
	var budgetOwned bool
	err := r.db.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM budgets WHERE id = $1 AND owner_id = $2)`,
		params.BudgetID, ownerID,
	).Scan(&budgetOwned)
	if err != nil {
		return nil, fmt.Errorf("failed to verify budget ownership: %w", err)
	}
	if !budgetOwned {
		return nil, category.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (budget_id, name, allocated_amount, color_hex)
		VALUES ($1, $2, $3, $4)
		RETURNING id, budget_id, name, allocated_amount, color_hex, created_at, updated_at`,
		params.BudgetID, params.Name, params.AllocatedAmount, params.ColorHex,
	)
	c, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return c, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*category.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories c
		JOIN budgets b ON c.budget_id = b.id
		WHERE c.id = $1 AND b.owner_id = $2`,
		id, ownerID,
	)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, category.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

func (r *CategoryRepository) ListByBudget(ctx context.Context, ownerID, budgetID uuid.UUID) ([]*category.WithSpent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`,
			COALESCE(SUM(t.amount) FILTER (WHERE t.kind = 'expense'), 0) AS spent
		FROM categories c
		JOIN budgets b ON c.budget_id = b.id
		LEFT JOIN transactions t ON t.category_id = c.id
		WHERE c.budget_id = $1 AND b.owner_id = $2
		GROUP BY c.id, c.budget_id, c.name, c.allocated_amount, c.color_hex, c.created_at, c.updated_at
		ORDER BY c.created_at ASC`,
		budgetID, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*category.WithSpent{}
	for rows.Next() {
		var c category.WithSpent
		err := rows.Scan(
			&c.ID, &c.BudgetID, &c.Name, &c.AllocatedAmount,
			&c.ColorHex, &c.CreatedAt, &c.UpdatedAt, &c.SpentAmount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, ownerID, id uuid.UUID, params category.UpdateParams) (*category.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE categories c SET
			name = COALESCE($3, c.name),
			allocated_amount = COALESCE($4, c.allocated_amount),
			color_hex = COALESCE($5, c.color_hex),
			updated_at = NOW()
		FROM budgets b
		WHERE c.id = $1 AND c.budget_id = b.id AND b.owner_id = $2
		RETURNING `+categoryColumns,
		id, ownerID, params.Name, decimalPtr(params.AllocatedAmount), params.ColorHex,
	)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, category.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return c, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	var owned bool
	err := r.db.DB.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM categories c
			JOIN budgets b ON c.budget_id = b.id
			WHERE c.id = $1 AND b.owner_id = $2
		)`,
		id, ownerID,
	).Scan(&owned)
	if err != nil {
		return fmt.Errorf("failed to verify category ownership: %w", err)
	}
	if !owned {
		return category.ErrNotFound
	}

	// Transaction rows are removed only through the ledger engine, which
	// reverses their balance effect first; the ON DELETE RESTRICT foreign
	// key enforces that here, so a category in use stays even when a
	// transaction is created concurrently with this delete.
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM categories c
		USING budgets b
		WHERE c.id = $1 AND c.budget_id = b.id AND b.owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return category.ErrInUse
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return category.ErrNotFound
	}
	return nil
}

func scanCategory(row scannable) (*category.Category, error) {
	var c category.Category
	err := row.Scan(
		&c.ID, &c.BudgetID, &c.Name, &c.AllocatedAmount,
		&c.ColorHex, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
