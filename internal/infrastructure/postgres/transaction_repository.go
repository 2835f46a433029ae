package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"fintrack/internal/domain/transaction"
)

// TransactionRepository implements transaction.Repository on postgres.
// Every mutating method runs as one database transaction: the ownership
// checks happen inside it (so concurrent re-assignment of ownership cannot
// race the mutation), row locks are taken in a fixed order (transaction row
// first, then accounts ascending by id), and a failure anywhere rolls the
// whole unit of work back.
type TransactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `t.id, t.category_id, t.account_id, t.amount, t.kind, t.occurred_at, t.description, t.created_at, t.updated_at`

// ownedTransactionQuery scopes a transaction row to its owner through the
// category -> budget -> owner chain.
const ownedTransactionQuery = `
	SELECT ` + transactionColumns + `
	FROM transactions t
	JOIN categories c ON t.category_id = c.id
	JOIN budgets b ON c.budget_id = b.id
	WHERE t.id = $1 AND b.owner_id = $2`

func (r *TransactionRepository) Create(ctx context.Context, userID uuid.UUID, params transaction.CreateParams) (*transaction.Transaction, error) {
	var created *transaction.Transaction

	err := r.db.WithinTx(ctx, "ledger.create", func(tx *sql.Tx) error {
		if err := r.requireCategoryOwned(ctx, tx, params.CategoryID, userID); err != nil {
			return err
		}
		if params.AccountID != nil {
			if err := r.requireAccountOwned(ctx, tx, *params.AccountID, userID); err != nil {
				return err
			}
		}

		row := tx.QueryRowContext(ctx, `
			INSERT INTO transactions (category_id, account_id, amount, kind, occurred_at, description)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, category_id, account_id, amount, kind, occurred_at, description, created_at, updated_at`,
			params.CategoryID, nullableUUID(params.AccountID), params.Amount,
			string(params.Kind), params.OccurredAt, params.Description,
		)
		t, err := scanTransaction(row)
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}

		mut := transaction.Mutation{After: transaction.EffectingOf(t)}
		if err := r.applyBalanceChanges(ctx, tx, mut.Changes()); err != nil {
			return err
		}

		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *TransactionRepository) Update(ctx context.Context, userID, id uuid.UUID, params transaction.UpdateParams) (*transaction.Transaction, error) {
	var updated *transaction.Transaction

	err := r.db.WithinTx(ctx, "ledger.update", func(tx *sql.Tx) error {
		old, err := r.lockOwnedTransaction(ctx, tx, id, userID)
		if err != nil {
			return err
		}

		// Re-check ownership of anything newly referenced, inside this same
		// unit of work.
		newCategoryID := old.CategoryID
		if params.CategoryID != nil {
			newCategoryID = *params.CategoryID
			if err := r.requireCategoryOwned(ctx, tx, newCategoryID, userID); err != nil {
				return err
			}
		}

		newAccountID := old.AccountID
		if params.AccountID.Set {
			newAccountID = params.AccountID.Value
			if newAccountID != nil {
				if err := r.requireAccountOwned(ctx, tx, *newAccountID, userID); err != nil {
					return err
				}
			}
		}

		// Fields not supplied keep their previous values.
		newAmount := old.Amount
		if params.Amount != nil {
			newAmount = *params.Amount
		}
		newKind := old.Kind
		if params.Kind != nil {
			newKind = *params.Kind
		}
		newOccurredAt := old.OccurredAt
		if params.OccurredAt != nil {
			newOccurredAt = *params.OccurredAt
		}
		newDescription := old.Description
		if params.Description != nil {
			newDescription = params.Description
		}

		mut := transaction.Mutation{
			Before: transaction.EffectingOf(old),
			After:  &transaction.Effecting{AccountID: newAccountID, Amount: newAmount, Kind: newKind},
		}
		if err := r.applyBalanceChanges(ctx, tx, mut.Changes()); err != nil {
			return err
		}

		row := tx.QueryRowContext(ctx, `
			UPDATE transactions SET
				category_id = $2,
				account_id = $3,
				amount = $4,
				kind = $5,
				occurred_at = $6,
				description = $7,
				updated_at = NOW()
			WHERE id = $1
			RETURNING id, category_id, account_id, amount, kind, occurred_at, description, created_at, updated_at`,
			id, newCategoryID, nullableUUID(newAccountID), newAmount,
			string(newKind), newOccurredAt, newDescription,
		)
		t, err := scanTransaction(row)
		if err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}

		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *TransactionRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return r.db.WithinTx(ctx, "ledger.delete", func(tx *sql.Tx) error {
		old, err := r.lockOwnedTransaction(ctx, tx, id, userID)
		if err != nil {
			return err
		}

		// Reverse the balance effect before the row disappears.
		mut := transaction.Mutation{Before: transaction.EffectingOf(old)}
		if err := r.applyBalanceChanges(ctx, tx, mut.Changes()); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
		return nil
	})
}

func (r *TransactionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*transaction.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx, ownedTransactionQuery, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, transaction.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

const listFilterClause = `
	  AND ($2::timestamptz IS NULL OR t.occurred_at >= $2)
	  AND ($3::timestamptz IS NULL OR t.occurred_at <= $3)
	  AND ($4::uuid IS NULL OR t.category_id = $4)
	  AND ($5::uuid IS NULL OR t.account_id = $5)
	  AND ($6::text IS NULL OR t.kind = $6)`

func (r *TransactionRepository) List(ctx context.Context, userID uuid.UUID, filters transaction.Filters) ([]*transaction.Transaction, int64, error) {
	args := []any{
		userID, filters.StartDate, filters.EndDate,
		nullableUUID(filters.CategoryID), nullableUUID(filters.AccountID), nullableKind(filters.Kind),
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		JOIN categories c ON t.category_id = c.id
		JOIN budgets b ON c.budget_id = b.id
		WHERE b.owner_id = $1`+listFilterClause+`
		ORDER BY t.occurred_at DESC, t.created_at DESC
		LIMIT $7 OFFSET $8`,
		append(args, filters.Limit, filters.Offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	transactions, err := collectTransactions(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM transactions t
		JOIN categories c ON t.category_id = c.id
		JOIN budgets b ON c.budget_id = b.id
		WHERE b.owner_id = $1`+listFilterClause,
		args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return transactions, total, nil
}

func (r *TransactionRepository) ListByCategory(ctx context.Context, userID, categoryID uuid.UUID) ([]*transaction.Transaction, error) {
	owned, err := r.categoryOwned(ctx, r.db.DB, categoryID, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, transaction.ErrCategoryNotFound
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		WHERE t.category_id = $1
		ORDER BY t.occurred_at DESC, t.created_at DESC`,
		categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions by category: %w", err)
	}
	return collectTransactions(rows)
}

func (r *TransactionRepository) ListByCategories(ctx context.Context, userID uuid.UUID, categoryIDs []uuid.UUID) ([]*transaction.Transaction, error) {
	// All-or-nothing authorization: one unowned id fails the whole request
	// instead of silently dropping it from the results.
	var ownedCount int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT c.id)
		FROM categories c
		JOIN budgets b ON c.budget_id = b.id
		WHERE c.id = ANY($1) AND b.owner_id = $2`,
		pq.Array(categoryIDs), userID,
	).Scan(&ownedCount)
	if err != nil {
		return nil, fmt.Errorf("failed to verify category ownership: %w", err)
	}
	if ownedCount != int64(len(uniqueIDs(categoryIDs))) {
		return nil, fmt.Errorf("one or more categories: %w", transaction.ErrForbidden)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		WHERE t.category_id = ANY($1)
		ORDER BY t.occurred_at DESC, t.created_at DESC`,
		pq.Array(categoryIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions by categories: %w", err)
	}
	return collectTransactions(rows)
}

func (r *TransactionRepository) ListByAccount(ctx context.Context, userID, accountID uuid.UUID, filters transaction.Filters) ([]*transaction.Transaction, int64, error) {
	owned, err := r.accountOwned(ctx, r.db.DB, accountID, userID)
	if err != nil {
		return nil, 0, err
	}
	if !owned {
		return nil, 0, transaction.ErrAccountNotFound
	}

	const accountFilterClause = `
		  AND ($2::timestamptz IS NULL OR t.occurred_at >= $2)
		  AND ($3::timestamptz IS NULL OR t.occurred_at <= $3)
		  AND ($4::uuid IS NULL OR t.category_id = $4)
		  AND ($5::text IS NULL OR t.kind = $5)`

	args := []any{
		accountID, filters.StartDate, filters.EndDate,
		nullableUUID(filters.CategoryID), nullableKind(filters.Kind),
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		WHERE t.account_id = $1`+accountFilterClause+`
		ORDER BY t.occurred_at DESC, t.created_at DESC
		LIMIT $6 OFFSET $7`,
		append(args, filters.Limit, filters.Offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions by account: %w", err)
	}
	transactions, err := collectTransactions(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM transactions t
		WHERE t.account_id = $1`+accountFilterClause,
		args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions by account: %w", err)
	}

	return transactions, total, nil
}

func (r *TransactionRepository) Summary(ctx context.Context, userID uuid.UUID, filters transaction.SummaryFilters) (*transaction.Summary, error) {
	const summaryFilterClause = `
		  AND ($2::timestamptz IS NULL OR t.occurred_at >= $2)
		  AND ($3::timestamptz IS NULL OR t.occurred_at <= $3)
		  AND ($4::uuid IS NULL OR t.account_id = $4)`

	args := []any{userID, filters.StartDate, filters.EndDate, nullableUUID(filters.AccountID)}
	summary := &transaction.Summary{ByCategory: []transaction.CategorySummary{}}

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(t.amount) FILTER (WHERE t.kind = 'income'), 0),
			COALESCE(SUM(t.amount) FILTER (WHERE t.kind = 'expense'), 0),
			COUNT(*)
		FROM transactions t
		JOIN categories c ON t.category_id = c.id
		JOIN budgets b ON c.budget_id = b.id
		WHERE b.owner_id = $1`+summaryFilterClause,
		args...,
	).Scan(&summary.TotalIncome, &summary.TotalExpenses, &summary.Count)
	if err != nil {
		return nil, fmt.Errorf("failed to compute summary totals: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.color_hex, COALESCE(SUM(t.amount), 0), COUNT(t.id)
		FROM categories c
		JOIN budgets b ON c.budget_id = b.id
		LEFT JOIN transactions t ON t.category_id = c.id
			AND t.kind = 'expense'
			AND ($2::timestamptz IS NULL OR t.occurred_at >= $2)
			AND ($3::timestamptz IS NULL OR t.occurred_at <= $3)
			AND ($4::uuid IS NULL OR t.account_id = $4)
		WHERE b.owner_id = $1
		GROUP BY c.id, c.name, c.color_hex
		HAVING COUNT(t.id) > 0
		ORDER BY COALESCE(SUM(t.amount), 0) DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute category breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row transaction.CategorySummary
		if err := rows.Scan(&row.CategoryID, &row.CategoryName, &row.ColorHex, &row.TotalAmount, &row.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category breakdown: %w", err)
		}
		summary.ByCategory = append(summary.ByCategory, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read category breakdown: %w", err)
	}

	return summary, nil
}

// lockOwnedTransaction fetches the transaction row FOR UPDATE, scoped to the
// acting user. The transaction row is always the first lock taken, before
// any account row.
func (r *TransactionRepository) lockOwnedTransaction(ctx context.Context, tx *sql.Tx, id, userID uuid.UUID) (*transaction.Transaction, error) {
	t, err := scanTransaction(tx.QueryRowContext(ctx, ownedTransactionQuery+` FOR UPDATE OF t`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, transaction.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock transaction: %w", err)
	}
	return t, nil
}

// applyBalanceChanges locks and adjusts each account balance. Changes arrive
// netted and sorted ascending by account id, which gives every unit of work
// the same global lock order and rules out lock-ordering deadlocks between
// operations touching the same pair of accounts.
func (r *TransactionRepository) applyBalanceChanges(ctx context.Context, tx *sql.Tx, changes []transaction.BalanceChange) error {
	for _, change := range changes {
		var locked uuid.UUID
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM accounts WHERE id = $1 FOR UPDATE`, change.AccountID,
		).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			// Account deleted concurrently; its FK already cleared the
			// reference, so there is no balance left to adjust.
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to lock account: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE accounts SET balance = balance + $1, updated_at = NOW() WHERE id = $2`,
			change.Delta, change.AccountID,
		); err != nil {
			return fmt.Errorf("failed to adjust account balance: %w", err)
		}
	}
	return nil
}

// querier lets the ownership checks run either inside a unit of work
// (*sql.Tx) or standalone against the pool.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *TransactionRepository) categoryOwned(ctx context.Context, q querier, categoryID, userID uuid.UUID) (bool, error) {
	var owned bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM categories c
			JOIN budgets b ON c.budget_id = b.id
			WHERE c.id = $1 AND b.owner_id = $2
		)`, categoryID, userID).Scan(&owned)
	if err != nil {
		return false, fmt.Errorf("failed to verify category ownership: %w", err)
	}
	return owned, nil
}

func (r *TransactionRepository) accountOwned(ctx context.Context, q querier, accountID, userID uuid.UUID) (bool, error) {
	var owned bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM accounts WHERE id = $1 AND owner_id = $2
		)`, accountID, userID).Scan(&owned)
	if err != nil {
		return false, fmt.Errorf("failed to verify account ownership: %w", err)
	}
	return owned, nil
}

func (r *TransactionRepository) requireCategoryOwned(ctx context.Context, tx *sql.Tx, categoryID, userID uuid.UUID) error {
	owned, err := r.categoryOwned(ctx, tx, categoryID, userID)
	if err != nil {
		return err
	}
	if !owned {
		return transaction.ErrCategoryNotFound
	}
	return nil
}

func (r *TransactionRepository) requireAccountOwned(ctx context.Context, tx *sql.Tx, accountID, userID uuid.UUID) error {
	owned, err := r.accountOwned(ctx, tx, accountID, userID)
	if err != nil {
		return err
	}
	if !owned {
		return transaction.ErrAccountNotFound
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTransaction(row scannable) (*transaction.Transaction, error) {
	var t transaction.Transaction
	var accountID uuid.NullUUID
	var description sql.NullString
	var kind string

	err := row.Scan(
		&t.ID, &t.CategoryID, &accountID, &t.Amount, &kind,
		&t.OccurredAt, &description, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if accountID.Valid {
		id := accountID.UUID
		t.AccountID = &id
	}
	if description.Valid {
		d := description.String
		t.Description = &d
	}
	t.Kind = transaction.Kind(kind)
	return &t, nil
}

func collectTransactions(rows *sql.Rows) ([]*transaction.Transaction, error) {
	defer rows.Close()

	transactions := []*transaction.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return transactions, nil
}

func nullableUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullableKind(k *transaction.Kind) sql.NullString {
	if k == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*k), Valid: true}
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
