package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/domain/account"
)

// AccountRepository implements account.Repository on postgres. Balance
// writes never happen here; an account's balance only moves when the ledger
// records, updates, or removes a transaction against it.
type AccountRepository struct {
	db *DB
}

func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, owner_id, name, account_type, balance, initial_balance, color_hex, created_at, updated_at`

func (r *AccountRepository) Create(ctx context.Context, params account.CreateParams) (*account.Account, error) {
	// A new account starts with balance == initial_balance; no transactions
	// reference it yet.
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO accounts (owner_id, name, account_type, balance, initial_balance, color_hex)
		VALUES ($1, $2, $3, $4, $4, $5)
		RETURNING `+accountColumns,
		params.OwnerID, params.Name, params.AccountType, params.InitialBalance, params.ColorHex,
	)
	a, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*account.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE owner_id = $1
		ORDER BY created_at ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*account.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) Update(ctx context.Context, ownerID, id uuid.UUID, params account.UpdateParams) (*account.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE accounts SET
			name = COALESCE($3, name),
			account_type = COALESCE($4, account_type),
			color_hex = COALESCE($5, color_hex),
			updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING `+accountColumns,
		id, ownerID, params.Name, params.AccountType, params.ColorHex,
	)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	// Transactions that referenced the account survive with the reference
	// cleared (ON DELETE SET NULL); their history is not the account's.
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return account.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) FindBalanceDrift(ctx context.Context, ownerID uuid.UUID) ([]account.BalanceDrift, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.name, a.balance,
			a.initial_balance + COALESCE(SUM(
				CASE t.kind
					WHEN 'income' THEN t.amount
					WHEN 'expense' THEN -t.amount
					ELSE 0
				END
			), 0) AS expected
		FROM accounts a
		LEFT JOIN transactions t ON t.account_id = a.id
		WHERE a.owner_id = $1
		GROUP BY a.id, a.name, a.balance, a.initial_balance
		HAVING a.balance <> a.initial_balance + COALESCE(SUM(
			CASE t.kind
				WHEN 'income' THEN t.amount
				WHEN 'expense' THEN -t.amount
				ELSE 0
			END
		), 0)`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find balance drift: %w", err)
	}
	defer rows.Close()

	drifts := []account.BalanceDrift{}
	for rows.Next() {
		var d account.BalanceDrift
		if err := rows.Scan(&d.AccountID, &d.Name, &d.Stored, &d.Expected); err != nil {
			return nil, fmt.Errorf("failed to scan balance drift: %w", err)
		}
		drifts = append(drifts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read balance drift: %w", err)
	}
	return drifts, nil
}

func scanAccount(row scannable) (*account.Account, error) {
	var a account.Account
	err := row.Scan(
		&a.ID, &a.OwnerID, &a.Name, &a.AccountType, &a.Balance,
		&a.InitialBalance, &a.ColorHex, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
