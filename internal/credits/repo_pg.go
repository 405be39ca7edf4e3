package credits

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Balance returns the user's spendable balance; missing accounts read as 0.
func (r *PGRepo) Balance(ctx context.Context, userID string) (int, error) {
	var balance int
	err := r.DB.QueryRowContext(ctx, `SELECT credits FROM accounts WHERE user_id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return balance, nil
}

// Debit applies a debit and the matching ledger entry in one transaction.
func (r *PGRepo) Debit(ctx context.Context, t Transaction) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := DebitTx(ctx, tx, t); err != nil {
		return err
	}
	return tx.Commit()
}

// DebitTx runs the conditional balance update and ledger append inside the
// caller's transaction, so callers can persist dependent records atomically.
// t.Amount must be negative.
func DebitTx(ctx context.Context, tx *sql.Tx, t Transaction) error {
	amount := -t.Amount
	res, err := tx.ExecContext(ctx, `
UPDATE accounts
SET credits = credits - $1, updated_at = now()
WHERE user_id = $2 AND credits >= $1`, amount, t.UserID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var available int
		err := tx.QueryRowContext(ctx, `SELECT credits FROM accounts WHERE user_id = $1`, t.UserID).Scan(&available)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return &InsufficientCreditsError{Required: amount, Available: available}
	}
	return insertTransaction(ctx, tx, t)
}

// Credit applies a credit and the matching ledger entry in one transaction.
func (r *PGRepo) Credit(ctx context.Context, t Transaction) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO accounts (user_id, credits) VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE SET credits = accounts.credits + EXCLUDED.credits, updated_at = now()`,
		t.UserID, t.Amount); err != nil {
		return err
	}
	if err := insertTransaction(ctx, tx, t); err != nil {
		return err
	}
	return tx.Commit()
}

// Transactions lists the user's ledger entries, newest first.
func (r *PGRepo) Transactions(ctx context.Context, userID string, limit, offset int) ([]Transaction, error) {
	const query = `
SELECT id, user_id, amount, transaction_type, description, reference_id, created_at
FROM credit_transactions
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		var refID sql.NullString
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.Description, &refID, &t.CreatedAt); err != nil {
			return nil, err
		}
		if refID.Valid {
			t.ReferenceID = &refID.String
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func insertTransaction(ctx context.Context, tx *sql.Tx, t Transaction) error {
	var refID any
	if t.ReferenceID != nil {
		refID = *t.ReferenceID
	}
	_, err := tx.ExecContext(ctx, `
INSERT INTO credit_transactions (id, user_id, amount, transaction_type, description, reference_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.UserID, t.Amount, t.Type, t.Description, refID, t.CreatedAt)
	return err
}
