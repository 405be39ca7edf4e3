package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/credits"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// CreateFunded inserts the analysis and applies the funding debit in one
// database transaction. The debit's conditional update is the final guard
// against concurrent overspending.
func (r *PGRepo) CreateFunded(ctx context.Context, a Analysis, debit credits.Transaction) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := createWithTx(ctx, tx, a); err != nil {
		return err
	}
	if err := credits.DebitTx(ctx, tx, debit); err != nil {
		return err
	}
	return tx.Commit()
}

func createWithTx(ctx context.Context, tx *sql.Tx, a Analysis) error {
	const query = `
INSERT INTO analyses (id, user_id, kind, input, selected_topics, credits_used, result, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	inputPayload, err := marshalJSONB(a.Input)
	if err != nil {
		return err
	}
	topicsPayload, err := marshalJSONB(a.SelectedTopics)
	if err != nil {
		return err
	}
	resultPayload, err := marshalJSONB(a.Result)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query,
		a.ID,
		a.UserID,
		a.Kind,
		inputPayload,
		topicsPayload,
		a.CreditsUsed,
		resultPayload,
		a.CreatedAt,
	)
	return err
}

// GetByID returns an analysis owned by the user.
func (r *PGRepo) GetByID(ctx context.Context, userID, analysisID string) (Analysis, error) {
	const query = `
SELECT id, user_id, kind, input, selected_topics, credits_used, result, created_at
FROM analyses
WHERE id = $1 AND user_id = $2
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, analysisID, userID)
	a, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return a, nil
}

// ListByUser returns the user's analyses, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	const query = `
SELECT id, user_id, kind, input, selected_topics, credits_used, result, created_at
FROM analyses
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var a Analysis
	var input, topics, result sql.NullString
	if err := row.Scan(&a.ID, &a.UserID, &a.Kind, &input, &topics, &a.CreditsUsed, &result, &a.CreatedAt); err != nil {
		return Analysis{}, err
	}
	if input.Valid {
		_ = json.Unmarshal([]byte(input.String), &a.Input)
	}
	if topics.Valid {
		_ = json.Unmarshal([]byte(topics.String), &a.SelectedTopics)
	}
	if result.Valid {
		_ = json.Unmarshal([]byte(result.String), &a.Result)
	}
	return a, nil
}

func marshalJSONB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}
