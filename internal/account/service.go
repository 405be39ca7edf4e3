package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/analysis"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/credits"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/ratelimit"
)

// Service handles account-level operations: the erasure cascade that removes
// everything keyed by a user id.
type Service struct {
	AnalysisRepo analysis.Repo
	CreditRepo   credits.Repo
}

// EraseResult reports what the cascade removed.
type EraseResult struct {
	ErasedAnalyses     int `json:"erasedAnalyses"`
	ErasedTransactions int `json:"erasedTransactions"`
}

func NewService(analysisRepo analysis.Repo, creditRepo credits.Repo) *Service {
	return &Service{AnalysisRepo: analysisRepo, CreditRepo: creditRepo}
}

// Erase removes the user's analyses, ledger, balance, and rate-limit windows.
// Against Postgres the cascade runs in one transaction; against memory repos
// each store erases independently.
func (s *Service) Erase(ctx context.Context, userID string) (EraseResult, error) {
	if strings.TrimSpace(userID) == "" {
		return EraseResult{}, errors.New("userID is required")
	}

	if analysisPG, ok := s.AnalysisRepo.(*analysis.PGRepo); ok && analysisPG != nil && analysisPG.DB != nil {
		return eraseWithTx(ctx, analysisPG.DB, userID)
	}

	analysisCount, err := eraseAnalyses(ctx, s.AnalysisRepo, userID)
	if err != nil {
		return EraseResult{}, err
	}
	txCount, err := eraseCredits(ctx, s.CreditRepo, userID)
	if err != nil {
		return EraseResult{}, err
	}
	return EraseResult{ErasedAnalyses: analysisCount, ErasedTransactions: txCount}, nil
}

func eraseWithTx(ctx context.Context, db *sql.DB, userID string) (EraseResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return EraseResult{}, err
	}
	defer tx.Rollback()

	analysisRes, err := tx.ExecContext(ctx, `DELETE FROM analyses WHERE user_id = $1`, userID)
	if err != nil {
		return EraseResult{}, err
	}
	analysisCount, _ := analysisRes.RowsAffected()

	txRes, err := tx.ExecContext(ctx, `DELETE FROM credit_transactions WHERE user_id = $1`, userID)
	if err != nil {
		return EraseResult{}, err
	}
	txCount, _ := txRes.RowsAffected()

	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE user_id = $1`, userID); err != nil {
		return EraseResult{}, err
	}
	subject := ratelimit.UserSubject(userID).Key()
	if _, err := tx.ExecContext(ctx, `DELETE FROM rate_limit_windows WHERE subject = $1`, subject); err != nil {
		return EraseResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return EraseResult{}, err
	}
	return EraseResult{ErasedAnalyses: int(analysisCount), ErasedTransactions: int(txCount)}, nil
}

type userEraser interface {
	EraseUser(ctx context.Context, userID string) (int, error)
}

func eraseAnalyses(ctx context.Context, repo analysis.Repo, userID string) (int, error) {
	if eraser, ok := repo.(userEraser); ok {
		return eraser.EraseUser(ctx, userID)
	}
	return 0, errors.New("analysis repo does not support erase")
}

func eraseCredits(ctx context.Context, repo credits.Repo, userID string) (int, error) {
	if eraser, ok := repo.(userEraser); ok {
		return eraser.EraseUser(ctx, userID)
	}
	return 0, errors.New("credit repo does not support erase")
}
