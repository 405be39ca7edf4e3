package analysis

import (
	"context"

	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/credits"
)

// Repo defines persistence operations for analyses.
//
// CreateFunded must apply the record insert and the credit debit as one
// atomic unit: a stored analysis always has its funding transaction, and a
// rejected debit leaves no record behind.
type Repo interface {
	CreateFunded(ctx context.Context, a Analysis, debit credits.Transaction) error
	GetByID(ctx context.Context, userID, analysisID string) (Analysis, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error)
}
