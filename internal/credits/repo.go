package credits

import "context"

// Repo defines persistence operations for the credit ledger.
//
// Debit must be atomic per user: the balance check, balance update, and ledger
// append either all happen or none do.
type Repo interface {
	// Balance returns the user's spendable balance; missing accounts read as 0.
	Balance(ctx context.Context, userID string) (int, error)
	// Debit applies t (t.Amount < 0) if the balance covers it, and appends the
	// ledger entry. Returns *InsufficientCreditsError without side effects
	// otherwise.
	Debit(ctx context.Context, t Transaction) error
	// Credit applies t (t.Amount > 0) and appends the ledger entry.
	Credit(ctx context.Context, t Transaction) error
	// Transactions lists the user's ledger entries, newest first.
	Transactions(ctx context.Context, userID string, limit, offset int) ([]Transaction, error)
}
