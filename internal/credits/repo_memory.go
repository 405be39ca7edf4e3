package credits

import (
	"context"
	"sync"
)

// MemoryRepo keeps balances and the ledger in memory and is safe for
// concurrent use.
type MemoryRepo struct {
	mu       sync.Mutex
	balances map[string]int
	entries  map[string][]Transaction
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		balances: make(map[string]int),
		entries:  make(map[string][]Transaction),
	}
}

// Balance returns the user's spendable balance; missing accounts read as 0.
func (r *MemoryRepo) Balance(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[userID], nil
}

// Debit applies a debit if the balance covers it, appending the ledger entry.
func (r *MemoryRepo) Debit(ctx context.Context, t Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.debitLocked(t)
}

func (r *MemoryRepo) debitLocked(t Transaction) error {
	amount := -t.Amount
	available := r.balances[t.UserID]
	if available < amount {
		return &InsufficientCreditsError{Required: amount, Available: available}
	}
	r.balances[t.UserID] = available - amount
	r.entries[t.UserID] = append(r.entries[t.UserID], t)
	return nil
}

// DebitWith applies a debit and, if persist succeeds, keeps both; if persist
// fails, the debit is rolled back. It emulates PGRepo's transactional debit
// for stores that live alongside this repo in memory.
func (r *MemoryRepo) DebitWith(ctx context.Context, t Transaction, persist func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.debitLocked(t); err != nil {
		return err
	}
	if persist != nil {
		if err := persist(); err != nil {
			amount := -t.Amount
			r.balances[t.UserID] += amount
			list := r.entries[t.UserID]
			r.entries[t.UserID] = list[:len(list)-1]
			return err
		}
	}
	return nil
}

// EraseUser removes the user's balance and ledger, returning the number of
// ledger entries removed.
func (r *MemoryRepo) EraseUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := len(r.entries[userID])
	delete(r.balances, userID)
	delete(r.entries, userID)
	return removed, nil
}

// Credit applies a credit and appends the ledger entry.
func (r *MemoryRepo) Credit(ctx context.Context, t Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[t.UserID] += t.Amount
	r.entries[t.UserID] = append(r.entries[t.UserID], t)
	return nil
}

// Transactions lists the user's ledger entries, newest first.
func (r *MemoryRepo) Transactions(ctx context.Context, userID string, limit, offset int) ([]Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.entries[userID]
	out := make([]Transaction, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, list[i])
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
