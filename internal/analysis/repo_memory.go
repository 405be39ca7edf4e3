package analysis

import (
	"context"
	"sync"

	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/credits"
)

// MemoryRepo stores analyses in memory and funds them through the in-memory
// credit repo, so debit and persist still succeed or fail together.
type MemoryRepo struct {
	mu      sync.Mutex
	byID    map[string]Analysis
	byUser  map[string][]Analysis
	Credits *credits.MemoryRepo
}

// NewMemoryRepo constructs a MemoryRepo backed by the given credit repo.
func NewMemoryRepo(cr *credits.MemoryRepo) *MemoryRepo {
	return &MemoryRepo{
		byID:    make(map[string]Analysis),
		byUser:  make(map[string][]Analysis),
		Credits: cr,
	}
}

func (r *MemoryRepo) CreateFunded(ctx context.Context, a Analysis, debit credits.Transaction) error {
	return r.Credits.DebitWith(ctx, debit, func() error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.byID[a.ID] = a
		r.byUser[a.UserID] = append(r.byUser[a.UserID], a)
		return nil
	})
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[analysisID]
	if !ok || a.UserID != userID {
		return Analysis{}, ErrNotFound
	}
	return a, nil
}

// EraseUser removes every analysis owned by the user, returning the count.
func (r *MemoryRepo) EraseUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.byUser[userID]
	for _, a := range list {
		delete(r.byID, a.ID)
	}
	delete(r.byUser, userID)
	return len(list), nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.byUser[userID]
	out := make([]Analysis, 0, len(list))
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
