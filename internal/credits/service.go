package credits

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Service contains business logic for the credit ledger.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Balance returns the user's current spendable balance.
func (s *Service) Balance(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, errors.New("userID is required")
	}
	return s.Repo.Balance(ctx, userID)
}

// Debit removes amount credits from the user's balance, recording the ledger
// entry. amount must be positive; the stored entry is negative.
func (s *Service) Debit(ctx context.Context, userID string, amount int, txType TransactionType, description string, referenceID *string) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, errors.New("debit amount must be positive")
	}
	t, err := newTransaction(userID, -amount, txType, description, referenceID)
	if err != nil {
		return Transaction{}, err
	}
	if err := s.Repo.Debit(ctx, t); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

// Credit adds amount credits to the user's balance, recording the ledger
// entry. There is no balance ceiling.
func (s *Service) Credit(ctx context.Context, userID string, amount int, txType TransactionType, description string) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, errors.New("credit amount must be positive")
	}
	t, err := newTransaction(userID, amount, txType, description, nil)
	if err != nil {
		return Transaction{}, err
	}
	if err := s.Repo.Credit(ctx, t); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

// Purchase records a top-up bought through the external payment collaborator.
func (s *Service) Purchase(ctx context.Context, userID string, amount int, description string) (Transaction, error) {
	return s.Credit(ctx, userID, amount, TxPurchase, description)
}

// Grant records an administrative credit grant.
func (s *Service) Grant(ctx context.Context, userID string, amount int, description string) (Transaction, error) {
	return s.Credit(ctx, userID, amount, TxAdminGrant, description)
}

// Transactions lists the user's ledger entries, newest first.
func (s *Service) Transactions(ctx context.Context, userID string, limit, offset int) ([]Transaction, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.Transactions(ctx, userID, limit, offset)
}

func newTransaction(userID string, amount int, txType TransactionType, description string, referenceID *string) (Transaction, error) {
	if userID == "" {
		return Transaction{}, errors.New("userID is required")
	}
	if amount == 0 {
		return Transaction{}, errors.New("amount must be non-zero")
	}
	return Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      amount,
		Type:        txType,
		Description: description,
		ReferenceID: referenceID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
