package credits

import "time"

// TransactionType categorizes ledger entries.
type TransactionType string

const (
	TxPurchase   TransactionType = "purchase"
	TxAdminGrant TransactionType = "admin_grant"
	TxDeduction  TransactionType = "deduction"
	TxRefund     TransactionType = "refund"
)

// Transaction is one immutable ledger entry. Negative amounts are debits,
// positive amounts are credits.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Amount      int             `json:"amount"`
	Type        TransactionType `json:"transactionType"`
	Description string          `json:"description"`
	ReferenceID *string         `json:"referenceId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}
