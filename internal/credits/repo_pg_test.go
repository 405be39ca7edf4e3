package credits

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoDebitAppliesConditionalUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	tx := Transaction{
		ID:          "tx-1",
		UserID:      "user-1",
		Amount:      -3,
		Type:        TxDeduction,
		Description: "tarot analysis",
		CreatedAt:   time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts").
		WithArgs(3, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO credit_transactions").
		WithArgs(tx.ID, tx.UserID, tx.Amount, tx.Type, tx.Description, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	repo := &PGRepo{DB: db}
	if err := repo.Debit(context.Background(), tx); err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDebitInsufficientLeavesLedgerUntouched(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	tx := Transaction{
		ID:          "tx-1",
		UserID:      "user-1",
		Amount:      -6,
		Type:        TxDeduction,
		Description: "numerology analysis",
		CreatedAt:   time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts").
		WithArgs(6, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT credits FROM accounts").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"credits"}).AddRow(5))
	mock.ExpectRollback()

	repo := &PGRepo{DB: db}
	err = repo.Debit(context.Background(), tx)

	var insufficient *InsufficientCreditsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientCreditsError, got %v", err)
	}
	if insufficient.Required != 6 || insufficient.Available != 5 {
		t.Fatalf("expected required=6 available=5, got %+v", insufficient)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreditUpsertsAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	tx := Transaction{
		ID:          "tx-2",
		UserID:      "user-1",
		Amount:      10,
		Type:        TxPurchase,
		Description: "top-up",
		CreatedAt:   time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO accounts").
		WithArgs("user-1", 10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO credit_transactions").
		WithArgs(tx.ID, tx.UserID, tx.Amount, tx.Type, tx.Description, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	repo := &PGRepo{DB: db}
	if err := repo.Credit(context.Background(), tx); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoBalanceMissingAccountReadsZero(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT credits FROM accounts").
		WithArgs("user-unknown").
		WillReturnRows(sqlmock.NewRows([]string{"credits"}))

	repo := &PGRepo{DB: db}
	balance, err := repo.Balance(context.Background(), "user-unknown")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if balance != 0 {
		t.Fatalf("expected balance 0, got %d", balance)
	}
}
