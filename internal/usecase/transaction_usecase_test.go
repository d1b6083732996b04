package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/bankledger/bankledger/internal/domain"
	"github.com/bankledger/bankledger/internal/usecase"
	"github.com/bankledger/bankledger/internal/usecase/mocks"
)

type transactionFixture struct {
	accountRepo     *mocks.MockAccountRepository
	transactionRepo *mocks.MockTransactionRepository
	txManager       *mocks.MockTxManager
	uc              *usecase.TransactionUseCase
}

func newTransactionFixture() *transactionFixture {
	f := &transactionFixture{
		accountRepo:     mocks.NewMockAccountRepository(),
		transactionRepo: mocks.NewMockTransactionRepository(),
		txManager:       mocks.NewMockTxManager(),
	}
	f.uc = usecase.NewTransactionUseCase(f.txManager, f.accountRepo, f.transactionRepo, mocks.NewMockRetrier(), nil)
	return f
}

func (f *transactionFixture) seed(number int64, balance int64) {
	f.accountRepo.Seed(&domain.Account{
		AccountNumber: number,
		Name:          "account",
		Balance:       decimal.NewFromInt(balance),
	})
}

func TestTransactionUseCase_Deposit(t *testing.T) {
	tests := []struct {
		name        string
		account     int64
		amount      decimal.Decimal
		expectError bool
		errorType   error
		wantBalance decimal.Decimal
	}{
		{
			name:        "successful deposit",
			account:     1,
			amount:      decimal.RequireFromString("250.50"),
			wantBalance: decimal.RequireFromString("1250.50"),
		},
		{
			name:        "reject zero amount",
			account:     1,
			amount:      decimal.Zero,
			expectError: true,
			errorType:   domain.ErrInvalidAmount,
		},
		{
			name:        "reject negative amount",
			account:     1,
			amount:      decimal.NewFromInt(-10),
			expectError: true,
			errorType:   domain.ErrInvalidAmount,
		},
		{
			name:        "reject sub-cent amount",
			account:     1,
			amount:      decimal.RequireFromString("0.001"),
			expectError: true,
			errorType:   domain.ErrInvalidPrecision,
		},
		{
			name:        "reject unknown account",
			account:     42,
			amount:      decimal.NewFromInt(10),
			expectError: true,
			errorType:   domain.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTransactionFixture()
			f.seed(1, 1000)

			txn, err := f.uc.Deposit(context.Background(), usecase.DepositInput{
				ToAccountNumber: tt.account,
				Amount:          tt.amount,
			})

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, tt.errorType) {
					t.Errorf("expected error %v, got %v", tt.errorType, err)
				}
				if f.transactionRepo.Count() != 0 {
					t.Errorf("expected no transaction record, got %d", f.transactionRepo.Count())
				}
				if !f.accountRepo.Balance(1).Equal(decimal.NewFromInt(1000)) {
					t.Errorf("expected balance untouched, got %s", f.accountRepo.Balance(1))
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if txn.TransactionID == 0 {
				t.Error("expected assigned transaction id, got 0")
			}
			if txn.Type != domain.TypeDeposit {
				t.Errorf("expected type %q, got %q", domain.TypeDeposit, txn.Type)
			}
			if txn.ToAccountNumber == nil || *txn.ToAccountNumber != tt.account {
				t.Error("expected ToAccountNumber to be set")
			}
			if txn.FromAccountNumber != nil {
				t.Error("expected FromAccountNumber to be nil for a deposit")
			}
			if !f.accountRepo.Balance(tt.account).Equal(tt.wantBalance) {
				t.Errorf("expected balance %s, got %s", tt.wantBalance, f.accountRepo.Balance(tt.account))
			}
			if f.transactionRepo.Count() != 1 {
				t.Errorf("expected 1 transaction record, got %d", f.transactionRepo.Count())
			}
		})
	}
}

func TestTransactionUseCase_Withdraw(t *testing.T) {
	tests := []struct {
		name        string
		account     int64
		amount      decimal.Decimal
		expectError bool
		errorType   error
		wantBalance decimal.Decimal
	}{
		{
			name:        "successful withdrawal",
			account:     1,
			amount:      decimal.NewFromInt(300),
			wantBalance: decimal.NewFromInt(700),
		},
		{
			name:        "withdraw the exact balance",
			account:     1,
			amount:      decimal.NewFromInt(1000),
			wantBalance: decimal.Zero,
		},
		{
			name:        "reject insufficient funds",
			account:     1,
			amount:      decimal.RequireFromString("1000.01"),
			expectError: true,
			errorType:   domain.ErrInsufficientFunds,
		},
		{
			name:        "reject zero amount",
			account:     1,
			amount:      decimal.Zero,
			expectError: true,
			errorType:   domain.ErrInvalidAmount,
		},
		{
			name:        "reject unknown account",
			account:     42,
			amount:      decimal.NewFromInt(10),
			expectError: true,
			errorType:   domain.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTransactionFixture()
			f.seed(1, 1000)

			txn, err := f.uc.Withdraw(context.Background(), usecase.WithdrawInput{
				FromAccountNumber: tt.account,
				Amount:            tt.amount,
			})

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, tt.errorType) {
					t.Errorf("expected error %v, got %v", tt.errorType, err)
				}
				// A rejected withdrawal leaves no trace.
				if f.transactionRepo.Count() != 0 {
					t.Errorf("expected no transaction record, got %d", f.transactionRepo.Count())
				}
				if !f.accountRepo.Balance(1).Equal(decimal.NewFromInt(1000)) {
					t.Errorf("expected balance untouched, got %s", f.accountRepo.Balance(1))
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if txn.Type != domain.TypeWithdraw {
				t.Errorf("expected type %q, got %q", domain.TypeWithdraw, txn.Type)
			}
			if txn.FromAccountNumber == nil || *txn.FromAccountNumber != tt.account {
				t.Error("expected FromAccountNumber to be set")
			}
			if txn.ToAccountNumber != nil {
				t.Error("expected ToAccountNumber to be nil for a withdrawal")
			}
			if !f.accountRepo.Balance(tt.account).Equal(tt.wantBalance) {
				t.Errorf("expected balance %s, got %s", tt.wantBalance, f.accountRepo.Balance(tt.account))
			}
			if f.transactionRepo.Count() != 1 {
				t.Errorf("expected 1 transaction record, got %d", f.transactionRepo.Count())
			}
		})
	}
}

func TestTransactionUseCase_Transfer(t *testing.T) {
	tests := []struct {
		name        string
		from, to    int64
		amount      decimal.Decimal
		expectError bool
		errorType   error
		wantFrom    decimal.Decimal
		wantTo      decimal.Decimal
	}{
		{
			name:     "successful transfer",
			from:     1,
			to:       2,
			amount:   decimal.NewFromInt(400),
			wantFrom: decimal.NewFromInt(600),
			wantTo:   decimal.NewFromInt(900),
		},
		{
			name:     "transfer the exact balance",
			from:     1,
			to:       2,
			amount:   decimal.NewFromInt(1000),
			wantFrom: decimal.Zero,
			wantTo:   decimal.NewFromInt(1500),
		},
		{
			name:        "reject insufficient funds",
			from:        1,
			to:          2,
			amount:      decimal.NewFromInt(1001),
			expectError: true,
			errorType:   domain.ErrInsufficientFunds,
		},
		{
			name:        "reject unknown source account",
			from:        42,
			to:          2,
			amount:      decimal.NewFromInt(10),
			expectError: true,
			errorType:   domain.ErrAccountNotFound,
		},
		{
			name:        "reject unknown destination account",
			from:        1,
			to:          42,
			amount:      decimal.NewFromInt(10),
			expectError: true,
			errorType:   domain.ErrAccountNotFound,
		},
		{
			name:        "reject zero amount",
			from:        1,
			to:          2,
			amount:      decimal.Zero,
			expectError: true,
			errorType:   domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTransactionFixture()
			f.seed(1, 1000)
			f.seed(2, 500)

			txn, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
				FromAccountNumber: tt.from,
				ToAccountNumber:   tt.to,
				Amount:            tt.amount,
			})

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, tt.errorType) {
					t.Errorf("expected error %v, got %v", tt.errorType, err)
				}
				// Neither leg may land on a rejected transfer.
				if f.transactionRepo.Count() != 0 {
					t.Errorf("expected no transaction record, got %d", f.transactionRepo.Count())
				}
				if !f.accountRepo.Balance(1).Equal(decimal.NewFromInt(1000)) {
					t.Errorf("expected source balance untouched, got %s", f.accountRepo.Balance(1))
				}
				if !f.accountRepo.Balance(2).Equal(decimal.NewFromInt(500)) {
					t.Errorf("expected destination balance untouched, got %s", f.accountRepo.Balance(2))
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if txn.Type != domain.TypeTransfer {
				t.Errorf("expected type %q, got %q", domain.TypeTransfer, txn.Type)
			}
			if txn.FromAccountNumber == nil || txn.ToAccountNumber == nil {
				t.Fatal("expected both participants on the record")
			}
			if !f.accountRepo.Balance(tt.from).Equal(tt.wantFrom) {
				t.Errorf("expected source balance %s, got %s", tt.wantFrom, f.accountRepo.Balance(tt.from))
			}
			if !f.accountRepo.Balance(tt.to).Equal(tt.wantTo) {
				t.Errorf("expected destination balance %s, got %s", tt.wantTo, f.accountRepo.Balance(tt.to))
			}
			if f.transactionRepo.Count() != 1 {
				t.Errorf("expected 1 transaction record, got %d", f.transactionRepo.Count())
			}
		})
	}
}

func TestTransactionUseCase_Transfer_SelfTransfer(t *testing.T) {
	f := newTransactionFixture()
	f.seed(1, 1000)

	txn, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
		FromAccountNumber: 1,
		ToAccountNumber:   1,
		Amount:            decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !f.accountRepo.Balance(1).Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected balance untouched, got %s", f.accountRepo.Balance(1))
	}
	if f.transactionRepo.Count() != 1 {
		t.Errorf("expected 1 transaction record, got %d", f.transactionRepo.Count())
	}
	if txn.FromAccountNumber == nil || txn.ToAccountNumber == nil || *txn.FromAccountNumber != *txn.ToAccountNumber {
		t.Error("expected both sides of the record to name the same account")
	}

	t.Run("self-transfer still checks funds", func(t *testing.T) {
		_, err := f.uc.Transfer(context.Background(), usecase.TransferInput{
			FromAccountNumber: 1,
			ToAccountNumber:   1,
			Amount:            decimal.NewFromInt(5000),
		})
		if !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Errorf("expected ErrInsufficientFunds, got %v", err)
		}
	})
}

// Two simultaneous withdrawals that each fit the balance alone but not
// together: exactly one commits, the other is rejected for insufficient
// funds, and exactly one record is written.
func TestTransactionUseCase_Withdraw_Concurrent(t *testing.T) {
	f := newTransactionFixture()
	f.seed(1, 1000)

	var wg sync.WaitGroup
	errs := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Withdraw(context.Background(), usecase.WithdrawInput{
				FromAccountNumber: 1,
				Amount:            decimal.NewFromInt(600),
			})
		}(i)
	}
	wg.Wait()

	var succeeded, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInsufficientFunds):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != 1 || insufficient != 1 {
		t.Fatalf("expected exactly one success and one rejection, got %d/%d", succeeded, insufficient)
	}
	if !f.accountRepo.Balance(1).Equal(decimal.NewFromInt(400)) {
		t.Errorf("expected balance 400, got %s", f.accountRepo.Balance(1))
	}
	if f.transactionRepo.Count() != 1 {
		t.Errorf("expected 1 transaction record, got %d", f.transactionRepo.Count())
	}
}

func TestTransactionUseCase_Deposit_RollsBackOnRecordFailure(t *testing.T) {
	f := newTransactionFixture()
	f.seed(1, 1000)

	f.transactionRepo.CreateFunc = func(ctx context.Context, tx usecase.Tx, txn *domain.Transaction) error {
		return errors.New("write failed")
	}

	_, err := f.uc.Deposit(context.Background(), usecase.DepositInput{
		ToAccountNumber: 1,
		Amount:          decimal.NewFromInt(100),
	})
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestTransactionUseCase_GetTransaction(t *testing.T) {
	f := newTransactionFixture()
	f.seed(1, 1000)

	created, err := f.uc.Deposit(context.Background(), usecase.DepositInput{
		ToAccountNumber: 1,
		Amount:          decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("get existing transaction", func(t *testing.T) {
		txn, err := f.uc.GetTransaction(context.Background(), created.TransactionID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if txn.TransactionID != created.TransactionID {
			t.Errorf("expected id %d, got %d", created.TransactionID, txn.TransactionID)
		}
		if !txn.Amount.Equal(created.Amount) {
			t.Errorf("expected amount %s, got %s", created.Amount, txn.Amount)
		}
	})

	t.Run("get non-existent transaction", func(t *testing.T) {
		_, err := f.uc.GetTransaction(context.Background(), 999)
		if !errors.Is(err, domain.ErrTransactionNotFound) {
			t.Errorf("expected ErrTransactionNotFound, got %v", err)
		}
	})
}

func TestTransactionUseCase_GetTransaction_CacheReadThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cache := mocks.NewGomockCache(ctrl)
	transactionRepo := mocks.NewMockTransactionRepository()

	to := int64(1)
	cached := &domain.Transaction{
		TransactionID:   5,
		Type:            domain.TypeDeposit,
		ToAccountNumber: &to,
		Amount:          decimal.NewFromInt(100),
		Date:            time.Now().UTC(),
	}
	data, _ := json.Marshal(cached)

	// Hit: the repository must not be consulted.
	cache.EXPECT().Get(gomock.Any(), "transaction:5").Return(data, nil)
	transactionRepo.GetByIDFunc = func(ctx context.Context, id int64) (*domain.Transaction, error) {
		t.Fatal("repository consulted on cache hit")
		return nil, nil
	}

	uc := usecase.NewTransactionUseCase(nil, nil, transactionRepo, nil, cache)

	txn, err := uc.GetTransaction(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.TransactionID != 5 {
		t.Errorf("expected id 5, got %d", txn.TransactionID)
	}

	t.Run("miss populates the cache", func(t *testing.T) {
		transactionRepo.GetByIDFunc = nil
		transactionRepo.Create(context.Background(), nil, &domain.Transaction{
			Type:            domain.TypeDeposit,
			ToAccountNumber: &to,
			Amount:          decimal.NewFromInt(50),
			Date:            time.Now().UTC(),
		})

		cache.EXPECT().Get(gomock.Any(), "transaction:1").Return(nil, nil)
		cache.EXPECT().Set(gomock.Any(), "transaction:1", gomock.Any(), gomock.Any()).Return(nil)

		txn, err := uc.GetTransaction(context.Background(), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !txn.Amount.Equal(decimal.NewFromInt(50)) {
			t.Errorf("expected amount 50, got %s", txn.Amount)
		}
	})
}

func TestTransactionUseCase_ListTransactionsByAccount(t *testing.T) {
	f := newTransactionFixture()
	f.seed(1, 1000)
	f.seed(2, 0)
	f.seed(3, 0)

	ctx := context.Background()
	if _, err := f.uc.Deposit(ctx, usecase.DepositInput{ToAccountNumber: 1, Amount: decimal.NewFromInt(10)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.uc.Transfer(ctx, usecase.TransferInput{FromAccountNumber: 1, ToAccountNumber: 2, Amount: decimal.NewFromInt(20)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.uc.Deposit(ctx, usecase.DepositInput{ToAccountNumber: 3, Amount: decimal.NewFromInt(30)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	txns, err := f.uc.ListTransactionsByAccount(ctx, usecase.ListTransactionsByAccountInput{AccountNumber: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions for account 1, got %d", len(txns))
	}

	txns, err = f.uc.ListTransactionsByAccount(ctx, usecase.ListTransactionsByAccountInput{AccountNumber: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 1 || txns[0].Type != domain.TypeTransfer {
		t.Fatalf("expected the transfer for account 2, got %d", len(txns))
	}
}
