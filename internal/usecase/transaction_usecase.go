package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankledger/bankledger/internal/domain"
)

// TransactionUseCase processes balance mutations. Each operation runs as
// a single atomic unit: the balance update(s) and the transaction record
// are persisted together or not at all. Per-account serialization comes
// from row locks taken inside the store transaction; transient lock
// conflicts are retried through the Retrier.
type TransactionUseCase struct {
	txManager       TxManager
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	retrier         Retrier
	cache           Cache
}

// NewTransactionUseCase creates a new TransactionUseCase. cache may be
// nil to disable transaction record caching.
func NewTransactionUseCase(
	txManager TxManager,
	accountRepo AccountRepository,
	transactionRepo TransactionRepository,
	retrier Retrier,
	cache Cache,
) *TransactionUseCase {
	return &TransactionUseCase{
		txManager:       txManager,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		retrier:         retrier,
		cache:           cache,
	}
}

// DepositInput represents input for a deposit.
type DepositInput struct {
	ToAccountNumber int64
	Amount          decimal.Decimal
}

// Deposit credits the target account and records the transaction.
func (uc *TransactionUseCase) Deposit(ctx context.Context, input DepositInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	var txn *domain.Transaction

	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}
		defer tx.Rollback(ctx)

		account, err := uc.accountRepo.GetByNumberForUpdate(ctx, tx, input.ToAccountNumber)
		if err != nil {
			return err
		}

		txn = &domain.Transaction{
			Type:            domain.TypeDeposit,
			ToAccountNumber: &input.ToAccountNumber,
			Amount:          input.Amount,
			Date:            time.Now().UTC(),
		}

		err = uc.accountRepo.UpdateBalance(ctx, tx, account.AccountNumber, account.ApplyCredit(input.Amount))
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}

		err = uc.transactionRepo.Create(ctx, tx, txn)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return txn, nil
}

// WithdrawInput represents input for a withdrawal.
type WithdrawInput struct {
	FromAccountNumber int64
	Amount            decimal.Decimal
}

// Withdraw debits the source account and records the transaction. The
// amount may equal the balance exactly; exceeding it is rejected with
// no mutation.
func (uc *TransactionUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	var txn *domain.Transaction

	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}
		defer tx.Rollback(ctx)

		account, err := uc.accountRepo.GetByNumberForUpdate(ctx, tx, input.FromAccountNumber)
		if err != nil {
			return err
		}

		if err := account.ValidateDebit(input.Amount); err != nil {
			return err
		}

		txn = &domain.Transaction{
			Type:              domain.TypeWithdraw,
			FromAccountNumber: &input.FromAccountNumber,
			Amount:            input.Amount,
			Date:              time.Now().UTC(),
		}

		err = uc.accountRepo.UpdateBalance(ctx, tx, account.AccountNumber, account.ApplyDebit(input.Amount))
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}

		err = uc.transactionRepo.Create(ctx, tx, txn)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return txn, nil
}

// TransferInput represents input for a transfer between two accounts.
type TransferInput struct {
	FromAccountNumber int64
	ToAccountNumber   int64
	Amount            decimal.Decimal
}

// Transfer moves the amount between two accounts. Both account rows are
// locked in ascending account-number order (deadlock prevention). A
// self-transfer is legal and leaves the balance untouched; only the
// record is written.
func (uc *TransactionUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	var txn *domain.Transaction

	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}
		defer tx.Rollback(ctx)

		numbers := uniqueSorted(input.FromAccountNumber, input.ToAccountNumber)

		accounts, err := uc.accountRepo.GetByNumbersForUpdate(ctx, tx, numbers)
		if err != nil {
			return err
		}

		if len(accounts) != len(numbers) {
			return domain.ErrAccountNotFound
		}

		byNumber := make(map[int64]*domain.Account, len(accounts))
		for _, a := range accounts {
			byNumber[a.AccountNumber] = a
		}

		fromAccount := byNumber[input.FromAccountNumber]
		toAccount := byNumber[input.ToAccountNumber]

		if fromAccount == nil || toAccount == nil {
			return domain.ErrAccountNotFound
		}

		if err := fromAccount.ValidateDebit(input.Amount); err != nil {
			return err
		}

		txn = &domain.Transaction{
			Type:              domain.TypeTransfer,
			FromAccountNumber: &input.FromAccountNumber,
			ToAccountNumber:   &input.ToAccountNumber,
			Amount:            input.Amount,
			Date:              time.Now().UTC(),
		}

		// Self-transfer: no net balance effect, only the record.
		if input.FromAccountNumber != input.ToAccountNumber {
			err = uc.accountRepo.UpdateBalance(ctx, tx, fromAccount.AccountNumber, fromAccount.ApplyDebit(input.Amount))
			if err != nil {
				return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
			}

			err = uc.accountRepo.UpdateBalance(ctx, tx, toAccount.AccountNumber, toAccount.ApplyCredit(input.Amount))
			if err != nil {
				return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
			}
		}

		err = uc.transactionRepo.Create(ctx, tx, txn)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return txn, nil
}

// GetTransaction retrieves a transaction record by ID. Records are
// immutable, so lookups go through the cache when one is configured.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	key := fmt.Sprintf("transaction:%d", id)

	if uc.cache != nil {
		if data, err := uc.cache.Get(ctx, key); err == nil && data != nil {
			var txn domain.Transaction
			if err := json.Unmarshal(data, &txn); err == nil {
				return &txn, nil
			}
		}
	}

	txn, err := uc.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if data, err := json.Marshal(txn); err == nil {
			_ = uc.cache.Set(ctx, key, data, transactionCacheTTL)
		}
	}

	return txn, nil
}

// ListTransactionsByAccountInput represents input for listing an
// account's transactions.
type ListTransactionsByAccountInput struct {
	AccountNumber int64
	Limit         int
	Offset        int
}

// ListTransactionsByAccount lists transactions touching an account.
func (uc *TransactionUseCase) ListTransactionsByAccount(ctx context.Context, input ListTransactionsByAccountInput) ([]*domain.Transaction, error) {
	if input.Limit <= 0 {
		input.Limit = defaultPageSize
	}

	if input.Limit > maxPageSize {
		input.Limit = maxPageSize
	}

	if input.Offset < 0 {
		input.Offset = 0
	}

	return uc.transactionRepo.ListByAccount(ctx, input.AccountNumber, input.Limit, input.Offset)
}

func uniqueSorted(numbers ...int64) []int64 {
	seen := make(map[int64]bool, len(numbers))

	var out []int64
	for _, n := range numbers {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}
