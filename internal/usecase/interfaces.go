package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankledger/bankledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	// Create persists a new account and fills in the storage-assigned
	// account number.
	Create(ctx context.Context, account *domain.Account) error
	GetByNumber(ctx context.Context, number int64) (*domain.Account, error)
	GetByNumberForUpdate(ctx context.Context, tx Tx, number int64) (*domain.Account, error)
	GetByNumbersForUpdate(ctx context.Context, tx Tx, numbers []int64) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Tx, number int64, balance decimal.Decimal) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// TransactionRepository defines data access for transaction records.
type TransactionRepository interface {
	// Create persists a new transaction record inside tx and fills in the
	// storage-assigned transaction ID.
	Create(ctx context.Context, tx Tx, txn *domain.Transaction) error
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)
	ListByAccount(ctx context.Context, accountNumber int64, limit, offset int) ([]*domain.Transaction, error)
}

// Tx represents a database transaction scoped to one ledger operation:
// the balance update(s) and the transaction insert commit together or
// not at all.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxManager handles transaction lifecycle.
type TxManager interface {
	Begin(ctx context.Context) (Tx, error)
}

// Retrier re-runs an operation when the store reports a transient
// conflict (deadlock, serialization failure).
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	// Get returns (nil, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
