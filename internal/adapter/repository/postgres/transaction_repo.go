package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bankledger/bankledger/internal/domain"
	"github.com/bankledger/bankledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const createTransactionQuery = `
INSERT INTO transactions (type, from_account_number, to_account_number, amount, date)
VALUES ($1, $2, $3, $4, $5)
RETURNING transaction_id`

// Create inserts a transaction record inside the given store transaction
// and fills in the assigned transaction ID.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Tx, txn *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	return pgxTx.QueryRow(ctx, createTransactionQuery,
		string(txn.Type),
		txn.FromAccountNumber,
		txn.ToAccountNumber,
		decimalToNumeric(txn.Amount),
		timeToPgTimestamptz(txn.Date),
	).Scan(&txn.TransactionID)
}

const getTransactionQuery = `
SELECT transaction_id, type, from_account_number, to_account_number, amount, date
FROM transactions
WHERE transaction_id = $1`

// GetByID retrieves a transaction record by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	return scanTransaction(r.pool.QueryRow(ctx, getTransactionQuery, id))
}

const listTransactionsByAccountQuery = `
SELECT transaction_id, type, from_account_number, to_account_number, amount, date
FROM transactions
WHERE from_account_number = $1 OR to_account_number = $1
ORDER BY transaction_id
LIMIT $2 OFFSET $3`

// ListByAccount lists transactions where the account appears on either
// side, oldest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountNumber int64, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, listTransactionsByAccountQuery, accountNumber, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]*domain.Transaction, 0, limit)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn      domain.Transaction
		typeName string
		amount   pgtype.Numeric
		date     pgtype.Timestamptz
	)

	err := row.Scan(&txn.TransactionID, &typeName, &txn.FromAccountNumber, &txn.ToAccountNumber, &amount, &date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	txn.Type = domain.TransactionType(typeName)
	txn.Amount = numericToDecimal(amount)
	txn.Date = date.Time

	return &txn, nil
}
