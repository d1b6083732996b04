package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bankledger/bankledger/internal/domain"
	"github.com/bankledger/bankledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const createAccountQuery = `
INSERT INTO accounts (name, balance, created_at)
VALUES ($1, $2, $3)
RETURNING account_number`

// Create inserts a new account and fills in the assigned account number.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	return r.pool.QueryRow(ctx, createAccountQuery,
		account.Name,
		decimalToNumeric(account.Balance),
		timeToPgTimestamptz(account.CreatedAt),
	).Scan(&account.AccountNumber)
}

const getAccountQuery = `
SELECT account_number, name, balance, created_at
FROM accounts
WHERE account_number = $1`

// GetByNumber retrieves an account by its number.
func (r *AccountRepository) GetByNumber(ctx context.Context, number int64) (*domain.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, getAccountQuery, number))
}

const getAccountForUpdateQuery = getAccountQuery + `
FOR UPDATE`

// GetByNumberForUpdate retrieves an account with a FOR UPDATE row lock.
func (r *AccountRepository) GetByNumberForUpdate(ctx context.Context, tx usecase.Tx, number int64) (*domain.Account, error) {
	pgxTx := tx.(*Tx).PgxTx()

	return scanAccount(pgxTx.QueryRow(ctx, getAccountForUpdateQuery, number))
}

const getAccountsForUpdateQuery = `
SELECT account_number, name, balance, created_at
FROM accounts
WHERE account_number = ANY($1::bigint[])
ORDER BY account_number
FOR UPDATE`

// GetByNumbersForUpdate retrieves multiple accounts with FOR UPDATE row
// locks, in ascending account-number order so concurrent transfers
// acquire locks in the same order.
func (r *AccountRepository) GetByNumbersForUpdate(ctx context.Context, tx usecase.Tx, numbers []int64) ([]*domain.Account, error) {
	pgxTx := tx.(*Tx).PgxTx()

	rows, err := pgxTx.Query(ctx, getAccountsForUpdateQuery, numbers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

const updateBalanceQuery = `
UPDATE accounts
SET balance = $2
WHERE account_number = $1`

// UpdateBalance sets the balance of an account inside the transaction.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Tx, number int64, balance decimal.Decimal) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, updateBalanceQuery, number, decimalToNumeric(balance))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

const listAccountsQuery = `
SELECT account_number, name, balance, created_at
FROM accounts
ORDER BY account_number
LIMIT $1 OFFSET $2`

// List lists accounts in creation order with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, listAccountsQuery, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]*domain.Account, 0, limit)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account   domain.Account
		balance   pgtype.Numeric
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(&account.AccountNumber, &account.Name, &balance, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	account.Balance = numericToDecimal(balance)
	account.CreatedAt = createdAt.Time

	return &account, nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
