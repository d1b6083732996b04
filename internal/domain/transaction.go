package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType identifies the kind of balance mutation a transaction
// recorded.
type TransactionType string

const (
	TypeDeposit  TransactionType = "deposit"
	TypeWithdraw TransactionType = "withdraw"
	TypeTransfer TransactionType = "transfer"
)

// Transaction is the immutable record of a single balance mutation.
// FromAccountNumber is nil for deposits, ToAccountNumber is nil for
// withdrawals. Accounts are referenced by number, never embedded.
type Transaction struct {
	TransactionID     int64
	Type              TransactionType
	FromAccountNumber *int64
	ToAccountNumber   *int64
	Amount            decimal.Decimal
	Date              time.Time
}

// Validate checks the record's internal consistency: a positive amount
// and the participants its type requires.
func (t *Transaction) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	switch t.Type {
	case TypeDeposit:
		if t.ToAccountNumber == nil {
			return ErrAccountNotFound
		}
	case TypeWithdraw:
		if t.FromAccountNumber == nil {
			return ErrAccountNotFound
		}
	case TypeTransfer:
		if t.FromAccountNumber == nil || t.ToAccountNumber == nil {
			return ErrAccountNotFound
		}
	}

	return nil
}
