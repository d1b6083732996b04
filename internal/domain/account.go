package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a ledger account holding a non-negative balance.
// AccountNumber is assigned by storage on creation and never reused.
// Balance is the only field that changes after creation.
type Account struct {
	AccountNumber int64
	Name          string
	Balance       decimal.Decimal
	CreatedAt     time.Time
}

// ValidateDebit checks if the account holds enough funds to be debited
// by amount. Balances never go negative.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if amount.GreaterThan(a.Balance) {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDebit returns the balance after a debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns the balance after a credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}
