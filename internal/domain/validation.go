package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxAccountNameLength = 100
	MinAccountNameLength = 1
)

// ValidateAccountName validates an account display name.
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinAccountNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if len(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	return nil
}

// ValidateAmount validates a deposit/withdraw/transfer amount: strictly
// positive with at most two decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: %s", ErrInvalidPrecision, amount)
	}

	return nil
}

// ValidateInitialBalance validates the opening balance of a new account:
// non-negative with at most two decimal places.
func ValidateInitialBalance(balance decimal.Decimal) error {
	if balance.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeInitialBalance, balance)
	}

	if !balance.Equal(balance.Round(2)) {
		return fmt.Errorf("%w: %s", ErrInvalidPrecision, balance)
	}

	return nil
}
