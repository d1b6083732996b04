package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound        = errors.New("account not found")
	ErrInvalidAccountName     = errors.New("invalid account name")
	ErrNegativeInitialBalance = errors.New("initial balance must not be negative")

	// Transaction errors
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidPrecision    = errors.New("amount exceeds two decimal places")
	ErrInsufficientFunds   = errors.New("insufficient funds")

	// ErrPersistence marks a failed atomic commit. The caller must assume
	// no state changed and may retry the whole operation.
	ErrPersistence = errors.New("persistence failure")
)
