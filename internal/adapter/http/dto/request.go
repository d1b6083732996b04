package dto

import (
	"github.com/shopspring/decimal"

	"github.com/bankledger/bankledger/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name           string          `json:"name"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Name:           r.Name,
		InitialBalance: r.InitialBalance,
	}
}

// DepositRequest represents a request to deposit into an account.
type DepositRequest struct {
	ToAccountNumber int64           `json:"to_account_number"`
	Amount          decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *DepositRequest) ToUseCaseInput() usecase.DepositInput {
	return usecase.DepositInput{
		ToAccountNumber: r.ToAccountNumber,
		Amount:          r.Amount,
	}
}

// WithdrawRequest represents a request to withdraw from an account.
type WithdrawRequest struct {
	FromAccountNumber int64           `json:"from_account_number"`
	Amount            decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *WithdrawRequest) ToUseCaseInput() usecase.WithdrawInput {
	return usecase.WithdrawInput{
		FromAccountNumber: r.FromAccountNumber,
		Amount:            r.Amount,
	}
}

// TransferRequest represents a request to transfer between accounts.
type TransferRequest struct {
	FromAccountNumber int64           `json:"from_account_number"`
	ToAccountNumber   int64           `json:"to_account_number"`
	Amount            decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput() usecase.TransferInput {
	return usecase.TransferInput{
		FromAccountNumber: r.FromAccountNumber,
		ToAccountNumber:   r.ToAccountNumber,
		Amount:            r.Amount,
	}
}
