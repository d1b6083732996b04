package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bankledger/bankledger/internal/domain"
)

func TestAccount_ValidateDebit(t *testing.T) {
	tests := []struct {
		name    string
		balance decimal.Decimal
		amount  decimal.Decimal
		wantErr error
	}{
		{
			name:    "amount below balance",
			balance: decimal.NewFromInt(1000),
			amount:  decimal.NewFromInt(600),
			wantErr: nil,
		},
		{
			name:    "amount equals balance leaves zero",
			balance: decimal.NewFromInt(500),
			amount:  decimal.NewFromInt(500),
			wantErr: nil,
		},
		{
			name:    "amount exceeds balance",
			balance: decimal.NewFromInt(500),
			amount:  decimal.NewFromInt(600),
			wantErr: domain.ErrInsufficientFunds,
		},
		{
			name:    "fractional amount exceeds balance by one cent",
			balance: decimal.RequireFromString("10.00"),
			amount:  decimal.RequireFromString("10.01"),
			wantErr: domain.ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := &domain.Account{AccountNumber: 1, Name: "test", Balance: tt.balance}

			err := account.ValidateDebit(tt.amount)
			if err != tt.wantErr {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAccount_ApplyDebitCredit(t *testing.T) {
	account := &domain.Account{Balance: decimal.NewFromInt(1000)}

	debited := account.ApplyDebit(decimal.NewFromInt(300))
	if !debited.Equal(decimal.NewFromInt(700)) {
		t.Errorf("expected 700 after debit, got %s", debited)
	}

	credited := account.ApplyCredit(decimal.NewFromInt(500))
	if !credited.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("expected 1500 after credit, got %s", credited)
	}

	// Applying never mutates the account itself.
	if !account.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected balance unchanged, got %s", account.Balance)
	}
}
