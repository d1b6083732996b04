package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/bankledger/bankledger/internal/adapter/http/dto"
	"github.com/bankledger/bankledger/internal/domain"
	"github.com/bankledger/bankledger/internal/infrastructure/metrics"
	"github.com/bankledger/bankledger/internal/usecase"
)

type transactionServiceStub struct {
	depositFn  func(ctx context.Context, input usecase.DepositInput) (*domain.Transaction, error)
	withdrawFn func(ctx context.Context, input usecase.WithdrawInput) (*domain.Transaction, error)
	transferFn func(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error)
	getFn      func(ctx context.Context, id int64) (*domain.Transaction, error)
	listFn     func(ctx context.Context, input usecase.ListTransactionsByAccountInput) ([]*domain.Transaction, error)
}

func (s *transactionServiceStub) Deposit(ctx context.Context, input usecase.DepositInput) (*domain.Transaction, error) {
	return s.depositFn(ctx, input)
}

func (s *transactionServiceStub) Withdraw(ctx context.Context, input usecase.WithdrawInput) (*domain.Transaction, error) {
	return s.withdrawFn(ctx, input)
}

func (s *transactionServiceStub) Transfer(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error) {
	return s.transferFn(ctx, input)
}

func (s *transactionServiceStub) GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	return s.getFn(ctx, id)
}

func (s *transactionServiceStub) ListTransactionsByAccount(ctx context.Context, input usecase.ListTransactionsByAccountInput) ([]*domain.Transaction, error) {
	return s.listFn(ctx, input)
}

func TestTransactionHandler_Deposit_Success(t *testing.T) {
	to := int64(1)
	txn := &domain.Transaction{
		TransactionID:   10,
		Type:            domain.TypeDeposit,
		ToAccountNumber: &to,
		Amount:          decimal.NewFromInt(100),
	}

	m := metrics.New(prometheus.NewRegistry())
	handler := NewTransactionHandler(&transactionServiceStub{
		depositFn: func(ctx context.Context, input usecase.DepositInput) (*domain.Transaction, error) {
			return txn, nil
		},
	}, m)

	body, _ := json.Marshal(dto.DepositRequest{ToAccountNumber: 1, Amount: decimal.NewFromInt(100)})
	req := httptest.NewRequest(http.MethodPost, "/transactions/deposit", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Deposit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TransactionID != 10 || resp.Type != "deposit" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.FromAccountNumber != nil {
		t.Fatalf("expected no source account on a deposit, got %v", *resp.FromAccountNumber)
	}

	if got := testutil.ToFloat64(m.TransactionsProcessed.WithLabelValues("deposit", "ok")); got != 1 {
		t.Fatalf("expected deposit counter at 1, got %v", got)
	}
}

func TestTransactionHandler_Withdraw_InsufficientFunds(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		withdrawFn: func(ctx context.Context, input usecase.WithdrawInput) (*domain.Transaction, error) {
			return nil, domain.ErrInsufficientFunds
		},
	}, nil)

	body, _ := json.Marshal(dto.WithdrawRequest{FromAccountNumber: 1, Amount: decimal.NewFromInt(100)})
	req := httptest.NewRequest(http.MethodPost, "/transactions/withdraw", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Withdraw(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestTransactionHandler_Transfer_Success(t *testing.T) {
	from, to := int64(1), int64(2)
	handler := NewTransactionHandler(&transactionServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error) {
			return &domain.Transaction{
				TransactionID:     11,
				Type:              domain.TypeTransfer,
				FromAccountNumber: &from,
				ToAccountNumber:   &to,
				Amount:            input.Amount,
			}, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.TransferRequest{FromAccountNumber: 1, ToAccountNumber: 2, Amount: decimal.NewFromInt(50)})
	req := httptest.NewRequest(http.MethodPost, "/transactions/transfer", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Transfer(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTransactionHandler_Transfer_UnknownAccount(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error) {
			return nil, domain.ErrAccountNotFound
		},
	}, nil)

	body, _ := json.Marshal(dto.TransferRequest{FromAccountNumber: 1, ToAccountNumber: 99, Amount: decimal.NewFromInt(50)})
	req := httptest.NewRequest(http.MethodPost, "/transactions/transfer", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Transfer(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTransactionHandler_Get(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		getFn: func(ctx context.Context, id int64) (*domain.Transaction, error) {
			if id != 5 {
				t.Fatalf("expected id 5, got %d", id)
			}
			return &domain.Transaction{TransactionID: 5, Type: domain.TypeDeposit}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/transactions/5", nil)
	req = setChiURLParam(req, "id", "5")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTransactionHandler_Get_NotFound(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		getFn: func(ctx context.Context, id int64) (*domain.Transaction, error) {
			return nil, domain.ErrTransactionNotFound
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/transactions/99", nil)
	req = setChiURLParam(req, "id", "99")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTransactionHandler_ListByAccount(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		listFn: func(ctx context.Context, input usecase.ListTransactionsByAccountInput) ([]*domain.Transaction, error) {
			if input.AccountNumber != 3 {
				t.Fatalf("expected account 3, got %d", input.AccountNumber)
			}
			return []*domain.Transaction{{TransactionID: 1}, {TransactionID: 2}}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/accounts/3/transactions", nil)
	req = setChiURLParam(req, "number", "3")
	rec := httptest.NewRecorder()

	handler.ListByAccount(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListTransactionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(resp.Transactions))
	}
}
