package balanceservice

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/pg"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

type mocks struct {
	balanceRepo     *MockBalanceRepo
	transactionRepo *MockTransactionRepo
	txManager       *pg.MockTXManager
	metrics         *MockMetrics
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		balanceRepo:     NewMockBalanceRepo(ctrl),
		transactionRepo: NewMockTransactionRepo(ctrl),
		txManager:       pg.NewMockTXManager(ctrl),
		metrics:         NewMockMetrics(ctrl),
	}
	service := New(m.balanceRepo, m.transactionRepo, m.txManager, m.metrics)
	defer ctrl.Finish()
	return service, m
}

func runInTx(m *mocks) {
	m.txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn pg.TransactionalFn) error {
			return fn(ctx)
		})
}

func TestGetBalance(t *testing.T) {
	service, m := NewMock(t)
	tests := []struct {
		name            string
		prepareMock     func()
		expectedBalance int64
		expectedError   error
	}{
		{
			name: "Retrieve balance successfully",
			prepareMock: func() {
				m.balanceRepo.EXPECT().GetUserBalance(gomock.Any(), 1).
					Return(&domain.Balance{UserID: 1, BalanceCents: 2500}, nil)
			},
			expectedBalance: 2500,
		},
		{
			name: "Missing balance row reads as zero",
			prepareMock: func() {
				m.balanceRepo.EXPECT().GetUserBalance(gomock.Any(), 1).Return(nil, nil)
			},
			expectedBalance: 0,
		},
		{
			name: "Error retrieving balance",
			prepareMock: func() {
				m.balanceRepo.EXPECT().GetUserBalance(gomock.Any(), 1).Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			balance, err := service.GetBalance(context.Background(), 1)
			if tt.expectedError != nil {
				assert.EqualError(t, err, tt.expectedError.Error())
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedBalance, balance)
		})
	}
}

func TestCreateBalance(t *testing.T) {
	service, m := NewMock(t)

	m.balanceRepo.EXPECT().CreateUserBalance(gomock.Any(), 1).Return(nil)
	assert.NoError(t, service.CreateBalance(context.Background(), 1))

	m.balanceRepo.EXPECT().CreateUserBalance(gomock.Any(), 2).Return(errors.New("db error"))
	assert.EqualError(t, service.CreateBalance(context.Background(), 2), "db error")
}

func TestAdjustBalance(t *testing.T) {
	service, m := NewMock(t)
	tests := []struct {
		name            string
		delta           int64
		prepareMock     func()
		expectedBalance int64
		expectedError   error
		errorIs         error
	}{
		{
			name:  "Credit is applied and logged",
			delta: 1250,
			prepareMock: func() {
				runInTx(m)
				m.balanceRepo.EXPECT().CreateUserBalance(gomock.Any(), 1).Return(nil)
				m.balanceRepo.EXPECT().GetUserBalanceForUpdate(gomock.Any(), 1).
					Return(&domain.Balance{UserID: 1, BalanceCents: 500}, nil)
				m.balanceRepo.EXPECT().UpdateUserBalance(gomock.Any(), 1, int64(1750)).Return(nil)
				m.transactionRepo.EXPECT().CreateTransaction(gomock.Any(), &domain.BalanceTransaction{
					UserID: 1, AmountCents: 1250, Note: "refund",
				}).Return(&domain.BalanceTransaction{ID: 9}, nil)
			},
			expectedBalance: 1750,
		},
		{
			name:  "Debit down to exactly zero",
			delta: -500,
			prepareMock: func() {
				runInTx(m)
				m.balanceRepo.EXPECT().CreateUserBalance(gomock.Any(), 1).Return(nil)
				m.balanceRepo.EXPECT().GetUserBalanceForUpdate(gomock.Any(), 1).
					Return(&domain.Balance{UserID: 1, BalanceCents: 500}, nil)
				m.balanceRepo.EXPECT().UpdateUserBalance(gomock.Any(), 1, int64(0)).Return(nil)
				m.transactionRepo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).
					Return(&domain.BalanceTransaction{ID: 10}, nil)
			},
			expectedBalance: 0,
		},
		{
			name:  "Debit beyond balance is rejected",
			delta: -501,
			prepareMock: func() {
				runInTx(m)
				m.balanceRepo.EXPECT().CreateUserBalance(gomock.Any(), 1).Return(nil)
				m.balanceRepo.EXPECT().GetUserBalanceForUpdate(gomock.Any(), 1).
					Return(&domain.Balance{UserID: 1, BalanceCents: 500}, nil)
			},
			errorIs: ErrInsufficientFunds,
		},
		{
			name:  "Credit that would overflow the balance is rejected",
			delta: 2,
			prepareMock: func() {
				runInTx(m)
				m.balanceRepo.EXPECT().CreateUserBalance(gomock.Any(), 1).Return(nil)
				m.balanceRepo.EXPECT().GetUserBalanceForUpdate(gomock.Any(), 1).
					Return(&domain.Balance{UserID: 1, BalanceCents: math.MaxInt64 - 1}, nil)
			},
			errorIs: ErrInvalidAmount,
		},
		{
			name:  "Credit up to the int64 ceiling",
			delta: 1,
			prepareMock: func() {
				runInTx(m)
				m.balanceRepo.EXPECT().CreateUserBalance(gomock.Any(), 1).Return(nil)
				m.balanceRepo.EXPECT().GetUserBalanceForUpdate(gomock.Any(), 1).
					Return(&domain.Balance{UserID: 1, BalanceCents: math.MaxInt64 - 1}, nil)
				m.balanceRepo.EXPECT().UpdateUserBalance(gomock.Any(), 1, int64(math.MaxInt64)).Return(nil)
				m.transactionRepo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).
					Return(&domain.BalanceTransaction{ID: 11}, nil)
			},
			expectedBalance: math.MaxInt64,
		},
		{
			name:  "Zero delta returns current balance without writing",
			delta: 0,
			prepareMock: func() {
				m.balanceRepo.EXPECT().GetUserBalance(gomock.Any(), 1).
					Return(&domain.Balance{UserID: 1, BalanceCents: 300}, nil)
			},
			expectedBalance: 300,
		},
		{
			name:  "Transaction log failure aborts the adjustment",
			delta: 100,
			prepareMock: func() {
				runInTx(m)
				m.balanceRepo.EXPECT().CreateUserBalance(gomock.Any(), 1).Return(nil)
				m.balanceRepo.EXPECT().GetUserBalanceForUpdate(gomock.Any(), 1).
					Return(&domain.Balance{UserID: 1, BalanceCents: 0}, nil)
				m.balanceRepo.EXPECT().UpdateUserBalance(gomock.Any(), 1, int64(100)).Return(nil)
				m.transactionRepo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).
					Return(nil, errors.New("insert failed"))
			},
			expectedError: errors.New("insert failed"),
		},
		{
			name:  "Lock query failure",
			delta: 100,
			prepareMock: func() {
				runInTx(m)
				m.balanceRepo.EXPECT().CreateUserBalance(gomock.Any(), 1).Return(nil)
				m.balanceRepo.EXPECT().GetUserBalanceForUpdate(gomock.Any(), 1).
					Return(nil, errors.New("lock timeout"))
			},
			expectedError: errors.New("lock timeout"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			balance, err := service.AdjustBalance(context.Background(), 1, tt.delta, "refund")
			switch {
			case tt.errorIs != nil:
				assert.ErrorIs(t, err, tt.errorIs)
			case tt.expectedError != nil:
				assert.EqualError(t, err, tt.expectedError.Error())
			default:
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedBalance, balance)
			}
		})
	}
}

func TestDeposit(t *testing.T) {
	service, m := NewMock(t)
	tests := []struct {
		name            string
		amount          string
		prepareMock     func()
		expectedBalance int64
		expectedError   error
	}{
		{
			name:   "Deposit dollar amount",
			amount: "$12.50",
			prepareMock: func() {
				runInTx(m)
				m.balanceRepo.EXPECT().CreateUserBalance(gomock.Any(), 1).Return(nil)
				m.balanceRepo.EXPECT().GetUserBalanceForUpdate(gomock.Any(), 1).
					Return(&domain.Balance{UserID: 1, BalanceCents: 0}, nil)
				m.balanceRepo.EXPECT().UpdateUserBalance(gomock.Any(), 1, int64(1250)).Return(nil)
				m.transactionRepo.EXPECT().CreateTransaction(gomock.Any(), &domain.BalanceTransaction{
					UserID: 1, AmountCents: 1250, Note: NoteDeposit,
				}).Return(&domain.BalanceTransaction{ID: 1}, nil)
				m.metrics.EXPECT().ObserveAdjustment(int64(1250))
			},
			expectedBalance: 1250,
		},
		{
			name:          "Zero amount",
			amount:        "0",
			prepareMock:   func() {},
			expectedError: ErrInvalidAmount,
		},
		{
			name:          "Negative amount",
			amount:        "-5",
			prepareMock:   func() {},
			expectedError: ErrInvalidAmount,
		},
		{
			name:          "Not a number",
			amount:        "ten",
			prepareMock:   func() {},
			expectedError: ErrInvalidAmount,
		},
		{
			name:          "Exponent notation",
			amount:        "1e3",
			prepareMock:   func() {},
			expectedError: ErrInvalidAmount,
		},
		{
			name:          "Cents past int64",
			amount:        "200000000000000000",
			prepareMock:   func() {},
			expectedError: ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			balance, err := service.Deposit(context.Background(), 1, tt.amount)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedBalance, balance)
		})
	}
}

func TestWithdraw(t *testing.T) {
	service, m := NewMock(t)
	tests := []struct {
		name            string
		amount          string
		prepareMock     func()
		expectedBalance int64
		expectedError   error
	}{
		{
			name:   "Withdraw within balance",
			amount: "3",
			prepareMock: func() {
				runInTx(m)
				m.balanceRepo.EXPECT().CreateUserBalance(gomock.Any(), 1).Return(nil)
				m.balanceRepo.EXPECT().GetUserBalanceForUpdate(gomock.Any(), 1).
					Return(&domain.Balance{UserID: 1, BalanceCents: 1000}, nil)
				m.balanceRepo.EXPECT().UpdateUserBalance(gomock.Any(), 1, int64(700)).Return(nil)
				m.transactionRepo.EXPECT().CreateTransaction(gomock.Any(), &domain.BalanceTransaction{
					UserID: 1, AmountCents: -300, Note: NoteWithdraw,
				}).Return(&domain.BalanceTransaction{ID: 2}, nil)
				m.metrics.EXPECT().ObserveAdjustment(int64(-300))
			},
			expectedBalance: 700,
		},
		{
			name:   "Withdraw more than balance",
			amount: "10.01",
			prepareMock: func() {
				runInTx(m)
				m.balanceRepo.EXPECT().CreateUserBalance(gomock.Any(), 1).Return(nil)
				m.balanceRepo.EXPECT().GetUserBalanceForUpdate(gomock.Any(), 1).
					Return(&domain.Balance{UserID: 1, BalanceCents: 1000}, nil)
			},
			expectedError: ErrInsufficientFunds,
		},
		{
			name:          "Empty amount",
			amount:        "",
			prepareMock:   func() {},
			expectedError: ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			balance, err := service.Withdraw(context.Background(), 1, tt.amount)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedBalance, balance)
		})
	}
}

func TestHistory(t *testing.T) {
	service, m := NewMock(t)
	now := time.Now()
	history := []domain.BalanceTransaction{
		{ID: 2, UserID: 1, AmountCents: -300, Note: NoteWithdraw, CreatedAt: now},
		{ID: 1, UserID: 1, AmountCents: 1000, Note: NoteDeposit, CreatedAt: now.Add(-time.Hour)},
	}

	tests := []struct {
		name          string
		limit         int
		offset        int
		prepareMock   func()
		expectedError error
	}{
		{
			name:  "Default page size",
			limit: 0,
			prepareMock: func() {
				m.transactionRepo.EXPECT().GetTransactionsByUserID(gomock.Any(), 1, 20, 0).Return(history, nil)
			},
		},
		{
			name:   "Oversized page is capped",
			limit:  1000,
			offset: 40,
			prepareMock: func() {
				m.transactionRepo.EXPECT().GetTransactionsByUserID(gomock.Any(), 1, 50, 40).Return(history, nil)
			},
		},
		{
			name:   "Negative offset starts at the newest entry",
			limit:  5,
			offset: -3,
			prepareMock: func() {
				m.transactionRepo.EXPECT().GetTransactionsByUserID(gomock.Any(), 1, 5, 0).Return(history, nil)
			},
		},
		{
			name:  "Repository error",
			limit: 10,
			prepareMock: func() {
				m.transactionRepo.EXPECT().GetTransactionsByUserID(gomock.Any(), 1, 10, 0).Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			result, err := service.History(context.Background(), 1, tt.limit, tt.offset)
			if tt.expectedError != nil {
				assert.EqualError(t, err, tt.expectedError.Error())
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, history, result)
		})
	}
}
