package orderservice

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/metrics"
	"github.com/GlebRadaev/campusmart/internal/pg"
	"github.com/GlebRadaev/campusmart/internal/service/balanceservice"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

type mocks struct {
	repo      *MockRepo
	carts     *MockCartRepo
	inventory *MockInventoryRepo
	ledger    *MockLedger
	metrics   *MockMetrics
	txManager *pg.MockTXManager
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		repo:      NewMockRepo(ctrl),
		carts:     NewMockCartRepo(ctrl),
		inventory: NewMockInventoryRepo(ctrl),
		ledger:    NewMockLedger(ctrl),
		metrics:   NewMockMetrics(ctrl),
		txManager: pg.NewMockTXManager(ctrl),
	}
	m.txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn pg.TransactionalFn) error {
			return fn(ctx)
		}).AnyTimes()

	service := New(m.repo, m.carts, m.inventory, m.ledger, m.txManager, m.metrics, 2)
	service.backoff = time.Millisecond
	defer ctrl.Finish()
	return service, m
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strptr(s string) *string {
	return &s
}

func TestSubmitOrder_Validation(t *testing.T) {
	lamp := domain.CartLine{ItemID: 1, ProductID: 10, Quantity: 2, Name: strptr("Desk Lamp"), Price: price("12.50")}

	tests := []struct {
		name        string
		prepareMock func(m *mocks)
		expectedErr error
		expectedMsg string
	}{
		{
			name: "Empty cart",
			prepareMock: func(m *mocks) {
				m.carts.EXPECT().ListItems(gomock.Any(), 5).Return([]domain.CartLine{}, nil)
			},
			expectedErr: ErrCartEmpty,
			expectedMsg: "Cart is empty",
		},
		{
			name: "Product without price",
			prepareMock: func(m *mocks) {
				m.carts.EXPECT().ListItems(gomock.Any(), 5).Return([]domain.CartLine{
					{ItemID: 1, ProductID: 10, Quantity: 1, Name: strptr("Desk Lamp")},
				}, nil)
			},
			expectedErr: ErrMissingPrice,
			expectedMsg: "Product 'Desk Lamp' has no price",
		},
		{
			name: "Missing product falls back to its id",
			prepareMock: func(m *mocks) {
				m.carts.EXPECT().ListItems(gomock.Any(), 5).Return([]domain.CartLine{
					{ItemID: 1, ProductID: 77, Quantity: 1},
				}, nil)
			},
			expectedErr: ErrMissingPrice,
			expectedMsg: "Product '#77' has no price",
		},
		{
			name: "No seller can cover the quantity",
			prepareMock: func(m *mocks) {
				m.carts.EXPECT().ListItems(gomock.Any(), 5).Return([]domain.CartLine{lamp}, nil)
				m.inventory.EXPECT().FindBestSeller(gomock.Any(), 10, 2, 5).Return(nil, nil)
			},
			expectedErr: ErrNoSeller,
			expectedMsg: "Product 'Desk Lamp' has no seller with sufficient inventory (need 2)",
		},
		{
			name: "Line total past int64",
			prepareMock: func(m *mocks) {
				m.carts.EXPECT().ListItems(gomock.Any(), 5).Return([]domain.CartLine{
					{ItemID: 1, ProductID: 10, Quantity: math.MaxInt, Name: strptr("Desk Lamp"), Price: price("10.00")},
				}, nil)
				m.inventory.EXPECT().FindBestSeller(gomock.Any(), 10, math.MaxInt, 5).
					Return(&domain.InventoryEntry{UserID: 3, ProductID: 10, Quantity: math.MaxInt}, nil)
			},
			expectedErr: ErrAmountTooLarge,
			expectedMsg: "Product 'Desk Lamp' pushes the order total past the supported amount",
		},
		{
			name: "Running total past int64",
			prepareMock: func(m *mocks) {
				m.carts.EXPECT().ListItems(gomock.Any(), 5).Return([]domain.CartLine{
					{ItemID: 1, ProductID: 10, Quantity: 1, Name: strptr("Desk Lamp"), Price: price("50000000000000000")},
					{ItemID: 2, ProductID: 20, Quantity: 1, Name: strptr("Mug"), Price: price("50000000000000000")},
				}, nil)
				m.inventory.EXPECT().FindBestSeller(gomock.Any(), 10, 1, 5).
					Return(&domain.InventoryEntry{UserID: 3, ProductID: 10, Quantity: 1}, nil)
				m.inventory.EXPECT().FindBestSeller(gomock.Any(), 20, 1, 5).
					Return(&domain.InventoryEntry{UserID: 2, ProductID: 20, Quantity: 1}, nil)
			},
			expectedErr: ErrAmountTooLarge,
			expectedMsg: "Product 'Mug' pushes the order total past the supported amount",
		},
		{
			name: "Balance below total",
			prepareMock: func(m *mocks) {
				m.carts.EXPECT().ListItems(gomock.Any(), 5).Return([]domain.CartLine{lamp}, nil)
				m.inventory.EXPECT().FindBestSeller(gomock.Any(), 10, 2, 5).
					Return(&domain.InventoryEntry{UserID: 3, ProductID: 10, Quantity: 4}, nil)
				m.ledger.EXPECT().GetBalance(gomock.Any(), 5).Return(int64(1000), nil)
			},
			expectedErr: ErrInsufficientBalance,
			expectedMsg: "Insufficient balance. Required: $25.00, Available: $10.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)
			m.metrics.EXPECT().ObserveCheckout(metrics.ResultValidation, gomock.Any())

			orderID, err := service.SubmitOrder(context.Background(), 5)
			assert.Zero(t, orderID)
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.EqualError(t, err, tt.expectedMsg)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestSubmitOrder_Success(t *testing.T) {
	service, m := NewMock(t)
	cart := []domain.CartLine{
		{ItemID: 1, ProductID: 20, Quantity: 1, Name: strptr("Mug"), Price: price("5")},
		{ItemID: 2, ProductID: 10, Quantity: 2, Name: strptr("Desk Lamp"), Price: price("12.50")},
	}

	m.carts.EXPECT().ListItems(gomock.Any(), 5).Return(cart, nil)
	m.inventory.EXPECT().FindBestSeller(gomock.Any(), 20, 1, 5).Return(&domain.InventoryEntry{UserID: 2, ProductID: 20, Quantity: 1}, nil)
	m.inventory.EXPECT().FindBestSeller(gomock.Any(), 10, 2, 5).Return(&domain.InventoryEntry{UserID: 3, ProductID: 10, Quantity: 9}, nil)
	m.ledger.EXPECT().GetBalance(gomock.Any(), 5).Return(int64(5000), nil)

	gomock.InOrder(
		m.repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, order *domain.Order) error {
				assert.Equal(t, 5, order.BuyerID)
				assert.Equal(t, int64(3000), order.TotalCents)
				order.ID = 42
				return nil
			}),
		m.inventory.EXPECT().LockBestSeller(gomock.Any(), 10, 2, 5).
			Return(&domain.InventoryEntry{UserID: 3, ProductID: 10, Quantity: 9}, nil),
		m.repo.EXPECT().CreateLine(gomock.Any(), &domain.OrderLine{
			OrderID: 42, ProductID: 10, SellerID: 3, Quantity: 2, UnitPriceCents: 1250,
		}).Return(nil),
		m.inventory.EXPECT().Decrement(gomock.Any(), 3, 10, 2).Return(true, nil),
		m.inventory.EXPECT().LockBestSeller(gomock.Any(), 20, 1, 5).
			Return(&domain.InventoryEntry{UserID: 2, ProductID: 20, Quantity: 1}, nil),
		m.repo.EXPECT().CreateLine(gomock.Any(), &domain.OrderLine{
			OrderID: 42, ProductID: 20, SellerID: 2, Quantity: 1, UnitPriceCents: 500,
		}).Return(nil),
		m.inventory.EXPECT().Decrement(gomock.Any(), 2, 20, 1).Return(true, nil),
		m.ledger.EXPECT().AdjustBalance(gomock.Any(), 2, int64(500), "Order #42 sale").Return(int64(500), nil),
		m.ledger.EXPECT().AdjustBalance(gomock.Any(), 3, int64(2500), "Order #42 sale").Return(int64(2500), nil),
		m.ledger.EXPECT().AdjustBalance(gomock.Any(), 5, int64(-3000), "Order #42").Return(int64(2000), nil),
		m.carts.EXPECT().Clear(gomock.Any(), 5).Return(nil),
	)
	m.metrics.EXPECT().AddOrderTotal(int64(3000))
	m.metrics.EXPECT().ObserveAdjustment(int64(-3000))
	m.metrics.EXPECT().ObserveAdjustment(int64(500))
	m.metrics.EXPECT().ObserveAdjustment(int64(2500))
	m.metrics.EXPECT().ObserveCheckout(metrics.ResultSuccess, gomock.Any())

	orderID, err := service.SubmitOrder(context.Background(), 5)
	assert.NoError(t, err)
	assert.Equal(t, 42, orderID)
}

func TestSubmitOrder_Commit(t *testing.T) {
	lamp := domain.CartLine{ItemID: 1, ProductID: 10, Quantity: 2, Name: strptr("Desk Lamp"), Price: price("12.50")}
	seller := &domain.InventoryEntry{UserID: 3, ProductID: 10, Quantity: 2}

	validated := func(m *mocks) {
		m.carts.EXPECT().ListItems(gomock.Any(), 5).Return([]domain.CartLine{lamp}, nil)
		m.inventory.EXPECT().FindBestSeller(gomock.Any(), 10, 2, 5).Return(seller, nil)
		m.ledger.EXPECT().GetBalance(gomock.Any(), 5).Return(int64(2500), nil)
	}
	createOrder := func(m *mocks) *gomock.Call {
		return m.repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, order *domain.Order) error {
				order.ID = 7
				return nil
			})
	}
	committed := func(m *mocks) {
		m.inventory.EXPECT().LockBestSeller(gomock.Any(), 10, 2, 5).Return(seller, nil)
		m.repo.EXPECT().CreateLine(gomock.Any(), gomock.Any()).Return(nil)
		m.inventory.EXPECT().Decrement(gomock.Any(), 3, 10, 2).Return(true, nil)
		m.ledger.EXPECT().AdjustBalance(gomock.Any(), 3, int64(2500), "Order #7 sale").Return(int64(2500), nil)
		m.ledger.EXPECT().AdjustBalance(gomock.Any(), 5, int64(-2500), "Order #7").Return(int64(0), nil)
		m.carts.EXPECT().Clear(gomock.Any(), 5).Return(nil)
		m.metrics.EXPECT().AddOrderTotal(int64(2500))
		m.metrics.EXPECT().ObserveAdjustment(int64(-2500))
		m.metrics.EXPECT().ObserveAdjustment(int64(2500))
	}

	tests := []struct {
		name           string
		prepareMock    func(m *mocks)
		expectedResult string
		expectedErr    error
		expectedID     int
	}{
		{
			name: "Seller sold out under lock, retried with another seller",
			prepareMock: func(m *mocks) {
				validated(m)
				createOrder(m).Times(2)
				gomock.InOrder(
					m.inventory.EXPECT().LockBestSeller(gomock.Any(), 10, 2, 5).Return(nil, nil),
					m.inventory.EXPECT().LockBestSeller(gomock.Any(), 10, 2, 5).Return(seller, nil),
				)
				m.repo.EXPECT().CreateLine(gomock.Any(), gomock.Any()).Return(nil)
				m.inventory.EXPECT().Decrement(gomock.Any(), 3, 10, 2).Return(true, nil)
				m.ledger.EXPECT().AdjustBalance(gomock.Any(), 3, int64(2500), "Order #7 sale").Return(int64(2500), nil)
				m.ledger.EXPECT().AdjustBalance(gomock.Any(), 5, int64(-2500), "Order #7").Return(int64(0), nil)
				m.carts.EXPECT().Clear(gomock.Any(), 5).Return(nil)
				m.metrics.EXPECT().AddOrderTotal(int64(2500))
				m.metrics.EXPECT().ObserveAdjustment(int64(-2500))
				m.metrics.EXPECT().ObserveAdjustment(int64(2500))
			},
			expectedResult: metrics.ResultSuccess,
			expectedID:     7,
		},
		{
			name: "Deadlock is retried",
			prepareMock: func(m *mocks) {
				validated(m)
				gomock.InOrder(
					m.repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(&pgconn.PgError{Code: "40P01"}),
					createOrder(m),
				)
				committed(m)
			},
			expectedResult: metrics.ResultSuccess,
			expectedID:     7,
		},
		{
			name: "Lock race persists past the retry budget",
			prepareMock: func(m *mocks) {
				validated(m)
				createOrder(m).Times(3)
				m.inventory.EXPECT().LockBestSeller(gomock.Any(), 10, 2, 5).Return(nil, nil).Times(3)
			},
			expectedResult: metrics.ResultConflict,
			expectedErr:    ErrInventoryConflict,
		},
		{
			name: "Guarded decrement refuses",
			prepareMock: func(m *mocks) {
				validated(m)
				createOrder(m).Times(3)
				m.inventory.EXPECT().LockBestSeller(gomock.Any(), 10, 2, 5).Return(seller, nil).Times(3)
				m.repo.EXPECT().CreateLine(gomock.Any(), gomock.Any()).Return(nil).Times(3)
				m.inventory.EXPECT().Decrement(gomock.Any(), 3, 10, 2).Return(false, nil).Times(3)
			},
			expectedResult: metrics.ResultConflict,
			expectedErr:    ErrInventoryConflict,
		},
		{
			name: "Buyer balance drained concurrently",
			prepareMock: func(m *mocks) {
				validated(m)
				createOrder(m)
				m.inventory.EXPECT().LockBestSeller(gomock.Any(), 10, 2, 5).Return(seller, nil)
				m.repo.EXPECT().CreateLine(gomock.Any(), gomock.Any()).Return(nil)
				m.inventory.EXPECT().Decrement(gomock.Any(), 3, 10, 2).Return(true, nil)
				m.ledger.EXPECT().AdjustBalance(gomock.Any(), 3, int64(2500), "Order #7 sale").Return(int64(2500), nil)
				m.ledger.EXPECT().AdjustBalance(gomock.Any(), 5, int64(-2500), "Order #7").
					Return(int64(0), fmt.Errorf("%w: available $10.00", balanceservice.ErrInsufficientFunds))
			},
			expectedResult: metrics.ResultConflict,
			expectedErr:    balanceservice.ErrInsufficientFunds,
		},
		{
			name: "Unexpected database failure",
			prepareMock: func(m *mocks) {
				validated(m)
				m.repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))
			},
			expectedResult: metrics.ResultError,
			expectedErr:    ErrOrderProcessing,
		},
		{
			name: "Cart clear failure rolls back",
			prepareMock: func(m *mocks) {
				validated(m)
				createOrder(m)
				m.inventory.EXPECT().LockBestSeller(gomock.Any(), 10, 2, 5).Return(seller, nil)
				m.repo.EXPECT().CreateLine(gomock.Any(), gomock.Any()).Return(nil)
				m.inventory.EXPECT().Decrement(gomock.Any(), 3, 10, 2).Return(true, nil)
				m.ledger.EXPECT().AdjustBalance(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil).Times(2)
				m.carts.EXPECT().Clear(gomock.Any(), 5).Return(errors.New("db error"))
			},
			expectedResult: metrics.ResultError,
			expectedErr:    ErrOrderProcessing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)
			m.metrics.EXPECT().ObserveCheckout(tt.expectedResult, gomock.Any())

			orderID, err := service.SubmitOrder(context.Background(), 5)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.False(t, IsValidation(err))
				assert.Zero(t, orderID)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedID, orderID)
		})
	}
}

func TestSubmitOrder_CartLoadError(t *testing.T) {
	service, m := NewMock(t)
	m.carts.EXPECT().ListItems(gomock.Any(), 5).Return(nil, errors.New("db error"))
	m.metrics.EXPECT().ObserveCheckout(metrics.ResultError, gomock.Any())

	_, err := service.SubmitOrder(context.Background(), 5)
	assert.ErrorIs(t, err, ErrOrderProcessing)
}

func TestLedgerEntries(t *testing.T) {
	entries := ledgerEntries(9, 4, 1500, map[int]int64{7: 1000, 2: 500})
	assert.Equal(t, []ledgerEntry{
		{userID: 2, delta: 500, note: "Order #9 sale"},
		{userID: 4, delta: -1500, note: "Order #9"},
		{userID: 7, delta: 1000, note: "Order #9 sale"},
	}, entries)
}

func TestGetOrderDetail(t *testing.T) {
	service, m := NewMock(t)
	order := &domain.Order{ID: 3, BuyerID: 5, TotalCents: 500, Lines: []domain.OrderLine{{ID: 1, SellerID: 2}}}

	m.repo.EXPECT().FindByID(gomock.Any(), 3).Return(order, nil)
	result, err := service.GetOrderDetail(context.Background(), 3)
	assert.NoError(t, err)
	assert.Equal(t, order, result)

	m.repo.EXPECT().FindByID(gomock.Any(), 4).Return(nil, nil)
	_, err = service.GetOrderDetail(context.Background(), 4)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	m.repo.EXPECT().FindByID(gomock.Any(), 5).Return(nil, errors.New("db error"))
	_, err = service.GetOrderDetail(context.Background(), 5)
	assert.EqualError(t, err, "db error")
}

func TestFulfillLine(t *testing.T) {
	stamped := time.Now()

	tests := []struct {
		name          string
		prepareMock   func(m *mocks)
		expectedError error
	}{
		{
			name: "Line fulfilled",
			prepareMock: func(m *mocks) {
				line := &domain.OrderLine{ID: 11, OrderID: 3, SellerID: 2}
				m.repo.EXPECT().LockLine(gomock.Any(), 11).Return(line, nil)
				m.repo.EXPECT().FulfillLine(gomock.Any(), line).Return(true, nil)
			},
		},
		{
			name: "Line missing",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().LockLine(gomock.Any(), 11).Return(nil, nil)
			},
			expectedError: ErrLineNotFound,
		},
		{
			name: "Line sold by someone else",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().LockLine(gomock.Any(), 11).Return(&domain.OrderLine{ID: 11, SellerID: 9}, nil)
			},
			expectedError: ErrLineNotFound,
		},
		{
			name: "Already fulfilled",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().LockLine(gomock.Any(), 11).
					Return(&domain.OrderLine{ID: 11, SellerID: 2, FulfilledAt: &stamped}, nil)
			},
			expectedError: ErrAlreadyFulfilled,
		},
		{
			name: "Repository error",
			prepareMock: func(m *mocks) {
				line := &domain.OrderLine{ID: 11, OrderID: 3, SellerID: 2}
				m.repo.EXPECT().LockLine(gomock.Any(), 11).Return(line, nil)
				m.repo.EXPECT().FulfillLine(gomock.Any(), line).Return(false, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			err := service.FulfillLine(context.Background(), 2, 11)
			if tt.expectedError != nil {
				assert.EqualError(t, err, tt.expectedError.Error())
				return
			}
			assert.NoError(t, err)
		})
	}
}
