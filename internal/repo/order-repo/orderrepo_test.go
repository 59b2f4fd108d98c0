package orderrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/pg"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface, *pg.MockTXManager) {
	ctrl := gomock.NewController(t)
	mockTxManager := pg.NewMockTXManager(ctrl)

	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	t.Cleanup(mockDB.Close)
	repo := New(mockDB, mockTxManager)

	return repo, mockDB, mockTxManager
}

func TestRepository_CreateOrder(t *testing.T) {
	repo, mock, _ := NewMock(t)
	createdAt := time.Now()
	query := `INSERT INTO orders (buyer_id, total_cents, fulfilled) VALUES ($1, $2, FALSE) RETURNING id, created_at`

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		result    *domain.Order
	}{
		{
			name: "Order saved",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(query)).
					WithArgs(1, int64(1500)).
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(7, createdAt))
			},
			result: &domain.Order{ID: 7, BuyerID: 1, TotalCents: 1500, CreatedAt: createdAt},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(query)).
					WithArgs(1, int64(1500)).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			order := &domain.Order{BuyerID: 1, TotalCents: 1500}
			err := repo.CreateOrder(context.Background(), order)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.result, order)
		})
	}
}

func TestRepository_CreateLine(t *testing.T) {
	repo, mock, _ := NewMock(t)
	query := `INSERT INTO order_items (order_id, product_id, seller_id, quantity, unit_price_cents) VALUES ($1, $2, $3, $4, $5) RETURNING id`

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(7, 10, 2, 3, int64(500)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(21))

	line := &domain.OrderLine{OrderID: 7, ProductID: 10, SellerID: 2, Quantity: 3, UnitPriceCents: 500}
	assert.NoError(t, repo.CreateLine(context.Background(), line))
	assert.Equal(t, 21, line.ID)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(7, 10, 2, 3, int64(500)).
		WillReturnError(errors.New("database error"))
	assert.Error(t, repo.CreateLine(context.Background(), line))
}

func TestRepository_FindByID(t *testing.T) {
	repo, mock, _ := NewMock(t)
	createdAt := time.Now()
	fulfilledAt := createdAt.Add(time.Hour)
	orderQuery := `SELECT id, buyer_id, created_at, total_cents, fulfilled FROM orders WHERE id = $1`
	linesQuery := `FROM order_items oi JOIN products p ON p.id = oi.product_id JOIN users s ON s.id = oi.seller_id WHERE oi.order_id = $1 ORDER BY oi.id`
	lineCols := []string{"id", "order_id", "product_id", "seller_id", "quantity", "unit_price_cents", "fulfilled_at", "name", "full_name"}

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		result    *domain.Order
	}{
		{
			name: "Order with lines",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(orderQuery)).WithArgs(7).
					WillReturnRows(pgxmock.NewRows([]string{"id", "buyer_id", "created_at", "total_cents", "fulfilled"}).
						AddRow(7, 1, createdAt, int64(1900), false))
				mock.ExpectQuery(regexp.QuoteMeta(linesQuery)).WithArgs(7).
					WillReturnRows(pgxmock.NewRows(lineCols).
						AddRow(21, 7, 10, 2, 3, int64(500), &fulfilledAt, "Desk Lamp", "Bob").
						AddRow(22, 7, 11, 3, 1, int64(400), (*time.Time)(nil), "Mug", "Carol"))
			},
			result: &domain.Order{
				ID: 7, BuyerID: 1, CreatedAt: createdAt, TotalCents: 1900,
				Lines: []domain.OrderLine{
					{ID: 21, OrderID: 7, ProductID: 10, SellerID: 2, Quantity: 3, UnitPriceCents: 500, FulfilledAt: &fulfilledAt, ProductName: "Desk Lamp", SellerName: "Bob"},
					{ID: 22, OrderID: 7, ProductID: 11, SellerID: 3, Quantity: 1, UnitPriceCents: 400, ProductName: "Mug", SellerName: "Carol"},
				},
			},
		},
		{
			name: "Order not found",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(orderQuery)).WithArgs(7).WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name: "Lines query fails",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(orderQuery)).WithArgs(7).
					WillReturnRows(pgxmock.NewRows([]string{"id", "buyer_id", "created_at", "total_cents", "fulfilled"}).
						AddRow(7, 1, createdAt, int64(1900), false))
				mock.ExpectQuery(regexp.QuoteMeta(linesQuery)).WithArgs(7).WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			order, err := repo.FindByID(context.Background(), 7)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.result, order)
		})
	}
}

func TestRepository_LockLine(t *testing.T) {
	repo, mock, _ := NewMock(t)
	query := `SELECT id, order_id, product_id, seller_id, quantity, unit_price_cents, fulfilled_at FROM order_items WHERE id = $1 FOR UPDATE`

	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs(21).
		WillReturnRows(pgxmock.NewRows([]string{"id", "order_id", "product_id", "seller_id", "quantity", "unit_price_cents", "fulfilled_at"}).
			AddRow(21, 7, 10, 2, 3, int64(500), (*time.Time)(nil)))
	line, err := repo.LockLine(context.Background(), 21)
	assert.NoError(t, err)
	assert.Equal(t, &domain.OrderLine{ID: 21, OrderID: 7, ProductID: 10, SellerID: 2, Quantity: 3, UnitPriceCents: 500}, line)

	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs(99).WillReturnError(pgx.ErrNoRows)
	line, err = repo.LockLine(context.Background(), 99)
	assert.NoError(t, err)
	assert.Nil(t, line)
}

func TestRepository_FulfillLine(t *testing.T) {
	repo, mock, tx := NewMock(t)
	fulfilledAt := time.Now()
	lineQuery := `UPDATE order_items SET fulfilled_at = now() WHERE id = $1 AND fulfilled_at IS NULL RETURNING fulfilled_at`
	orderQuery := `UPDATE orders SET fulfilled = NOT EXISTS ( SELECT 1 FROM order_items WHERE order_id = $1 AND fulfilled_at IS NULL ) WHERE id = $1 RETURNING fulfilled`

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		result    bool
	}{
		{
			name: "Last open line completes the order",
			mockSetup: func() {
				tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(
					func(ctx context.Context, fn pg.TransactionalFn) error {
						mock.ExpectQuery(regexp.QuoteMeta(lineQuery)).WithArgs(21).
							WillReturnRows(pgxmock.NewRows([]string{"fulfilled_at"}).AddRow(&fulfilledAt))
						mock.ExpectQuery(regexp.QuoteMeta(orderQuery)).WithArgs(7).
							WillReturnRows(pgxmock.NewRows([]string{"fulfilled"}).AddRow(true))
						return fn(ctx)
					})
			},
			result: true,
		},
		{
			name: "Other lines still open",
			mockSetup: func() {
				tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(
					func(ctx context.Context, fn pg.TransactionalFn) error {
						mock.ExpectQuery(regexp.QuoteMeta(lineQuery)).WithArgs(21).
							WillReturnRows(pgxmock.NewRows([]string{"fulfilled_at"}).AddRow(&fulfilledAt))
						mock.ExpectQuery(regexp.QuoteMeta(orderQuery)).WithArgs(7).
							WillReturnRows(pgxmock.NewRows([]string{"fulfilled"}).AddRow(false))
						return fn(ctx)
					})
			},
			result: false,
		},
		{
			name: "Line already fulfilled concurrently",
			mockSetup: func() {
				tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(
					func(ctx context.Context, fn pg.TransactionalFn) error {
						mock.ExpectQuery(regexp.QuoteMeta(lineQuery)).WithArgs(21).WillReturnError(pgx.ErrNoRows)
						return fn(ctx)
					})
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			line := &domain.OrderLine{ID: 21, OrderID: 7}
			fulfilled, err := repo.FulfillLine(context.Background(), line)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.result, fulfilled)
			assert.NotNil(t, line.FulfilledAt)
		})
	}
}
