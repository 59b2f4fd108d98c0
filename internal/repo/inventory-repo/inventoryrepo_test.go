package inventoryrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	t.Cleanup(mockDB.Close)
	return New(mockDB), mockDB
}

var entryCols = []string{"user_id", "product_id", "quantity"}

func TestRepository_AddStock(t *testing.T) {
	repo, mock := NewMock(t)
	query := `INSERT INTO inventory (user_id, product_id, quantity) VALUES ($1, $2, $3) ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = inventory.quantity + EXCLUDED.quantity`

	mock.ExpectExec(regexp.QuoteMeta(query)).
		WithArgs(2, 10, 5).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	assert.NoError(t, repo.AddStock(context.Background(), 2, 10, 5))

	mock.ExpectExec(regexp.QuoteMeta(query)).
		WithArgs(2, 10, 5).
		WillReturnError(errors.New("database error"))
	assert.Error(t, repo.AddStock(context.Background(), 2, 10, 5))
}

func TestRepository_SetQuantity(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`DO UPDATE SET quantity = EXCLUDED.quantity`)).
		WithArgs(2, 10, 0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.SetQuantity(context.Background(), 2, 10, 0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindBestSeller(t *testing.T) {
	repo, mock := NewMock(t)
	query := `SELECT user_id, product_id, quantity FROM inventory WHERE product_id = $1 AND quantity >= $2 AND user_id <> $3 ORDER BY quantity DESC, user_id ASC LIMIT 1`

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		result    *domain.InventoryEntry
	}{
		{
			name: "Largest stock wins",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(query)).
					WithArgs(10, 3, 1).
					WillReturnRows(pgxmock.NewRows(entryCols).AddRow(3, 10, 8))
			},
			result: &domain.InventoryEntry{UserID: 3, ProductID: 10, Quantity: 8},
		},
		{
			name: "No seller can cover the quantity",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(query)).
					WithArgs(10, 3, 1).
					WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(query)).
					WithArgs(10, 3, 1).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.FindBestSeller(context.Background(), 10, 3, 1)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.result, result)
		})
	}
}

func TestRepository_LockBestSeller(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY quantity DESC, user_id ASC LIMIT 1 FOR UPDATE`)).
		WithArgs(10, 3, 1).
		WillReturnRows(pgxmock.NewRows(entryCols).AddRow(2, 10, 3))

	entry, err := repo.LockBestSeller(context.Background(), 10, 3, 1)

	assert.NoError(t, err)
	assert.Equal(t, &domain.InventoryEntry{UserID: 2, ProductID: 10, Quantity: 3}, entry)
}

func TestRepository_LockEntry(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, product_id, quantity FROM inventory WHERE user_id = $1 AND product_id = $2 FOR UPDATE`)).
		WithArgs(2, 10).
		WillReturnError(pgx.ErrNoRows)

	entry, err := repo.LockEntry(context.Background(), 2, 10)

	assert.NoError(t, err)
	assert.Nil(t, entry)
}

func TestRepository_Decrement(t *testing.T) {
	repo, mock := NewMock(t)
	query := `UPDATE inventory SET quantity = quantity - $1 WHERE user_id = $2 AND product_id = $3 AND quantity >= $1`

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		result    bool
	}{
		{
			name: "Enough stock",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(query)).
					WithArgs(3, 2, 10).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
			result: true,
		},
		{
			name: "Stock ran out",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(query)).
					WithArgs(3, 2, 10).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			result: false,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(query)).
					WithArgs(3, 2, 10).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			ok, err := repo.Decrement(context.Background(), 2, 10, 3)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.result, ok)
		})
	}
}

func TestRepository_HasOutstandingOrders(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM order_items WHERE seller_id = $1 AND product_id = $2 AND fulfilled_at IS NULL`)).
		WithArgs(2, 10).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	outstanding, err := repo.HasOutstandingOrders(context.Background(), 2, 10)

	assert.NoError(t, err)
	assert.True(t, outstanding)
}

func TestRepository_Delete(t *testing.T) {
	repo, mock := NewMock(t)
	query := `DELETE FROM inventory WHERE user_id = $1 AND product_id = $2`

	mock.ExpectExec(regexp.QuoteMeta(query)).WithArgs(2, 10).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	deleted, err := repo.Delete(context.Background(), 2, 10)
	assert.NoError(t, err)
	assert.True(t, deleted)

	mock.ExpectExec(regexp.QuoteMeta(query)).WithArgs(2, 11).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	deleted, err = repo.Delete(context.Background(), 2, 11)
	assert.NoError(t, err)
	assert.False(t, deleted)
}

func TestRepository_ListByUser(t *testing.T) {
	repo, mock := NewMock(t)
	price := "5.00"

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT i.product_id, i.quantity, p.name, p.price::text, p.available FROM inventory i JOIN products p ON p.id = i.product_id WHERE i.user_id = $1 ORDER BY p.name, i.product_id`)).
		WithArgs(2).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "quantity", "name", "price", "available"}).
			AddRow(10, 5, "Desk Lamp", &price, true).
			AddRow(11, 0, "Mug", (*string)(nil), false))

	items, err := repo.ListByUser(context.Background(), 2)

	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("5")))
	assert.Nil(t, items[1].Price)
	assert.False(t, items[1].Available)
}
