package repo

import (
	"testing"

	"github.com/GlebRadaev/campusmart/internal/pg"
	balancerepo "github.com/GlebRadaev/campusmart/internal/repo/balance-repo"
	cartrepo "github.com/GlebRadaev/campusmart/internal/repo/cart-repo"
	inventoryrepo "github.com/GlebRadaev/campusmart/internal/repo/inventory-repo"
	orderrepo "github.com/GlebRadaev/campusmart/internal/repo/order-repo"
	productrepo "github.com/GlebRadaev/campusmart/internal/repo/product-repo"
	purchaserepo "github.com/GlebRadaev/campusmart/internal/repo/purchase-repo"
	transactionrepo "github.com/GlebRadaev/campusmart/internal/repo/transaction-repo"
	userrepo "github.com/GlebRadaev/campusmart/internal/repo/user-repo"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Repositories, pgxmock.PgxPoolIface) {
	ctrl := gomock.NewController(t)
	mockDB, err := pgxmock.NewPool()
	mockTxManager := pg.NewMockTXManager(ctrl)
	assert.NoError(t, err)
	repo := New(mockDB, mockTxManager)
	t.Cleanup(mockDB.Close)

	return repo, mockDB
}

func TestNew(t *testing.T) {
	repo, mock := NewMock(t)

	assert.IsType(t, &userrepo.Repository{}, repo.UserRepo)
	assert.IsType(t, &balancerepo.Repository{}, repo.BalanceRepo)
	assert.IsType(t, &transactionrepo.Repository{}, repo.TransactionRepo)
	assert.IsType(t, &productrepo.Repository{}, repo.ProductRepo)
	assert.IsType(t, &inventoryrepo.Repository{}, repo.InventoryRepo)
	assert.IsType(t, &cartrepo.Repository{}, repo.CartRepo)
	assert.IsType(t, &orderrepo.Repository{}, repo.OrderRepo)
	assert.IsType(t, &purchaserepo.Repository{}, repo.PurchaseRepo)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unmet expectations: %v", err)
	}
}
