package repo

import (
	"github.com/GlebRadaev/campusmart/internal/pg"
	balancerepo "github.com/GlebRadaev/campusmart/internal/repo/balance-repo"
	cartrepo "github.com/GlebRadaev/campusmart/internal/repo/cart-repo"
	inventoryrepo "github.com/GlebRadaev/campusmart/internal/repo/inventory-repo"
	orderrepo "github.com/GlebRadaev/campusmart/internal/repo/order-repo"
	productrepo "github.com/GlebRadaev/campusmart/internal/repo/product-repo"
	purchaserepo "github.com/GlebRadaev/campusmart/internal/repo/purchase-repo"
	transactionrepo "github.com/GlebRadaev/campusmart/internal/repo/transaction-repo"
	userrepo "github.com/GlebRadaev/campusmart/internal/repo/user-repo"
	"github.com/GlebRadaev/campusmart/internal/service/authservice"
	"github.com/GlebRadaev/campusmart/internal/service/balanceservice"
	"github.com/GlebRadaev/campusmart/internal/service/cartservice"
	"github.com/GlebRadaev/campusmart/internal/service/catalogservice"
	"github.com/GlebRadaev/campusmart/internal/service/inventoryservice"
	"github.com/GlebRadaev/campusmart/internal/service/orderservice"
	"github.com/GlebRadaev/campusmart/internal/service/purchaseservice"
)

// CartRepo is read by the cart itself and cleared by checkout.
type CartRepo interface {
	cartservice.Repo
	orderservice.CartRepo
}

// InventoryRepo is managed by sellers and drawn down by checkout.
type InventoryRepo interface {
	inventoryservice.Repo
	orderservice.InventoryRepo
}

type Repositories struct {
	UserRepo        authservice.Repo
	BalanceRepo     balanceservice.BalanceRepo
	TransactionRepo balanceservice.TransactionRepo
	ProductRepo     catalogservice.Repo
	InventoryRepo   InventoryRepo
	CartRepo        CartRepo
	OrderRepo       orderservice.Repo
	PurchaseRepo    purchaseservice.Repo
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	return &Repositories{
		UserRepo:        userrepo.New(conn),
		BalanceRepo:     balancerepo.New(conn, txManager),
		TransactionRepo: transactionrepo.New(conn),
		ProductRepo:     productrepo.New(conn),
		InventoryRepo:   inventoryrepo.New(conn),
		CartRepo:        cartrepo.New(conn),
		OrderRepo:       orderrepo.New(conn, txManager),
		PurchaseRepo:    purchaserepo.New(conn),
	}
}
