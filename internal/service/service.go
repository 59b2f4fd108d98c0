package service

import (
	"time"

	"github.com/GlebRadaev/campusmart/internal/handlers/account"
	"github.com/GlebRadaev/campusmart/internal/handlers/auth"
	"github.com/GlebRadaev/campusmart/internal/handlers/balance"
	"github.com/GlebRadaev/campusmart/internal/handlers/cart"
	"github.com/GlebRadaev/campusmart/internal/handlers/catalog"
	"github.com/GlebRadaev/campusmart/internal/handlers/inventory"
	"github.com/GlebRadaev/campusmart/internal/handlers/orders"
	"github.com/GlebRadaev/campusmart/internal/metrics"
	"github.com/GlebRadaev/campusmart/internal/pg"
	"github.com/GlebRadaev/campusmart/internal/repo"

	pkgauth "github.com/GlebRadaev/campusmart/pkg/auth"

	"github.com/GlebRadaev/campusmart/internal/service/authservice"
	"github.com/GlebRadaev/campusmart/internal/service/balanceservice"
	"github.com/GlebRadaev/campusmart/internal/service/cartservice"
	"github.com/GlebRadaev/campusmart/internal/service/catalogservice"
	"github.com/GlebRadaev/campusmart/internal/service/inventoryservice"
	"github.com/GlebRadaev/campusmart/internal/service/orderservice"
	"github.com/GlebRadaev/campusmart/internal/service/purchaseservice"
)

type Services struct {
	AuthService      auth.Service
	BalanceService   balance.Service
	CartService      cart.Service
	InventoryService inventory.Service
	OrderService     orders.Service
	PurchaseService  orders.PurchaseService
	CatalogService   catalog.Service
	AccountService   account.Service
}

// Options carries the collaborators that do not come from the database.
// Cache must be a nil interface when no cache is configured.
type Options struct {
	JWTService      pkgauth.JWTServiceInterface
	Cache           catalogservice.Cache
	FeaturedTTL     time.Duration
	CheckoutRetries uint64
	Metrics         *metrics.CheckoutMetrics
}

func New(repo *repo.Repositories, txManager pg.TXManager, opts Options) *Services {
	balanceService := balanceservice.New(repo.BalanceRepo, repo.TransactionRepo, txManager, opts.Metrics)
	authService := authservice.New(repo.UserRepo, balanceService, txManager, &pkgauth.HashService{}, opts.JWTService)
	orderService := orderservice.New(repo.OrderRepo, repo.CartRepo, repo.InventoryRepo, balanceService, txManager, opts.Metrics, opts.CheckoutRetries)

	return &Services{
		AuthService:      authService,
		BalanceService:   balanceService,
		CartService:      cartservice.New(repo.CartRepo, repo.ProductRepo, txManager),
		InventoryService: inventoryservice.New(repo.InventoryRepo, repo.ProductRepo, txManager),
		OrderService:     orderService,
		PurchaseService:  purchaseservice.New(repo.PurchaseRepo, repo.UserRepo),
		CatalogService:   catalogservice.New(repo.ProductRepo, opts.Cache, opts.FeaturedTTL),
		AccountService:   authService,
	}
}
