package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/GlebRadaev/campusmart/docs"
	accounthandlers "github.com/GlebRadaev/campusmart/internal/handlers/account"
	authhandlers "github.com/GlebRadaev/campusmart/internal/handlers/auth"
	balancehandlers "github.com/GlebRadaev/campusmart/internal/handlers/balance"
	carthandlers "github.com/GlebRadaev/campusmart/internal/handlers/cart"
	cataloghandlers "github.com/GlebRadaev/campusmart/internal/handlers/catalog"
	inventoryhandlers "github.com/GlebRadaev/campusmart/internal/handlers/inventory"
	ordershandlers "github.com/GlebRadaev/campusmart/internal/handlers/orders"
	"github.com/GlebRadaev/campusmart/internal/service"
	"github.com/GlebRadaev/campusmart/pkg/auth"
)

//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=handlers

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type AccountHandler interface {
	GetMe(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
	ChangePassword(w http.ResponseWriter, r *http.Request)
	SearchUsers(w http.ResponseWriter, r *http.Request)
}

type BalanceHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
	Deposit(w http.ResponseWriter, r *http.Request)
	Withdraw(w http.ResponseWriter, r *http.Request)
	GetHistory(w http.ResponseWriter, r *http.Request)
}

type CartHandler interface {
	GetCart(w http.ResponseWriter, r *http.Request)
	AddItem(w http.ResponseWriter, r *http.Request)
	SetItem(w http.ResponseWriter, r *http.Request)
	ClearCart(w http.ResponseWriter, r *http.Request)
}

type InventoryHandler interface {
	GetMyInventory(w http.ResponseWriter, r *http.Request)
	GetUserInventory(w http.ResponseWriter, r *http.Request)
	AddStock(w http.ResponseWriter, r *http.Request)
	SetQuantity(w http.ResponseWriter, r *http.Request)
	RemoveEntry(w http.ResponseWriter, r *http.Request)
}

type OrderHandler interface {
	SubmitOrder(w http.ResponseWriter, r *http.Request)
	GetOrders(w http.ResponseWriter, r *http.Request)
	GetOrder(w http.ResponseWriter, r *http.Request)
	GetSales(w http.ResponseWriter, r *http.Request)
	FulfillLine(w http.ResponseWriter, r *http.Request)
	GetSummary(w http.ResponseWriter, r *http.Request)
}

type CatalogHandler interface {
	GetFeatured(w http.ResponseWriter, r *http.Request)
	GetTopExpensive(w http.ResponseWriter, r *http.Request)
	GetProduct(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler      AuthHandler
	AccountHandler   AccountHandler
	BalanceHandler   BalanceHandler
	CartHandler      CartHandler
	InventoryHandler InventoryHandler
	OrderHandler     OrderHandler
	CatalogHandler   CatalogHandler

	JWTService auth.JWTServiceInterface
	Metrics    http.Handler
}

func New(s *service.Services, jwtService auth.JWTServiceInterface, gatherer prometheus.Gatherer) *Handlers {
	return &Handlers{
		AuthHandler:      authhandlers.New(s.AuthService),
		AccountHandler:   accounthandlers.New(s.AccountService),
		BalanceHandler:   balancehandlers.New(s.BalanceService),
		CartHandler:      carthandlers.New(s.CartService),
		InventoryHandler: inventoryhandlers.New(s.InventoryService),
		OrderHandler:     ordershandlers.New(s.OrderService, s.PurchaseService),
		CatalogHandler:   cataloghandlers.New(s.CatalogService),
		JWTService:       jwtService,
		Metrics:          promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/featured", h.CatalogHandler.GetFeatured)
		r.Get("/topk", h.CatalogHandler.GetTopExpensive)
		r.Get("/{productID}", h.CatalogHandler.GetProduct)
	})
	r.Route("/api/users/{userID}", func(r chi.Router) {
		r.Get("/inventory", h.InventoryHandler.GetUserInventory)
		r.Get("/summary", h.OrderHandler.GetSummary)
	})

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/register", h.AuthHandler.Register)
		r.Post("/login", h.AuthHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(h.JWTService))
			r.Route("/me", func(r chi.Router) {
				r.Get("/", h.AccountHandler.GetMe)
				r.Patch("/", h.AccountHandler.UpdateProfile)
				r.Put("/password", h.AccountHandler.ChangePassword)
			})
			r.Get("/search", h.AccountHandler.SearchUsers)
			r.Route("/balance", func(r chi.Router) {
				r.Get("/", h.BalanceHandler.GetBalance)
				r.Get("/history", h.BalanceHandler.GetHistory)
				r.Post("/deposit", h.BalanceHandler.Deposit)
				r.Post("/withdraw", h.BalanceHandler.Withdraw)
			})
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.CartHandler.GetCart)
				r.Post("/add", h.CartHandler.AddItem)
				r.Post("/set", h.CartHandler.SetItem)
				r.Post("/clear", h.CartHandler.ClearCart)
			})
			r.Route("/orders", func(r chi.Router) {
				r.Post("/", h.OrderHandler.SubmitOrder)
				r.Get("/", h.OrderHandler.GetOrders)
				r.Get("/{orderID}", h.OrderHandler.GetOrder)
			})
			r.Route("/sales", func(r chi.Router) {
				r.Get("/", h.OrderHandler.GetSales)
				r.Post("/{lineID}/fulfill", h.OrderHandler.FulfillLine)
			})
			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", h.InventoryHandler.GetMyInventory)
				r.Post("/", h.InventoryHandler.AddStock)
				r.Put("/{productID}", h.InventoryHandler.SetQuantity)
				r.Delete("/{productID}", h.InventoryHandler.RemoveEntry)
			})
		})
	})

	return r
}
