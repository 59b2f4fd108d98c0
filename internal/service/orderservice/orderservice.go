package orderservice

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/metrics"
	"github.com/GlebRadaev/campusmart/internal/pg"
	"github.com/GlebRadaev/campusmart/internal/service/balanceservice"
	"github.com/GlebRadaev/campusmart/pkg/money"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

//go:generate mockgen -source=orderservice.go -destination=mock_orderservice.go -package=orderservice

type Repo interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	CreateLine(ctx context.Context, line *domain.OrderLine) error
	FindByID(ctx context.Context, orderID int) (*domain.Order, error)
	LockLine(ctx context.Context, lineID int) (*domain.OrderLine, error)
	FulfillLine(ctx context.Context, line *domain.OrderLine) (bool, error)
}
type CartRepo interface {
	ListItems(ctx context.Context, userID int) ([]domain.CartLine, error)
	Clear(ctx context.Context, userID int) error
}
type InventoryRepo interface {
	FindBestSeller(ctx context.Context, productID, quantity, buyerID int) (*domain.InventoryEntry, error)
	LockBestSeller(ctx context.Context, productID, quantity, buyerID int) (*domain.InventoryEntry, error)
	Decrement(ctx context.Context, sellerID, productID, quantity int) (bool, error)
}
type Ledger interface {
	GetBalance(ctx context.Context, userID int) (int64, error)
	AdjustBalance(ctx context.Context, userID int, deltaCents int64, note string) (int64, error)
}
type Metrics interface {
	ObserveCheckout(result string, elapsed time.Duration)
	AddOrderTotal(cents int64)
	ObserveAdjustment(deltaCents int64)
}

type Service struct {
	repo      Repo
	carts     CartRepo
	inventory InventoryRepo
	ledger    Ledger
	txManager pg.TXManager
	metrics   Metrics
	retries   uint64
	backoff   time.Duration
}

func New(repo Repo, carts CartRepo, inventory InventoryRepo, ledger Ledger, txManager pg.TXManager, metrics Metrics, retries uint64) *Service {
	return &Service{
		repo:      repo,
		carts:     carts,
		inventory: inventory,
		ledger:    ledger,
		txManager: txManager,
		metrics:   metrics,
		retries:   retries,
		backoff:   20 * time.Millisecond,
	}
}

var (
	ErrCartEmpty           = errors.New("cart is empty")
	ErrMissingPrice        = errors.New("product has no price")
	ErrNoSeller            = errors.New("no seller with sufficient inventory")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAmountTooLarge      = errors.New("order total too large")
	ErrInventoryConflict   = errors.New("inventory changed during checkout")
	ErrOrderProcessing     = errors.New("error processing order")
	ErrOrderNotFound       = errors.New("order not found")
	ErrLineNotFound        = errors.New("order line not found")
	ErrAlreadyFulfilled    = errors.New("order line already fulfilled")

	errSellerGone = errors.New("seller no longer holds enough stock")
)

// checkoutError carries a message meant for the buyer while still matching
// its sentinel with errors.Is.
type checkoutError struct {
	kind error
	msg  string
}

func (e *checkoutError) Error() string { return e.msg }
func (e *checkoutError) Unwrap() error { return e.kind }

// IsValidation reports whether err rejected the checkout before anything was
// written.
func IsValidation(err error) bool {
	return errors.Is(err, ErrCartEmpty) ||
		errors.Is(err, ErrMissingPrice) ||
		errors.Is(err, ErrNoSeller) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrAmountTooLarge)
}

type plannedLine struct {
	productID      int
	quantity       int
	unitPriceCents int64
}

// SubmitOrder turns the buyer's cart into an order. Every line is validated
// before the first write; the writes then happen in one transaction that is
// retried when it loses a lock race.
func (s *Service) SubmitOrder(ctx context.Context, buyerID int) (int, error) {
	start := time.Now()
	orderID, err := s.submitOrder(ctx, buyerID)
	s.metrics.ObserveCheckout(checkoutResult(err), time.Since(start))
	return orderID, err
}

func (s *Service) submitOrder(ctx context.Context, buyerID int) (int, error) {
	plan, total, err := s.validate(ctx, buyerID)
	if err != nil {
		return 0, err
	}

	var (
		orderID int
		credits map[int]int64
	)
	backoff := retry.WithMaxRetries(s.retries, retry.NewExponential(s.backoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		orderID, credits, err = s.commit(ctx, buyerID, plan, total)
		if err != nil && (pg.IsRetryable(err) || errors.Is(err, errSellerGone)) {
			zap.L().Info("checkout lost a lock race, retrying", zap.Int("buyer_id", buyerID), zap.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, errSellerGone):
			return 0, ErrInventoryConflict
		case errors.Is(err, balanceservice.ErrInsufficientFunds):
			return 0, err
		default:
			zap.L().Error("failed to commit order", zap.Int("buyer_id", buyerID), zap.Error(err))
			return 0, fmt.Errorf("%w: %w", ErrOrderProcessing, err)
		}
	}

	s.metrics.AddOrderTotal(total)
	s.metrics.ObserveAdjustment(-total)
	for _, credit := range credits {
		s.metrics.ObserveAdjustment(credit)
	}
	zap.L().Info("order placed", zap.Int("order_id", orderID), zap.Int("buyer_id", buyerID), zap.Int64("total_cents", total))
	return orderID, nil
}

func (s *Service) validate(ctx context.Context, buyerID int) ([]plannedLine, int64, error) {
	items, err := s.carts.ListItems(ctx, buyerID)
	if err != nil {
		zap.L().Error("failed to load cart for checkout", zap.Error(err))
		return nil, 0, fmt.Errorf("%w: %w", ErrOrderProcessing, err)
	}
	if len(items) == 0 {
		return nil, 0, &checkoutError{kind: ErrCartEmpty, msg: "Cart is empty"}
	}

	plan := make([]plannedLine, 0, len(items))
	var total int64
	for _, item := range items {
		name := productLabel(item)
		if item.Price == nil {
			return nil, 0, &checkoutError{
				kind: ErrMissingPrice,
				msg:  fmt.Sprintf("Product '%s' has no price", name),
			}
		}
		seller, err := s.inventory.FindBestSeller(ctx, item.ProductID, item.Quantity, buyerID)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrOrderProcessing, err)
		}
		if seller == nil {
			return nil, 0, &checkoutError{
				kind: ErrNoSeller,
				msg:  fmt.Sprintf("Product '%s' has no seller with sufficient inventory (need %d)", name, item.Quantity),
			}
		}

		unitPrice := money.ToCents(*item.Price)
		if unitPrice > 0 && int64(item.Quantity) > math.MaxInt64/unitPrice ||
			total > math.MaxInt64-unitPrice*int64(item.Quantity) {
			return nil, 0, &checkoutError{
				kind: ErrAmountTooLarge,
				msg:  fmt.Sprintf("Product '%s' pushes the order total past the supported amount", name),
			}
		}
		total += unitPrice * int64(item.Quantity)
		plan = append(plan, plannedLine{
			productID:      item.ProductID,
			quantity:       item.Quantity,
			unitPriceCents: unitPrice,
		})
	}

	balance, err := s.ledger.GetBalance(ctx, buyerID)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrOrderProcessing, err)
	}
	if balance < total {
		return nil, 0, &checkoutError{
			kind: ErrInsufficientBalance,
			msg:  fmt.Sprintf("Insufficient balance. Required: %s, Available: %s", money.Format(total), money.Format(balance)),
		}
	}
	return plan, total, nil
}

// commit writes the order. Inventory rows are locked in product id order and
// balance rows in user id order so concurrent checkouts queue instead of
// deadlocking.
func (s *Service) commit(ctx context.Context, buyerID int, plan []plannedLine, total int64) (int, map[int]int64, error) {
	lines := slices.Clone(plan)
	slices.SortFunc(lines, func(a, b plannedLine) int { return a.productID - b.productID })

	var (
		order   = &domain.Order{BuyerID: buyerID, TotalCents: total}
		credits = make(map[int]int64)
	)
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateOrder(ctx, order); err != nil {
			return err
		}

		for _, planned := range lines {
			seller, err := s.inventory.LockBestSeller(ctx, planned.productID, planned.quantity, buyerID)
			if err != nil {
				return err
			}
			if seller == nil {
				return fmt.Errorf("%w: product %d", errSellerGone, planned.productID)
			}

			line := &domain.OrderLine{
				OrderID:        order.ID,
				ProductID:      planned.productID,
				SellerID:       seller.UserID,
				Quantity:       planned.quantity,
				UnitPriceCents: planned.unitPriceCents,
			}
			if err := s.repo.CreateLine(ctx, line); err != nil {
				return err
			}
			ok, err := s.inventory.Decrement(ctx, seller.UserID, planned.productID, planned.quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: product %d", errSellerGone, planned.productID)
			}
			credits[seller.UserID] += line.LineTotalCents()
		}

		for _, adj := range ledgerEntries(order.ID, buyerID, total, credits) {
			if _, err := s.ledger.AdjustBalance(ctx, adj.userID, adj.delta, adj.note); err != nil {
				return err
			}
		}
		return s.carts.Clear(ctx, buyerID)
	})
	if err != nil {
		return 0, nil, err
	}
	return order.ID, credits, nil
}

type ledgerEntry struct {
	userID int
	delta  int64
	note   string
}

// ledgerEntries lists the buyer debit and one credit per seller, ordered by
// user id.
func ledgerEntries(orderID, buyerID int, total int64, credits map[int]int64) []ledgerEntry {
	entries := make([]ledgerEntry, 0, len(credits)+1)
	entries = append(entries, ledgerEntry{userID: buyerID, delta: -total, note: fmt.Sprintf("Order #%d", orderID)})
	for sellerID, amount := range credits {
		entries = append(entries, ledgerEntry{userID: sellerID, delta: amount, note: fmt.Sprintf("Order #%d sale", orderID)})
	}
	slices.SortFunc(entries, func(a, b ledgerEntry) int { return a.userID - b.userID })
	return entries
}

func (s *Service) GetOrderDetail(ctx context.Context, orderID int) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		zap.L().Error("failed to get order", zap.Int("order_id", orderID), zap.Error(err))
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// FulfillLine marks one of the seller's order lines as handed over. The
// stamp is set once and never cleared.
func (s *Service) FulfillLine(ctx context.Context, sellerID, lineID int) error {
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		line, err := s.repo.LockLine(ctx, lineID)
		if err != nil {
			return err
		}
		if line == nil || line.SellerID != sellerID {
			return ErrLineNotFound
		}
		if line.FulfilledAt != nil {
			return ErrAlreadyFulfilled
		}

		orderFulfilled, err := s.repo.FulfillLine(ctx, line)
		if err != nil {
			return err
		}
		zap.L().Info("order line fulfilled",
			zap.Int("line_id", lineID), zap.Int("order_id", line.OrderID), zap.Bool("order_fulfilled", orderFulfilled))
		return nil
	})
	if err != nil && !errors.Is(err, ErrLineNotFound) && !errors.Is(err, ErrAlreadyFulfilled) {
		zap.L().Error("failed to fulfill order line", zap.Int("line_id", lineID), zap.Error(err))
	}
	return err
}

func productLabel(item domain.CartLine) string {
	if item.Name != nil {
		return *item.Name
	}
	return fmt.Sprintf("#%d", item.ProductID)
}

func checkoutResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case IsValidation(err):
		return metrics.ResultValidation
	case errors.Is(err, ErrInventoryConflict), errors.Is(err, balanceservice.ErrInsufficientFunds):
		return metrics.ResultConflict
	default:
		return metrics.ResultError
	}
}
