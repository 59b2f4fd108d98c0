package purchaseservice

import (
	"context"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/pkg/pagination"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=purchaseservice.go -destination=mock_purchaseservice.go -package=purchaseservice

type Repo interface {
	CountOrders(ctx context.Context, scope domain.PurchaseScope, filter domain.PurchaseFilter) (int, error)
	ListOrders(ctx context.Context, scope domain.PurchaseScope, filter domain.PurchaseFilter, limit, offset int) ([]domain.PurchaseOrder, error)
	Summary(ctx context.Context, buyerID int) (*domain.PurchaseSummary, error)
}
type UserChecker interface {
	Exists(ctx context.Context, id int) (bool, error)
}

type Service struct {
	repo  Repo
	users UserChecker
}

func New(repo Repo, users UserChecker) *Service {
	return &Service{
		repo:  repo,
		users: users,
	}
}

var ErrUserNotFound = domain.ErrUserNotFound

// GetPurchasesForUser lists the buyer's orders newest first together with the
// total number of matching orders.
func (s *Service) GetPurchasesForUser(ctx context.Context, buyerID, limit, offset int, filter domain.PurchaseFilter) (*domain.PurchasePage, error) {
	return s.list(ctx, domain.PurchaseScope{UserID: buyerID}, limit, offset, filter)
}

// GetSalesForSeller lists orders containing lines sold by sellerID.
func (s *Service) GetSalesForSeller(ctx context.Context, sellerID, limit, offset int, filter domain.PurchaseFilter) (*domain.PurchasePage, error) {
	return s.list(ctx, domain.PurchaseScope{UserID: sellerID, AsSeller: true}, limit, offset, filter)
}

// GetPurchasePage reads a 1-based page of the buyer's orders. A page past
// the end is served as the last page; the page actually served is returned.
func (s *Service) GetPurchasePage(ctx context.Context, buyerID, page, perPage int, filter domain.PurchaseFilter) (*domain.PurchasePage, int, error) {
	scope := domain.PurchaseScope{UserID: buyerID}
	perPage, _ = pagination.Clamp(perPage, 0, pagination.DefaultLimit, pagination.MaxLimit)

	total, err := s.repo.CountOrders(ctx, scope, filter)
	if err != nil {
		zap.L().Error("failed to count purchases", zap.Error(err))
		return nil, 0, err
	}
	page = min(max(page, 1), pagination.LastPage(total, perPage))

	orders, err := s.repo.ListOrders(ctx, scope, filter, perPage, pagination.Offset(page, perPage))
	if err != nil {
		zap.L().Error("failed to list purchases", zap.Error(err))
		return nil, 0, err
	}
	return &domain.PurchasePage{Orders: orders, TotalOrders: total}, page, nil
}

func (s *Service) GetPurchaseSummary(ctx context.Context, userID int) (*domain.PurchaseSummary, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		zap.L().Error("failed to check user", zap.Error(err))
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	summary, err := s.repo.Summary(ctx, userID)
	if err != nil {
		zap.L().Error("failed to summarize purchases", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return summary, nil
}

func (s *Service) list(ctx context.Context, scope domain.PurchaseScope, limit, offset int, filter domain.PurchaseFilter) (*domain.PurchasePage, error) {
	limit, offset = pagination.Clamp(limit, offset, pagination.DefaultLimit, pagination.MaxLimit)

	var (
		total  int
		orders []domain.PurchaseOrder
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.repo.CountOrders(gctx, scope, filter)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.repo.ListOrders(gctx, scope, filter, limit, offset)
		return err
	})
	if err := g.Wait(); err != nil {
		zap.L().Error("failed to load purchases",
			zap.Int("user_id", scope.UserID), zap.Bool("as_seller", scope.AsSeller), zap.Error(err))
		return nil, err
	}
	return &domain.PurchasePage{Orders: orders, TotalOrders: total}, nil
}
