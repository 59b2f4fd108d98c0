package cartservice

import (
	"context"
	"errors"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/pg"
	"go.uber.org/zap"
)

//go:generate mockgen -source=cartservice.go -destination=mock_cartservice.go -package=cartservice

type Repo interface {
	GetOrCreateCart(ctx context.Context, userID int) (int, error)
	FindItem(ctx context.Context, cartID, productID int) (*domain.CartItem, error)
	InsertItem(ctx context.Context, cartID, productID, quantity int) error
	UpdateItemQuantity(ctx context.Context, itemID, quantity int) error
	DeleteItem(ctx context.Context, itemID int) error
	ListItems(ctx context.Context, userID int) ([]domain.CartLine, error)
	Clear(ctx context.Context, userID int) error
}
type ProductLookup interface {
	FindByID(ctx context.Context, id int) (*domain.Product, error)
}

type Service struct {
	repo      Repo
	products  ProductLookup
	txManager pg.TXManager
}

func New(repo Repo, products ProductLookup, txManager pg.TXManager) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		txManager: txManager,
	}
}

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product is not available")
	ErrInvalidQuantity    = errors.New("quantity change must not be zero")
)

func (s *Service) Get(ctx context.Context, userID int) ([]domain.CartLine, error) {
	lines, err := s.repo.ListItems(ctx, userID)
	if err != nil {
		zap.L().Error("failed to load cart", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return lines, nil
}

// Add changes the quantity of a product by delta. A line whose quantity drops
// to zero or below is removed.
func (s *Service) Add(ctx context.Context, userID, productID, delta int) error {
	if delta == 0 {
		return ErrInvalidQuantity
	}
	return s.mutate(ctx, userID, productID, func(current int) int {
		return current + delta
	})
}

// Set replaces the quantity of a product. Zero or below removes the line.
func (s *Service) Set(ctx context.Context, userID, productID, quantity int) error {
	return s.mutate(ctx, userID, productID, func(int) int {
		return quantity
	})
}

func (s *Service) Clear(ctx context.Context, userID int) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		zap.L().Error("failed to clear cart", zap.Int("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) mutate(ctx context.Context, userID, productID int, next func(current int) int) error {
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		cartID, err := s.repo.GetOrCreateCart(ctx, userID)
		if err != nil {
			return err
		}
		item, err := s.repo.FindItem(ctx, cartID, productID)
		if err != nil {
			return err
		}

		if item != nil {
			quantity := next(item.Quantity)
			if quantity <= 0 {
				return s.repo.DeleteItem(ctx, item.ID)
			}
			return s.repo.UpdateItemQuantity(ctx, item.ID, quantity)
		}

		quantity := next(0)
		if quantity <= 0 {
			return nil
		}
		if err := s.ensureAvailable(ctx, productID); err != nil {
			return err
		}
		return s.repo.InsertItem(ctx, cartID, productID, quantity)
	})
	if err != nil && !errors.Is(err, ErrProductNotFound) && !errors.Is(err, ErrProductUnavailable) {
		zap.L().Error("failed to update cart", zap.Int("user_id", userID), zap.Int("product_id", productID), zap.Error(err))
	}
	return err
}

func (s *Service) ensureAvailable(ctx context.Context, productID int) error {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	if !product.Available {
		return ErrProductUnavailable
	}
	return nil
}
