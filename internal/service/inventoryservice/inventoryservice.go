package inventoryservice

import (
	"context"
	"errors"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/pg"
	"go.uber.org/zap"
)

//go:generate mockgen -source=inventoryservice.go -destination=mock_inventoryservice.go -package=inventoryservice

type Repo interface {
	AddStock(ctx context.Context, sellerID, productID, quantity int) error
	SetQuantity(ctx context.Context, sellerID, productID, quantity int) error
	LockEntry(ctx context.Context, sellerID, productID int) (*domain.InventoryEntry, error)
	HasOutstandingOrders(ctx context.Context, sellerID, productID int) (bool, error)
	Delete(ctx context.Context, sellerID, productID int) (bool, error)
	ListByUser(ctx context.Context, userID int) ([]domain.InventoryItem, error)
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
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrProductNotFound      = errors.New("product not found")
	ErrEntryNotFound        = errors.New("inventory entry not found")
	ErrHasOutstandingOrders = errors.New("product has unfulfilled orders")
)

// AddStock increases the seller's quantity of a product, creating the entry
// when the seller has none yet.
func (s *Service) AddStock(ctx context.Context, sellerID, productID, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return err
	}
	if err := s.repo.AddStock(ctx, sellerID, productID, quantity); err != nil {
		zap.L().Error("failed to add stock", zap.Int("seller_id", sellerID), zap.Int("product_id", productID), zap.Error(err))
		return err
	}
	return nil
}

// SetQuantity overwrites the seller's quantity. Zero keeps the entry listed
// with nothing to sell.
func (s *Service) SetQuantity(ctx context.Context, sellerID, productID, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return err
	}
	if err := s.repo.SetQuantity(ctx, sellerID, productID, quantity); err != nil {
		zap.L().Error("failed to set stock", zap.Int("seller_id", sellerID), zap.Int("product_id", productID), zap.Error(err))
		return err
	}
	return nil
}

// Remove deletes the entry unless an order line for it is still waiting to be
// fulfilled.
func (s *Service) Remove(ctx context.Context, sellerID, productID int) error {
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		entry, err := s.repo.LockEntry(ctx, sellerID, productID)
		if err != nil {
			return err
		}
		if entry == nil {
			return ErrEntryNotFound
		}

		outstanding, err := s.repo.HasOutstandingOrders(ctx, sellerID, productID)
		if err != nil {
			return err
		}
		if outstanding {
			return ErrHasOutstandingOrders
		}

		deleted, err := s.repo.Delete(ctx, sellerID, productID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrEntryNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrEntryNotFound) && !errors.Is(err, ErrHasOutstandingOrders) {
		zap.L().Error("failed to remove inventory entry", zap.Error(err))
	}
	return err
}

func (s *Service) List(ctx context.Context, userID int) ([]domain.InventoryItem, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		zap.L().Error("failed to list inventory", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return items, nil
}

func (s *Service) ensureProduct(ctx context.Context, productID int) error {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	return nil
}
