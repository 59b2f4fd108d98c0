package catalogservice

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/pkg/cache"
	"go.uber.org/zap"
)

//go:generate mockgen -source=catalogservice.go -destination=mock_catalogservice.go -package=catalogservice

type Repo interface {
	FindByID(ctx context.Context, id int) (*domain.Product, error)
	ListFeatured(ctx context.Context, limit int) ([]domain.Product, error)
	ListTopExpensive(ctx context.Context, limit int) ([]domain.Product, error)
}
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

const (
	defaultFeatured = 20
	maxFeatured     = 100
	defaultTopK     = 5
)

type Service struct {
	repo  Repo
	cache Cache
	ttl   time.Duration
}

// New builds the catalog reader. A nil cache reads straight from the repository.
func New(repo Repo, cache Cache, ttl time.Duration) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
	}
}

var ErrProductNotFound = errors.New("product not found")

// Featured lists available priced products somebody holds stock of. Results
// are cached per limit for the configured TTL.
func (s *Service) Featured(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = defaultFeatured
	}
	limit = min(limit, maxFeatured)
	key := cache.Key("featured", strconv.Itoa(limit))

	if products, ok := s.fromCache(ctx, key); ok {
		return products, nil
	}

	products, err := s.repo.ListFeatured(ctx, limit)
	if err != nil {
		zap.L().Error("failed to list featured products", zap.Error(err))
		return nil, err
	}
	s.toCache(ctx, key, products)
	return products, nil
}

// TopExpensive lists the k most expensive available products. k defaults to
// 5 and is capped like the featured list.
func (s *Service) TopExpensive(ctx context.Context, k int) ([]domain.Product, error) {
	if k <= 0 {
		k = defaultTopK
	}
	k = min(k, maxFeatured)
	key := cache.Key("topk", strconv.Itoa(k))

	if products, ok := s.fromCache(ctx, key); ok {
		return products, nil
	}

	products, err := s.repo.ListTopExpensive(ctx, k)
	if err != nil {
		zap.L().Error("failed to list most expensive products", zap.Error(err))
		return nil, err
	}
	s.toCache(ctx, key, products)
	return products, nil
}

func (s *Service) Product(ctx context.Context, id int) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		zap.L().Error("failed to get product", zap.Int("product_id", id), zap.Error(err))
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *Service) fromCache(ctx context.Context, key string) ([]domain.Product, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			zap.L().Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var products []domain.Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		zap.L().Warn("catalog cache entry is corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return products, true
}

func (s *Service) toCache(ctx context.Context, key string, products []domain.Product) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(products)
	if err != nil {
		zap.L().Warn("can't encode cached products", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
		zap.L().Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
