package productrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/pg"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price::text, available
		FROM products
		WHERE id = $1
	`
	var (
		product domain.Product
		price   *string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(&product.ID, &product.Name, &product.Description, &price, &product.Available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find product", zap.Error(err))
		return nil, err
	}
	if product.Price, err = ParsePrice(price); err != nil {
		zap.L().Error("can't parse product price", zap.Int("product_id", id), zap.Error(err))
		return nil, err
	}
	return &product, nil
}

// ListFeatured returns up to limit available, priced products that some
// seller currently stocks.
func (r *Repository) ListFeatured(ctx context.Context, limit int) ([]domain.Product, error) {
	query := `
		SELECT p.id, p.name, p.description, p.price::text, p.available
		FROM products p
		WHERE p.available
		  AND p.price IS NOT NULL
		  AND EXISTS (SELECT 1 FROM inventory i WHERE i.product_id = p.id AND i.quantity > 0)
		ORDER BY p.id
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		zap.L().Error("can't list featured products", zap.Error(err))
		return nil, err
	}
	return scanProducts(rows, limit)
}

// ListTopExpensive returns up to limit available products, highest price
// first. Unpriced products are left out.
func (r *Repository) ListTopExpensive(ctx context.Context, limit int) ([]domain.Product, error) {
	query := `
		SELECT id, name, description, price::text, available
		FROM products
		WHERE available
		  AND price IS NOT NULL
		ORDER BY price DESC, id
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		zap.L().Error("can't list most expensive products", zap.Error(err))
		return nil, err
	}
	return scanProducts(rows, limit)
}

func scanProducts(rows pgx.Rows, limit int) ([]domain.Product, error) {
	defer rows.Close()

	products := make([]domain.Product, 0, limit)
	for rows.Next() {
		var (
			product domain.Product
			price   *string
			err     error
		)
		if err := rows.Scan(&product.ID, &product.Name, &product.Description, &price, &product.Available); err != nil {
			zap.L().Error("can't scan product row", zap.Error(err))
			return nil, err
		}
		if product.Price, err = ParsePrice(price); err != nil {
			zap.L().Error("can't parse product price", zap.Int("product_id", product.ID), zap.Error(err))
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

// ParsePrice converts a NUMERIC column read as text into a decimal.
func ParsePrice(raw *string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	price, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, err
	}
	return &price, nil
}
