package cartrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/pg"
	productrepo "github.com/GlebRadaev/campusmart/internal/repo/product-repo"
	"github.com/jackc/pgx/v5"
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

// GetOrCreateCart returns the id of the user's cart, creating it on first use.
func (r *Repository) GetOrCreateCart(ctx context.Context, userID int) (int, error) {
	query := `
		INSERT INTO carts (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id
	`
	var cartID int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&cartID); err != nil {
		zap.L().Error("can't get or create cart", zap.Error(err))
		return 0, err
	}
	return cartID, nil
}

func (r *Repository) FindItem(ctx context.Context, cartID, productID int) (*domain.CartItem, error) {
	query := `
		SELECT id, cart_id, product_id, quantity
		FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
	`
	var item domain.CartItem
	err := r.db.QueryRow(ctx, query, cartID, productID).Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find cart item", zap.Error(err))
		return nil, err
	}
	return &item, nil
}

func (r *Repository) InsertItem(ctx context.Context, cartID, productID, quantity int) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.Exec(ctx, query, cartID, productID, quantity); err != nil {
		zap.L().Error("can't insert cart item", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) UpdateItemQuantity(ctx context.Context, itemID, quantity int) error {
	if _, err := r.db.Exec(ctx, `UPDATE cart_items SET quantity = $1 WHERE id = $2`, quantity, itemID); err != nil {
		zap.L().Error("can't update cart item", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) DeleteItem(ctx context.Context, itemID int) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID); err != nil {
		zap.L().Error("can't delete cart item", zap.Error(err))
		return err
	}
	return nil
}

// ListItems returns the user's cart lines in insertion order. Name and price
// stay nil for lines whose product row is gone.
func (r *Repository) ListItems(ctx context.Context, userID int) ([]domain.CartLine, error) {
	query := `
		SELECT ci.id, ci.product_id, ci.quantity, p.name, p.price::text
		FROM carts c
		JOIN cart_items ci ON ci.cart_id = c.id
		LEFT JOIN products p ON p.id = ci.product_id
		WHERE c.user_id = $1
		ORDER BY ci.id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't list cart items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	lines := make([]domain.CartLine, 0)
	for rows.Next() {
		var (
			line  domain.CartLine
			price *string
		)
		if err := rows.Scan(&line.ItemID, &line.ProductID, &line.Quantity, &line.Name, &price); err != nil {
			zap.L().Error("can't scan cart item row", zap.Error(err))
			return nil, err
		}
		if line.Price, err = productrepo.ParsePrice(price); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *Repository) Clear(ctx context.Context, userID int) error {
	query := `
		DELETE FROM cart_items
		WHERE cart_id = (SELECT id FROM carts WHERE user_id = $1)
	`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		zap.L().Error("can't clear cart", zap.Error(err))
		return err
	}
	return nil
}
