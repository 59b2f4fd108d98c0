package inventoryrepo

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

// AddStock creates the (seller, product) entry or increments its quantity.
func (r *Repository) AddStock(ctx context.Context, sellerID, productID, quantity int) error {
	query := `
		INSERT INTO inventory (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = inventory.quantity + EXCLUDED.quantity
	`
	if _, err := r.db.Exec(ctx, query, sellerID, productID, quantity); err != nil {
		zap.L().Error("can't add stock", zap.Error(err))
		return err
	}
	return nil
}

// SetQuantity creates the (seller, product) entry or overwrites its quantity.
func (r *Repository) SetQuantity(ctx context.Context, sellerID, productID, quantity int) error {
	query := `
		INSERT INTO inventory (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity
	`
	if _, err := r.db.Exec(ctx, query, sellerID, productID, quantity); err != nil {
		zap.L().Error("can't set stock quantity", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) LockEntry(ctx context.Context, sellerID, productID int) (*domain.InventoryEntry, error) {
	query := `
		SELECT user_id, product_id, quantity
		FROM inventory
		WHERE user_id = $1 AND product_id = $2
		FOR UPDATE
	`
	return scanEntry(r.db.QueryRow(ctx, query, sellerID, productID))
}

// HasOutstandingOrders reports whether an unfulfilled order line still
// references the seller's stock of the product.
func (r *Repository) HasOutstandingOrders(ctx context.Context, sellerID, productID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM order_items
			WHERE seller_id = $1 AND product_id = $2 AND fulfilled_at IS NULL
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, sellerID, productID).Scan(&exists); err != nil {
		zap.L().Error("can't check outstanding orders", zap.Error(err))
		return false, err
	}
	return exists, nil
}

func (r *Repository) Delete(ctx context.Context, sellerID, productID int) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM inventory WHERE user_id = $1 AND product_id = $2`, sellerID, productID)
	if err != nil {
		zap.L().Error("can't delete inventory entry", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const bestSellerQuery = `
		SELECT user_id, product_id, quantity
		FROM inventory
		WHERE product_id = $1 AND quantity >= $2 AND user_id <> $3
		ORDER BY quantity DESC, user_id ASC
		LIMIT 1
	`

// FindBestSeller picks the seller holding the most stock of the product that
// can cover quantity on their own, ties broken by lowest user id. The buyer
// is never a candidate.
func (r *Repository) FindBestSeller(ctx context.Context, productID, quantity, buyerID int) (*domain.InventoryEntry, error) {
	return scanEntry(r.db.QueryRow(ctx, bestSellerQuery, productID, quantity, buyerID))
}

// LockBestSeller is FindBestSeller holding a row lock on the chosen entry
// until the surrounding transaction ends.
func (r *Repository) LockBestSeller(ctx context.Context, productID, quantity, buyerID int) (*domain.InventoryEntry, error) {
	return scanEntry(r.db.QueryRow(ctx, bestSellerQuery+" FOR UPDATE", productID, quantity, buyerID))
}

// Decrement removes quantity from the entry, reporting false when the entry
// no longer holds enough stock.
func (r *Repository) Decrement(ctx context.Context, sellerID, productID, quantity int) (bool, error) {
	query := `
		UPDATE inventory
		SET quantity = quantity - $1
		WHERE user_id = $2 AND product_id = $3 AND quantity >= $1
	`
	tag, err := r.db.Exec(ctx, query, quantity, sellerID, productID)
	if err != nil {
		zap.L().Error("can't decrement inventory", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int) ([]domain.InventoryItem, error) {
	query := `
		SELECT i.product_id, i.quantity, p.name, p.price::text, p.available
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		WHERE i.user_id = $1
		ORDER BY p.name, i.product_id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't list inventory", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.InventoryItem, 0)
	for rows.Next() {
		var (
			item  domain.InventoryItem
			price *string
		)
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Name, &price, &item.Available); err != nil {
			zap.L().Error("can't scan inventory row", zap.Error(err))
			return nil, err
		}
		if item.Price, err = productrepo.ParsePrice(price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanEntry(row pgx.Row) (*domain.InventoryEntry, error) {
	var entry domain.InventoryEntry
	err := row.Scan(&entry.UserID, &entry.ProductID, &entry.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't read inventory entry", zap.Error(err))
		return nil, err
	}
	return &entry, nil
}
