package orderrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (buyer_id, total_cents, fulfilled)
		VALUES ($1, $2, FALSE)
		RETURNING id, created_at
	`
	if err := r.db.QueryRow(ctx, query, order.BuyerID, order.TotalCents).Scan(&order.ID, &order.CreatedAt); err != nil {
		zap.L().Error("can't save order", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) CreateLine(ctx context.Context, line *domain.OrderLine) error {
	query := `
		INSERT INTO order_items (order_id, product_id, seller_id, quantity, unit_price_cents)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query, line.OrderID, line.ProductID, line.SellerID, line.Quantity, line.UnitPriceCents).Scan(&line.ID)
	if err != nil {
		zap.L().Error("can't save order line", zap.Error(err))
		return err
	}
	return nil
}

// FindByID loads an order with its lines, or nil when it does not exist.
func (r *Repository) FindByID(ctx context.Context, orderID int) (*domain.Order, error) {
	query := `
		SELECT id, buyer_id, created_at, total_cents, fulfilled
		FROM orders
		WHERE id = $1
	`
	var order domain.Order
	err := r.db.QueryRow(ctx, query, orderID).Scan(&order.ID, &order.BuyerID, &order.CreatedAt, &order.TotalCents, &order.Fulfilled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find order", zap.Error(err))
		return nil, err
	}

	linesQuery := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.seller_id, oi.quantity, oi.unit_price_cents,
		       oi.fulfilled_at, p.name, s.full_name
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		JOIN users s ON s.id = oi.seller_id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`
	rows, err := r.db.Query(ctx, linesQuery, orderID)
	if err != nil {
		zap.L().Error("can't get order lines", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	order.Lines = make([]domain.OrderLine, 0)
	for rows.Next() {
		var line domain.OrderLine
		err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.SellerID, &line.Quantity,
			&line.UnitPriceCents, &line.FulfilledAt, &line.ProductName, &line.SellerName)
		if err != nil {
			zap.L().Error("can't scan order line row", zap.Error(err))
			return nil, err
		}
		order.Lines = append(order.Lines, line)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't iterate order lines", zap.Error(err))
		return nil, err
	}
	return &order, nil
}

// LockLine reads an order line and holds its row lock until the surrounding
// transaction ends.
func (r *Repository) LockLine(ctx context.Context, lineID int) (*domain.OrderLine, error) {
	query := `
		SELECT id, order_id, product_id, seller_id, quantity, unit_price_cents, fulfilled_at
		FROM order_items
		WHERE id = $1
		FOR UPDATE
	`
	var line domain.OrderLine
	err := r.db.QueryRow(ctx, query, lineID).Scan(&line.ID, &line.OrderID, &line.ProductID, &line.SellerID,
		&line.Quantity, &line.UnitPriceCents, &line.FulfilledAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't lock order line", zap.Error(err))
		return nil, err
	}
	return &line, nil
}

// FulfillLine stamps the line's fulfillment time once and recomputes the
// order's fulfilled flag. It returns the flag's new value.
func (r *Repository) FulfillLine(ctx context.Context, line *domain.OrderLine) (bool, error) {
	var fulfilled bool
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		err := r.db.QueryRow(ctx, `
			UPDATE order_items
			SET fulfilled_at = now()
			WHERE id = $1 AND fulfilled_at IS NULL
			RETURNING fulfilled_at
		`, line.ID).Scan(&line.FulfilledAt)
		if err != nil {
			zap.L().Error("can't fulfill order line", zap.Error(err))
			return err
		}

		err = r.db.QueryRow(ctx, `
			UPDATE orders
			SET fulfilled = NOT EXISTS (
				SELECT 1 FROM order_items WHERE order_id = $1 AND fulfilled_at IS NULL
			)
			WHERE id = $1
			RETURNING fulfilled
		`, line.OrderID).Scan(&fulfilled)
		if err != nil {
			zap.L().Error("can't refresh order fulfillment", zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return fulfilled, nil
}
