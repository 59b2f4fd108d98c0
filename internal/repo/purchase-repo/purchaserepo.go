package purchaserepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/pg"
	"go.uber.org/zap"
)

// Repository serves read-only purchase history queries.
type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

const lineJoins = `
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN products p ON p.id = oi.product_id
		JOIN users s ON s.id = oi.seller_id
	`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildWhere renders the scope and filter as a WHERE body over lineJoins with
// positional arguments starting at $1.
func buildWhere(scope domain.PurchaseScope, f domain.PurchaseFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if scope.AsSeller {
		add("oi.seller_id = $%d", scope.UserID)
	} else {
		add("o.buyer_id = $%d", scope.UserID)
	}
	if f.StartAt != nil {
		add("o.created_at >= $%d", *f.StartAt)
	}
	if f.EndBefore != nil {
		add("o.created_at < $%d", *f.EndBefore)
	}
	if q := strings.TrimSpace(f.ItemQuery); q != "" {
		add("p.name ILIKE $%d", "%"+likeEscaper.Replace(q)+"%")
	}
	if f.SellerID != nil {
		add("oi.seller_id = $%d", *f.SellerID)
	}
	if name := strings.TrimSpace(f.SellerName); name != "" {
		add("s.full_name ILIKE $%d", "%"+likeEscaper.Replace(name)+"%")
	}
	return strings.Join(conds, " AND "), args
}

// CountOrders counts distinct orders with at least one line matching the filter.
func (r *Repository) CountOrders(ctx context.Context, scope domain.PurchaseScope, filter domain.PurchaseFilter) (int, error) {
	where, args := buildWhere(scope, filter)
	query := "SELECT COUNT(DISTINCT o.id)" + lineJoins + "WHERE " + where

	var total int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		zap.L().Error("can't count purchases", zap.Error(err))
		return 0, err
	}
	return total, nil
}

// ListOrders returns one page of matching orders, newest first, each carrying
// only its matching lines ordered by line id.
func (r *Repository) ListOrders(ctx context.Context, scope domain.PurchaseScope, filter domain.PurchaseFilter, limit, offset int) ([]domain.PurchaseOrder, error) {
	where, args := buildWhere(scope, filter)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		WITH matched AS (
			SELECT o.id AS order_id, o.created_at, o.total_cents,
			       oi.id AS line_id, oi.product_id, p.name AS product_name,
			       oi.quantity, oi.unit_price_cents,
			       (oi.fulfilled_at IS NOT NULL) AS fulfilled,
			       oi.seller_id, s.full_name AS seller_name
			%s
			WHERE %s
		),
		page AS (
			SELECT DISTINCT order_id, created_at
			FROM matched
			ORDER BY created_at DESC, order_id DESC
			LIMIT $%d OFFSET $%d
		)
		SELECT m.order_id, m.created_at, m.total_cents, m.line_id, m.product_id, m.product_name,
		       m.quantity, m.unit_price_cents, m.fulfilled, m.seller_id, m.seller_name
		FROM page
		JOIN matched m ON m.order_id = page.order_id
		ORDER BY page.created_at DESC, page.order_id DESC, m.line_id
	`, lineJoins, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't list purchases", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.PurchaseOrder, 0, limit)
	for rows.Next() {
		var (
			orderID    int
			createdAt  time.Time
			totalCents int64
			line       domain.PurchaseLine
		)
		err := rows.Scan(&orderID, &createdAt, &totalCents, &line.LineID, &line.ProductID, &line.ProductName,
			&line.Quantity, &line.UnitPriceCents, &line.Fulfilled, &line.SellerID, &line.SellerName)
		if err != nil {
			zap.L().Error("can't scan purchase row", zap.Error(err))
			return nil, err
		}
		line.LineTotalCents = line.UnitPriceCents * int64(line.Quantity)

		if n := len(orders); n == 0 || orders[n-1].OrderID != orderID {
			orders = append(orders, domain.PurchaseOrder{
				OrderID:      orderID,
				CreatedAt:    createdAt,
				TotalCents:   totalCents,
				AllFulfilled: true,
			})
		}
		current := &orders[len(orders)-1]
		current.Lines = append(current.Lines, line)
		current.ItemCount++
		current.AllFulfilled = current.AllFulfilled && line.Fulfilled
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't iterate purchase rows", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

func (r *Repository) Summary(ctx context.Context, buyerID int) (*domain.PurchaseSummary, error) {
	query := `
		SELECT COUNT(id), COALESCE(SUM(total_cents), 0)::BIGINT, MAX(created_at)
		FROM orders
		WHERE buyer_id = $1
	`
	var summary domain.PurchaseSummary
	err := r.db.QueryRow(ctx, query, buyerID).Scan(&summary.OrderCount, &summary.TotalCents, &summary.LastOrderAt)
	if err != nil {
		zap.L().Error("can't get purchase summary", zap.Error(err))
		return nil, err
	}
	return &summary, nil
}
