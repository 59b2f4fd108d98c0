package transactionrepo

import (
	"context"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/pg"
	"go.uber.org/zap"
)

// Repository stores the append-only balance transaction log.
type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) CreateTransaction(ctx context.Context, tx *domain.BalanceTransaction) (*domain.BalanceTransaction, error) {
	query := `
		INSERT INTO balance_tx (user_id, amount_cents, note)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, tx.UserID, tx.AmountCents, tx.Note).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		zap.L().Error("can't save balance transaction", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

// GetTransactionsByUserID returns one page of the user's log, newest first.
func (r *Repository) GetTransactionsByUserID(ctx context.Context, userID, limit, offset int) ([]domain.BalanceTransaction, error) {
	query := `
		SELECT id, user_id, amount_cents, note, created_at
		FROM balance_tx
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		zap.L().Error("failed to fetch balance transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	transactions := make([]domain.BalanceTransaction, 0)
	for rows.Next() {
		var tx domain.BalanceTransaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.AmountCents, &tx.Note, &tx.CreatedAt); err != nil {
			zap.L().Error("failed to scan balance transaction row", zap.Error(err))
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("failed to iterate balance transactions", zap.Error(err))
		return nil, err
	}
	return transactions, nil
}
