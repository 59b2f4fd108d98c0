package balancerepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/pg"
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

// CreateUserBalance inserts a zero balance row unless one already exists.
func (r *Repository) CreateUserBalance(ctx context.Context, userID int) error {
	query := `
		INSERT INTO account_balance (user_id, balance_cents)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		zap.L().Error("failed to create user balance", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) GetUserBalance(ctx context.Context, userID int) (*domain.Balance, error) {
	query := `
		SELECT user_id, balance_cents
		FROM account_balance
		WHERE user_id = $1
	`
	return r.scanBalance(r.db.QueryRow(ctx, query, userID))
}

// GetUserBalanceForUpdate reads the balance row and holds its row lock until
// the surrounding transaction ends.
func (r *Repository) GetUserBalanceForUpdate(ctx context.Context, userID int) (*domain.Balance, error) {
	query := `
		SELECT user_id, balance_cents
		FROM account_balance
		WHERE user_id = $1
		FOR UPDATE
	`
	return r.scanBalance(r.db.QueryRow(ctx, query, userID))
}

func (r *Repository) scanBalance(row pgx.Row) (*domain.Balance, error) {
	var balance domain.Balance
	err := row.Scan(&balance.UserID, &balance.BalanceCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to get user balance", zap.Error(err))
		return nil, err
	}
	return &balance, nil
}

func (r *Repository) UpdateUserBalance(ctx context.Context, userID int, balanceCents int64) error {
	query := `
		UPDATE account_balance
		SET balance_cents = $1
		WHERE user_id = $2
	`
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, query, balanceCents, userID)
		if err != nil {
			zap.L().Error("failed to update user balance", zap.Error(err))
			return err
		}
		if tag.RowsAffected() != 1 {
			zap.L().Error("balance row not found", zap.Int("user_id", userID))
			return pgx.ErrNoRows
		}
		return nil
	})
}
