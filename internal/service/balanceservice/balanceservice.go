package balanceservice

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/GlebRadaev/campusmart/internal/domain"
	"github.com/GlebRadaev/campusmart/internal/pg"
	"github.com/GlebRadaev/campusmart/pkg/money"
	"github.com/GlebRadaev/campusmart/pkg/pagination"
	"go.uber.org/zap"
)

//go:generate mockgen -source=balanceservice.go -destination=mock_balanceservice.go -package=balanceservice

type BalanceRepo interface {
	CreateUserBalance(ctx context.Context, userID int) error
	GetUserBalance(ctx context.Context, userID int) (*domain.Balance, error)
	GetUserBalanceForUpdate(ctx context.Context, userID int) (*domain.Balance, error)
	UpdateUserBalance(ctx context.Context, userID int, balanceCents int64) error
}
type TransactionRepo interface {
	CreateTransaction(ctx context.Context, tx *domain.BalanceTransaction) (*domain.BalanceTransaction, error)
	GetTransactionsByUserID(ctx context.Context, userID, limit, offset int) ([]domain.BalanceTransaction, error)
}
type Metrics interface {
	ObserveAdjustment(deltaCents int64)
}

type Service struct {
	balanceRepo     BalanceRepo
	transactionRepo TransactionRepo
	txManager       pg.TXManager
	metrics         Metrics
}

func New(balanceRepo BalanceRepo, transactionRepo TransactionRepo, txManager pg.TXManager, metrics Metrics) *Service {
	return &Service{
		balanceRepo:     balanceRepo,
		transactionRepo: transactionRepo,
		txManager:       txManager,
		metrics:         metrics,
	}
}

const (
	NoteDeposit  = "manual deposit"
	NoteWithdraw = "manual withdraw"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be a positive number")
)

// GetBalance returns the user's balance in cents, 0 when no balance row exists.
func (s *Service) GetBalance(ctx context.Context, userID int) (int64, error) {
	balance, err := s.balanceRepo.GetUserBalance(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get balance", zap.Error(err))
		return 0, err
	}
	if balance == nil {
		return 0, nil
	}
	return balance.BalanceCents, nil
}

func (s *Service) CreateBalance(ctx context.Context, userID int) error {
	if err := s.balanceRepo.CreateUserBalance(ctx, userID); err != nil {
		zap.L().Error("failed to create balance", zap.Error(err))
		return err
	}
	return nil
}

// AdjustBalance applies deltaCents to the user's balance and records it in the
// transaction log, both or neither. It joins the caller's transaction when ctx
// carries one. A zero delta writes nothing and returns the current balance.
func (s *Service) AdjustBalance(ctx context.Context, userID int, deltaCents int64, note string) (int64, error) {
	if deltaCents == 0 {
		return s.GetBalance(ctx, userID)
	}

	var newBalance int64
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		if err := s.balanceRepo.CreateUserBalance(ctx, userID); err != nil {
			return err
		}
		balance, err := s.balanceRepo.GetUserBalanceForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if balance == nil {
			return fmt.Errorf("balance row for user %d not found", userID)
		}

		if deltaCents > 0 && balance.BalanceCents > math.MaxInt64-deltaCents {
			return fmt.Errorf("%w: balance %s cannot take %s more",
				ErrInvalidAmount, money.Format(balance.BalanceCents), money.Format(deltaCents))
		}
		newBalance = balance.BalanceCents + deltaCents
		if newBalance < 0 {
			return fmt.Errorf("%w: available %s, requested %s",
				ErrInsufficientFunds, money.Format(balance.BalanceCents), money.Format(-deltaCents))
		}
		if err := s.balanceRepo.UpdateUserBalance(ctx, userID, newBalance); err != nil {
			return err
		}
		_, err = s.transactionRepo.CreateTransaction(ctx, &domain.BalanceTransaction{
			UserID:      userID,
			AmountCents: deltaCents,
			Note:        note,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientFunds) || errors.Is(err, ErrInvalidAmount) {
			zap.L().Info("balance adjustment rejected", zap.Int("user_id", userID), zap.Int64("delta_cents", deltaCents))
		} else {
			zap.L().Error("failed to adjust balance", zap.Int("user_id", userID), zap.Error(err))
		}
		return 0, err
	}
	return newBalance, nil
}

// Deposit credits a user-entered amount such as "12.50".
func (s *Service) Deposit(ctx context.Context, userID int, amount string) (int64, error) {
	cents, err := parsePositive(amount)
	if err != nil {
		return 0, err
	}
	balance, err := s.AdjustBalance(ctx, userID, cents, NoteDeposit)
	if err != nil {
		return 0, err
	}
	s.metrics.ObserveAdjustment(cents)
	return balance, nil
}

// Withdraw debits a user-entered amount, failing with ErrInsufficientFunds
// when it exceeds the balance.
func (s *Service) Withdraw(ctx context.Context, userID int, amount string) (int64, error) {
	cents, err := parsePositive(amount)
	if err != nil {
		return 0, err
	}
	balance, err := s.AdjustBalance(ctx, userID, -cents, NoteWithdraw)
	if err != nil {
		return 0, err
	}
	s.metrics.ObserveAdjustment(-cents)
	return balance, nil
}

// History returns a page of the user's balance changes, newest first. The
// limit is clamped to pagination.MaxLimit and defaults to pagination.DefaultLimit.
func (s *Service) History(ctx context.Context, userID, limit, offset int) ([]domain.BalanceTransaction, error) {
	limit, offset = pagination.Clamp(limit, offset, pagination.DefaultLimit, pagination.MaxLimit)
	transactions, err := s.transactionRepo.GetTransactionsByUserID(ctx, userID, limit, offset)
	if err != nil {
		zap.L().Error("failed to fetch balance history", zap.Error(err))
		return nil, err
	}
	return transactions, nil
}

func parsePositive(amount string) (int64, error) {
	cents, err := money.ParseCents(amount)
	if err != nil || cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}
