package dto

import "time"

type BalanceResponseDTO struct {
	BalanceCents int64  `json:"balance_cents" example:"1250"`
	Balance      string `json:"balance" example:"$12.50"`
}

type AmountRequestDTO struct {
	Amount string `json:"amount" validate:"required" example:"12.50"`
}

type TransactionDTO struct {
	ID          int64     `json:"id"`
	AmountCents int64     `json:"amount_cents" example:"-300"`
	Amount      string    `json:"amount" example:"-$3.00"`
	Note        string    `json:"note" example:"Order #12"`
	CreatedAt   time.Time `json:"created_at"`
}
