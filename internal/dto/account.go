package dto

import "time"

type AccountDTO struct {
	ID           int       `json:"id" example:"7"`
	Email        string    `json:"email" example:"ada@campus.edu"`
	FullName     string    `json:"full_name" example:"Ada Lovelace"`
	Address      string    `json:"address" example:"North Hall 214"`
	CreatedAt    time.Time `json:"created_at"`
	BalanceCents int64     `json:"balance_cents" example:"1250"`
	Balance      string    `json:"balance" example:"$12.50"`
}

// UpdateProfileRequestDTO changes only the fields that are present.
type UpdateProfileRequestDTO struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=254" example:"ada@campus.edu"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=100" example:"Ada Lovelace"`
	Address  *string `json:"address,omitempty" validate:"omitempty,max=255" example:"North Hall 214"`
}

type ChangePasswordRequestDTO struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type UserMatchDTO struct {
	ID        int       `json:"id" example:"7"`
	FullName  string    `json:"full_name" example:"Ada Lovelace"`
	Email     string    `json:"email" example:"ada@campus.edu"`
	Address   string    `json:"address" example:"North Hall 214"`
	CreatedAt time.Time `json:"created_at"`
	IsSeller  bool      `json:"is_seller"`
}
