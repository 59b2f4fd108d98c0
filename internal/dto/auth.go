package dto

type RegisterRequestDTO struct {
	Email    string `json:"email" validate:"required,email,max=254" example:"ada@campus.edu"`
	FullName string `json:"full_name" validate:"required,max=100" example:"Ada Lovelace"`
	Address  string `json:"address" validate:"max=255" example:"North Hall 214"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type RegisterResponseDTO struct {
	Message string `json:"message"`
	UserID  int    `json:"user_id"`
}

type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required,email" example:"ada@campus.edu"`
	Password string `json:"password" validate:"required"`
}

type LoginResponseDTO struct {
	Message string `json:"message"`
}
