package dto

type InventoryItemDTO struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     *string `json:"price" example:"12.50"`
	Available bool    `json:"available"`
}

type InventoryAddRequestDTO struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
	Quantity  int `json:"quantity" validate:"required,gt=0"`
}

type InventorySetRequestDTO struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}
