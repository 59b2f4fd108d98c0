package dto

type CartLineDTO struct {
	ItemID    int     `json:"item_id"`
	ProductID int     `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Name      *string `json:"name"`
	Price     *string `json:"price" example:"12.50"`
}

type CartResponseDTO struct {
	Items []CartLineDTO `json:"items"`
}

type CartAddRequestDTO struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
	Quantity  int `json:"quantity" example:"1"`
}

type CartSetRequestDTO struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
	Quantity  int `json:"quantity" example:"3"`
}
