package dto

import "time"

type SubmitOrderResponseDTO struct {
	OrderID int    `json:"order_id"`
	Message string `json:"message"`
}

type OrderLineDTO struct {
	ID             int        `json:"id"`
	ProductID      int        `json:"product_id"`
	ProductName    string     `json:"product_name"`
	SellerID       int        `json:"seller_id"`
	SellerName     string     `json:"seller_name"`
	Quantity       int        `json:"quantity"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	LineTotalCents int64      `json:"line_total_cents"`
	FulfilledAt    *time.Time `json:"fulfilled_at"`
}

type OrderDTO struct {
	ID         int            `json:"id"`
	BuyerID    int            `json:"buyer_id"`
	CreatedAt  time.Time      `json:"created_at"`
	TotalCents int64          `json:"total_cents"`
	Total      string         `json:"total" example:"$25.00"`
	Fulfilled  bool           `json:"fulfilled"`
	Lines      []OrderLineDTO `json:"lines"`
}

type PurchaseLineDTO struct {
	LineID         int    `json:"line_id"`
	ProductID      int    `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
	Fulfilled      bool   `json:"fulfilled"`
	SellerID       int    `json:"seller_id"`
	SellerName     string `json:"seller_name"`
}

type PurchaseOrderDTO struct {
	OrderID      int               `json:"order_id"`
	CreatedAt    time.Time         `json:"created_at"`
	TotalCents   int64             `json:"total_cents"`
	ItemCount    int               `json:"item_count"`
	AllFulfilled bool              `json:"all_fulfilled"`
	Lines        []PurchaseLineDTO `json:"lines"`
}

type PurchasePageDTO struct {
	Orders      []PurchaseOrderDTO `json:"orders"`
	TotalOrders int                `json:"total_orders"`
	Page        int                `json:"page,omitempty"`
}

type PurchaseSummaryDTO struct {
	OrderCount  int        `json:"order_count"`
	TotalCents  int64      `json:"total_cents"`
	Total       string     `json:"total" example:"$42.00"`
	LastOrderAt *time.Time `json:"last_order_at"`
}
