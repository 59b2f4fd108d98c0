package dto

import "github.com/shopspring/decimal"

type ProductDTO struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       *string `json:"price" example:"12.50"`
	Available   bool    `json:"available"`
}

// Price renders a nullable product price with two decimals.
func Price(p *decimal.Decimal) *string {
	if p == nil {
		return nil
	}
	s := p.StringFixed(2)
	return &s
}
