package domain

import "github.com/shopspring/decimal"

type Product struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
}

// ProductPatch carries a partial catalog update. Nil fields are left unchanged.
type ProductPatch struct {
	Name     *string          `json:"name,omitempty"`
	Quantity *int             `json:"quantity,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Image    *string          `json:"image,omitempty"`
}
