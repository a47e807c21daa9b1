package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one caller-supplied purchase request. OrderedPrice is the price
// the client saw and may differ from the current catalog price.
type CartLine struct {
	ProductID    string          `json:"productId"`
	Quantity     int             `json:"quantity"`
	OrderedPrice decimal.Decimal `json:"orderedPrice"`
	Name         string          `json:"name,omitempty"`
}

type OrderItem struct {
	ProductID    string          `json:"productId"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	OrderedPrice decimal.Decimal `json:"orderedPrice"`
	Price        decimal.Decimal `json:"price"`
}

type Order struct {
	OrderID             string          `json:"orderId"`
	Items               []OrderItem     `json:"items"`
	TotalAmount         decimal.Decimal `json:"totalAmount"`
	DiscountApplied     decimal.Decimal `json:"discountApplied"`
	FinalAmount         decimal.Decimal `json:"finalAmount"`
	Date                time.Time       `json:"date"`
	AppliedDiscountCode string          `json:"appliedDiscountCode,omitempty"`
}

// PlacedOrder is an Order annotated with the user who placed it.
type PlacedOrder struct {
	Order
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}
