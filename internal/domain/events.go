package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderPlacedEvent struct {
	OrderID         string          `json:"orderId"`
	UserID          string          `json:"userId"`
	UserName        string          `json:"userName"`
	Email           string          `json:"email"`
	ItemCount       int             `json:"itemCount"`
	FinalAmount     decimal.Decimal `json:"finalAmount"`
	NewDiscountCode *DiscountCode   `json:"newDiscountCode,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}
