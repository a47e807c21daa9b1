package domain

type DiscountCode struct {
	Code        string `json:"code"`
	Discount    int    `json:"discount"`
	IsAvailable bool   `json:"isAvailable"`
}
