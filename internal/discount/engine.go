// Package discount decides when discount codes are minted and redeems codes
// supplied at checkout. It never touches the store; callers persist results.
package discount

import (
	"errors"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront/internal/domain"
)

const (
	CodeLength    = 8
	IssuedPercent = 10

	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxAttempts  = 5
)

var (
	ErrInvalidCode   = errors.New("invalid or unavailable discount code")
	ErrCodeExhausted = errors.New("could not generate a unique discount code")
)

var hundred = decimal.NewFromInt(100)

type Engine struct {
	newCode func() (string, error)
}

type Option func(*Engine)

// WithCodeSource replaces the random code generator.
func WithCodeSource(fn func() (string, error)) Option {
	return func(e *Engine) {
		e.newCode = fn
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		newCode: func() (string, error) {
			return gonanoid.Generate(codeAlphabet, CodeLength)
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Normalize returns the effective cadence.
func Normalize(cadence int) int {
	if cadence <= 0 {
		return domain.DefaultDiscountOrder
	}
	return cadence
}

// Due reports whether the order following ordersSoFar lands on the cadence.
func Due(ordersSoFar, cadence int) bool {
	return (ordersSoFar+1)%Normalize(cadence) == 0
}

// MaybeIssue mints a code when the next order is due one. It returns nil
// when no code is due.
func (e *Engine) MaybeIssue(ordersSoFar, cadence int, existing []domain.DiscountCode) (*domain.DiscountCode, error) {
	if !Due(ordersSoFar, cadence) {
		return nil, nil
	}
	code, err := e.mint(existing)
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (e *Engine) mint(existing []domain.DiscountCode) (domain.DiscountCode, error) {
	taken := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		taken[c.Code] = struct{}{}
	}

	for range maxAttempts {
		raw, err := e.newCode()
		if err != nil {
			return domain.DiscountCode{}, fmt.Errorf("generate discount code: %w", err)
		}
		code := NormalizeCode(raw)
		if _, dup := taken[code]; dup {
			continue
		}
		return domain.DiscountCode{
			Code:        code,
			Discount:    IssuedPercent,
			IsAvailable: true,
		}, nil
	}

	return domain.DiscountCode{}, ErrCodeExhausted
}

// Redeem finds the first available code matching code exactly and returns the
// discount it grants on total together with its index in codes. The caller
// marks codes[index] unavailable once it commits.
func Redeem(code string, codes []domain.DiscountCode, total decimal.Decimal) (decimal.Decimal, int, error) {
	for i, c := range codes {
		if c.Code != code || !c.IsAvailable {
			continue
		}
		pct := min(max(c.Discount, 0), 100)
		amount := total.Mul(decimal.NewFromInt(int64(pct))).Div(hundred)
		return amount, i, nil
	}
	return decimal.Zero, -1, ErrInvalidCode
}
