package orders

import (
	"errors"
	"fmt"
)

// Kind classifies a failed order operation.
type Kind string

const (
	KindValidation          Kind = "validation_error"
	KindUserNotFound        Kind = "user_not_found"
	KindProductNotFound     Kind = "product_not_found"
	KindInsufficientStock   Kind = "insufficient_stock"
	KindInvalidDiscountCode Kind = "invalid_discount_code"
	KindStoreUnavailable    Kind = "store_unavailable"
	KindPersistence         Kind = "persistence_error"
	KindUnauthorized        Kind = "unauthorized"
)

type Error struct {
	Kind        Kind
	ProductID   string
	ProductName string
	Detail      string
	Err         error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindValidation:
		return "invalid request: " + e.Detail
	case KindUserNotFound:
		return "User not found"
	case KindProductNotFound:
		return "Product not found: " + e.ProductID
	case KindInsufficientStock:
		return "Insufficient quantity for product: " + e.ProductName
	case KindInvalidDiscountCode:
		return "Invalid or unavailable discount code"
	case KindStoreUnavailable:
		return "Database error. Please try again later."
	case KindPersistence:
		return "Error processing order. Please try again."
	case KindUnauthorized:
		return "Unauthorized. Only admins can change this setting."
	}
	return fmt.Sprintf("order error (%s)", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Indeterminate reports whether the outcome of the operation is unknown:
// the store may or may not hold the changes.
func (e *Error) Indeterminate() bool {
	return e.Kind == KindPersistence
}

// KindOf returns the Kind carried by err, or "" for errors that did not come
// from this package.
func KindOf(err error) Kind {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return ""
}

func validationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}
