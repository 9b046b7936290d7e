package services

import (
	"errors"
	"fmt"

	"kedai/internal/models"
	"kedai/internal/repositories"
)

var (
	ErrCartEmpty            = errors.New("cart is empty")
	ErrMenuItemUnavailable  = errors.New("menu item is not available")
	ErrCartLineNotFound     = errors.New("cart line not found")
	ErrUnknownPaymentMethod = errors.New("invalid payment method selected")

	// Re-exported so callers of this package need not import repositories.
	ErrOrderNotFound     = repositories.ErrOrderNotFound
	ErrDiscountNotFound  = repositories.ErrDiscountNotFound
	ErrDiscountExhausted = repositories.ErrDiscountExhausted
	ErrMenuItemNotFound  = repositories.ErrMenuItemNotFound
)

// PaymentValidationError reports payment input that was rejected before any
// money moved. Reason is the customer-facing text.
type PaymentValidationError struct {
	Method models.PaymentMethod
	Reason string
}

func (e *PaymentValidationError) Error() string {
	return fmt.Sprintf("%s payment rejected: %s", e.Method, e.Reason)
}

// PaymentFailedError is returned by Checkout when settlement failed. The order
// it names has already been cancelled.
type PaymentFailedError struct {
	OrderID       string
	TransactionID string
	Reason        string
}

func (e *PaymentFailedError) Error() string {
	return fmt.Sprintf("payment %s for order %s failed: %s", e.TransactionID, e.OrderID, e.Reason)
}
