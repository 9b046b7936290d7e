package repositories

import (
	"context"

	"kedai/internal/models"
)

// PaymentRepository is an append-only store of payment attempts.
type PaymentRepository interface {
	Create(ctx context.Context, txn *models.PaymentTransaction) error
	ListByOrder(ctx context.Context, orderID string) ([]models.PaymentTransaction, error)
}
