package repositories

import (
	"context"
	"fmt"

	"kedai/internal/models"

	"gorm.io/gorm"
)

// GORMPaymentRepository is a GORM implementation of PaymentRepository.
type GORMPaymentRepository struct {
	db *gorm.DB
}

// NewGORMPaymentRepository creates a new instance of GORMPaymentRepository.
func NewGORMPaymentRepository(db *gorm.DB) *GORMPaymentRepository {
	return &GORMPaymentRepository{
		db: db,
	}
}

// Create appends a payment transaction.
func (r *GORMPaymentRepository) Create(ctx context.Context, txn *models.PaymentTransaction) error {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return fmt.Errorf("failed to record payment for order %s: %w", txn.OrderID, err)
	}
	return nil
}

// ListByOrder returns the payment attempts of an order, oldest first.
func (r *GORMPaymentRepository) ListByOrder(ctx context.Context, orderID string) ([]models.PaymentTransaction, error) {
	var txns []models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for order %s: %w", orderID, err)
	}
	return txns, nil
}
