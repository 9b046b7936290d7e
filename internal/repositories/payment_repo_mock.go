package repositories

import (
	"context"
	"sync"
	"time"

	"kedai/internal/models"
)

// MockPaymentRepository is an in-memory implementation of PaymentRepository.
type MockPaymentRepository struct {
	txns []models.PaymentTransaction
	mu   sync.RWMutex
}

// NewMockPaymentRepository creates a new instance of MockPaymentRepository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{}
}

// Create appends a payment transaction.
func (r *MockPaymentRepository) Create(_ context.Context, txn *models.PaymentTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	txn.ID = uint(len(r.txns) + 1)
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}
	r.txns = append(r.txns, *txn)
	return nil
}

// ListByOrder returns the payment attempts of an order, oldest first.
func (r *MockPaymentRepository) ListByOrder(_ context.Context, orderID string) ([]models.PaymentTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var txns []models.PaymentTransaction
	for _, txn := range r.txns {
		if txn.OrderID == orderID {
			txns = append(txns, txn)
		}
	}
	return txns, nil
}
