package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"kedai/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// Create adds a new order.
func (r *MockOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	for i := range order.Lines {
		order.Lines[i].ID = uint(i + 1)
		order.Lines[i].OrderID = order.ID
	}
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrOrderNotFound)
	}
	order = cloneOrder(order)
	return &order, nil
}

// Update writes the mutable fields of an order while its status is still from.
func (r *MockOrderRepository) Update(_ context.Context, order *models.Order, from models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok {
		return fmt.Errorf("order with ID %s: %w", order.ID, ErrOrderNotFound)
	}
	if stored.Status != from {
		return &models.TransitionError{From: stored.Status, To: order.Status}
	}
	stored.Status = order.Status
	stored.UpdatedAt = order.UpdatedAt
	stored.CompletedAt = order.CompletedAt
	stored.CancellationReason = order.CancellationReason
	r.orders[order.ID] = stored
	return nil
}

// ListByStatus returns orders newest first.
func (r *MockOrderRepository) ListByStatus(_ context.Context, status models.OrderStatus) ([]models.Order, error) {
	return r.filter(func(o models.Order) bool {
		return status == "" || o.Status == status
	}), nil
}

// ListByUser returns a customer's orders newest first.
func (r *MockOrderRepository) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	return r.filter(func(o models.Order) bool {
		return o.UserID != nil && *o.UserID == userID
	}), nil
}

// CountByStatus returns the number of orders per status.
func (r *MockOrderRepository) CountByStatus(_ context.Context) (map[models.OrderStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[models.OrderStatus]int64, len(models.OrderStatuses))
	for _, s := range models.OrderStatuses {
		counts[s] = 0
	}
	for _, o := range r.orders {
		counts[o.Status]++
	}
	return counts, nil
}

func (r *MockOrderRepository) filter(keep func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if keep(order) {
			orderList = append(orderList, cloneOrder(order))
		}
	}
	sort.Slice(orderList, func(i, j int) bool {
		return orderList[i].CreatedAt.After(orderList[j].CreatedAt)
	})
	return orderList
}

func cloneOrder(o models.Order) models.Order {
	o.Lines = append([]models.OrderLine(nil), o.Lines...)
	return o
}
