package repositories

import (
	"context"

	"kedai/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create persists the order and its lines in one unit.
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// Update writes the mutable fields of an order: status, timestamps and
	// cancellation reason. Lines and money are never rewritten. The write only
	// applies while the stored status is still from; otherwise it returns
	// *models.TransitionError from the current status.
	Update(ctx context.Context, order *models.Order, from models.OrderStatus) error
	// ListByStatus returns orders newest first. An empty status lists every order.
	ListByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error)
}
