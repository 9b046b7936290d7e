package repositories

import (
	"context"

	"kedai/internal/models"
)

// MenuRepository is the read side of the menu catalog used when adding to cart.
type MenuRepository interface {
	GetByID(ctx context.Context, id string) (*models.MenuItem, error)
	// Create is used for seeding; menu maintenance lives outside this service.
	Create(ctx context.Context, item *models.MenuItem) error
}
