package repositories

import (
	"context"

	"kedai/internal/models"
)

// DiscountRepository defines the interface for discount code data access.
type DiscountRepository interface {
	Create(ctx context.Context, code *models.DiscountCode) error
	GetByID(ctx context.Context, id uint) (*models.DiscountCode, error)
	// FindByCode matches case-insensitively.
	FindByCode(ctx context.Context, code string) (*models.DiscountCode, error)
	// IncrementUsage bumps TimesUsed only while it is below MaxUses, as one
	// atomic statement. It returns ErrDiscountExhausted when the cap is hit.
	IncrementUsage(ctx context.Context, id uint) error
	// DecrementUsage undoes a previous IncrementUsage. It never goes below zero.
	DecrementUsage(ctx context.Context, id uint) error
}
