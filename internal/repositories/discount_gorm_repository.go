package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kedai/internal/models"

	"gorm.io/gorm"
)

// GORMDiscountRepository is a GORM implementation of DiscountRepository.
type GORMDiscountRepository struct {
	db *gorm.DB
}

// NewGORMDiscountRepository creates a new instance of GORMDiscountRepository.
func NewGORMDiscountRepository(db *gorm.DB) *GORMDiscountRepository {
	return &GORMDiscountRepository{
		db: db,
	}
}

// Create stores a discount code. Codes are upper-cased so the unique index is
// effectively case-insensitive.
func (r *GORMDiscountRepository) Create(ctx context.Context, code *models.DiscountCode) error {
	code.Code = strings.ToUpper(strings.TrimSpace(code.Code))
	if err := r.db.WithContext(ctx).Create(code).Error; err != nil {
		return fmt.Errorf("failed to create discount code %s: %w", code.Code, err)
	}
	return nil
}

// GetByID retrieves a discount code by its ID.
func (r *GORMDiscountRepository) GetByID(ctx context.Context, id uint) (*models.DiscountCode, error) {
	var code models.DiscountCode
	if err := r.db.WithContext(ctx).First(&code, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("discount code with ID %d: %w", id, ErrDiscountNotFound)
		}
		return nil, fmt.Errorf("failed to get discount code by ID %d: %w", id, err)
	}
	return &code, nil
}

// FindByCode retrieves a discount code by its code, ignoring case.
func (r *GORMDiscountRepository) FindByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	var dc models.DiscountCode
	err := r.db.WithContext(ctx).
		First(&dc, "UPPER(code) = ?", strings.ToUpper(strings.TrimSpace(code))).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("discount code %s: %w", code, ErrDiscountNotFound)
		}
		return nil, fmt.Errorf("failed to find discount code %s: %w", code, err)
	}
	return &dc, nil
}

// IncrementUsage performs the check and the increment in one UPDATE so two
// concurrent checkouts cannot both take the last use.
func (r *GORMDiscountRepository) IncrementUsage(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.DiscountCode{}).
		Where("id = ? AND (max_uses IS NULL OR times_used < max_uses)", id).
		UpdateColumn("times_used", gorm.Expr("times_used + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("failed to increment usage for discount code %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("discount code %d: %w", id, ErrDiscountExhausted)
	}
	return nil
}

// DecrementUsage releases one previously claimed use.
func (r *GORMDiscountRepository) DecrementUsage(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.DiscountCode{}).
		Where("id = ? AND times_used > 0", id).
		UpdateColumn("times_used", gorm.Expr("times_used - ?", 1))
	if res.Error != nil {
		return fmt.Errorf("failed to decrement usage for discount code %d: %w", id, res.Error)
	}
	return nil
}
