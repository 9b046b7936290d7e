package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountCode is a percentage discount redeemable at checkout.
type DiscountCode struct {
	ID                uint                `json:"id" gorm:"primaryKey"`
	Code              string              `json:"code" gorm:"type:varchar(20);uniqueIndex;not null" validate:"required,max=20"`
	Description       string              `json:"description" gorm:"type:varchar(100)" validate:"max=100"`
	Percentage        decimal.Decimal     `json:"percentage" gorm:"type:decimal(5,2);not null"`
	MaxDiscountAmount decimal.NullDecimal `json:"max_discount_amount" gorm:"type:decimal(10,2)"`
	MinOrderAmount    decimal.NullDecimal `json:"min_order_amount" gorm:"type:decimal(10,2)"`
	ExpiresAt         *time.Time          `json:"expires_at,omitempty"`
	MaxUses           *int                `json:"max_uses,omitempty" validate:"omitempty,gte=1"`
	TimesUsed         int                 `json:"times_used" gorm:"not null;default:0"`
	IsActive          bool                `json:"is_active" gorm:"not null"`
	CreatedAt         time.Time           `json:"created_at"`
}

// Exhausted reports whether the usage cap has been reached.
func (d *DiscountCode) Exhausted() bool {
	return d.MaxUses != nil && d.TimesUsed >= *d.MaxUses
}

// Expired reports whether now is past the expiry date.
func (d *DiscountCode) Expired(now time.Time) bool {
	return d.ExpiresAt != nil && now.After(*d.ExpiresAt)
}
