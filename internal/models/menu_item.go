package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem is the catalog entry a cart line is priced from.
// Menu maintenance happens outside this service; checkout only reads it.
type MenuItem struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,max=36"`
	Name        string          `json:"name" gorm:"type:varchar(100);not null" validate:"required,min=2,max=100"`
	Description string          `json:"description" validate:"omitempty,max=500"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	IsAvailable bool            `json:"is_available" gorm:"not null"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
