package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod selects how an order is paid.
type PaymentMethod string

const (
	PaymentMethodPayAtCounter PaymentMethod = "PayAtCounter"
	PaymentMethodCard         PaymentMethod = "Card"
	PaymentMethodEWallet      PaymentMethod = "EWallet"
)

// ParsePaymentMethod rejects anything outside the known methods.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentMethodPayAtCounter, PaymentMethodCard, PaymentMethodEWallet:
		return m, nil
	}
	return "", fmt.Errorf("invalid payment method: %s", s)
}

// PaymentStatus is the outcome of a payment attempt.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusSuccess PaymentStatus = "Success"
	PaymentStatusFailed  PaymentStatus = "Failed"
)

// PaymentDetails carries the method-specific fields submitted at checkout.
// Full card data is never persisted.
type PaymentDetails struct {
	CardNumber      string `json:"card_number,omitempty"`
	CardHolderName  string `json:"card_holder_name,omitempty"`
	ExpiryMonth     string `json:"expiry_month,omitempty"`
	ExpiryYear      string `json:"expiry_year,omitempty"`
	CVV             string `json:"cvv,omitempty"`
	EWalletProvider string `json:"ewallet_provider,omitempty"`
	EWalletPhone    string `json:"ewallet_phone,omitempty"`
}

// PaymentTransaction is the audit record of one payment attempt.
type PaymentTransaction struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	OrderID       string          `json:"order_id" gorm:"type:varchar(36);index;not null"`
	PaymentMethod PaymentMethod   `json:"payment_method" gorm:"type:varchar(50);not null"`
	Provider      string          `json:"provider,omitempty" gorm:"type:varchar(50)"`
	TransactionID string          `json:"transaction_id" gorm:"type:varchar(100);index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Status        PaymentStatus   `json:"status" gorm:"type:varchar(20);not null"`
	CardLastFour  *string         `json:"card_last_four,omitempty" gorm:"type:varchar(4)"`
	CardBrand     *string         `json:"card_brand,omitempty" gorm:"type:varchar(20)"`
	ErrorMessage  *string         `json:"error_message,omitempty" gorm:"type:varchar(500)"`
	CreatedAt     time.Time       `json:"created_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// Succeeded reports whether the attempt settled.
func (t *PaymentTransaction) Succeeded() bool {
	return t.Status == PaymentStatusSuccess
}
