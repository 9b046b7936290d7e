package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the operational state of an order.
type OrderStatus string

const (
	OrderStatusReceived  OrderStatus = "Received"
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusPreparing OrderStatus = "Preparing"
	OrderStatusReady     OrderStatus = "Ready"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// OrderStatuses lists every status in workflow order.
var OrderStatuses = []OrderStatus{
	OrderStatusReceived,
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// nextStatus is the single forward step allowed from each non-terminal status.
var nextStatus = map[OrderStatus]OrderStatus{
	OrderStatusReceived:  OrderStatusPending,
	OrderStatusPending:   OrderStatusPreparing,
	OrderStatusPreparing: OrderStatusReady,
	OrderStatusReady:     OrderStatusCompleted,
}

// ParseOrderStatus converts a raw string into a known OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, status := range OrderStatuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", fmt.Errorf("invalid order status: %s", s)
}

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Next returns the forward status following s, if any.
func (s OrderStatus) Next() (OrderStatus, bool) {
	next, ok := nextStatus[s]
	return next, ok
}

// CanTransitionTo reports whether moving from s to next is in the transition table.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	forward, ok := nextStatus[s]
	return ok && forward == next
}

func (s OrderStatus) String() string {
	return string(s)
}

// TransitionError is returned when a status change is outside the transition table.
type TransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change status from %s to %s", e.From, e.To)
}

// OrderLine is a snapshot of a cart line taken when the order was placed.
// It does not reference the live menu item's price or name.
type OrderLine struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	OrderID    string          `json:"order_id" gorm:"type:varchar(36);index;not null"`
	MenuItemID string          `json:"menu_item_id" gorm:"type:varchar(36)"`
	Name       string          `json:"name" gorm:"type:varchar(100);not null"`
	UnitPrice  decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	Quantity   int             `json:"quantity" gorm:"not null"`
	Sweetness  string          `json:"sweetness,omitempty" gorm:"type:varchar(20)"`
	IceLevel   string          `json:"ice_level,omitempty" gorm:"type:varchar(20)"`
}

// LineTotal is UnitPrice × Quantity.
func (l OrderLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order represents a customer order.
type Order struct {
	ID                 string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID             *string         `json:"user_id,omitempty" gorm:"type:varchar(36);index"`
	Status             OrderStatus     `json:"status" gorm:"type:varchar(20);index;not null"`
	PaymentMethod      PaymentMethod   `json:"payment_method" gorm:"type:varchar(20);not null"`
	PaymentProvider    string          `json:"payment_provider" gorm:"type:varchar(50)"`
	Subtotal           decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	ServiceTax         decimal.Decimal `json:"service_tax" gorm:"type:decimal(10,2);not null"`
	SST                decimal.Decimal `json:"sst" gorm:"column:sst;type:decimal(10,2);not null"`
	GrandTotal         decimal.Decimal `json:"grand_total" gorm:"type:decimal(10,2);not null"`
	DiscountCodeID     *uint           `json:"discount_code_id,omitempty" gorm:"index"`
	DiscountAmount     decimal.Decimal `json:"discount_amount" gorm:"type:decimal(10,2);not null"`
	Lines              []OrderLine     `json:"lines" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          *time.Time      `json:"updated_at,omitempty" gorm:"autoUpdateTime:false"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
	CancellationReason *string         `json:"cancellation_reason,omitempty" gorm:"type:varchar(500)"`
}

// ChargeAmount is the amount sent to payment: GrandTotal less the discount.
func (o *Order) ChargeAmount() decimal.Decimal {
	return o.GrandTotal.Sub(o.DiscountAmount)
}

// TransitionTo moves the order to status to, stamping timestamps as it goes.
// reason is recorded only when cancelling. The order is left untouched on error.
func (o *Order) TransitionTo(to OrderStatus, reason string, now time.Time) error {
	if !o.Status.CanTransitionTo(to) {
		return &TransitionError{From: o.Status, To: to}
	}
	o.Status = to
	o.UpdatedAt = &now
	switch to {
	case OrderStatusCompleted:
		o.CompletedAt = &now
	case OrderStatusCancelled:
		r := reason
		o.CancellationReason = &r
	}
	return nil
}
