package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LineOptions are drink variants that make otherwise identical items distinct lines.
type LineOptions struct {
	Sweetness string `json:"sweetness,omitempty" validate:"omitempty,max=20"`
	IceLevel  string `json:"ice_level,omitempty" validate:"omitempty,max=20"`
}

// Matches compares options case-insensitively.
func (o LineOptions) Matches(other LineOptions) bool {
	return strings.EqualFold(o.Sweetness, other.Sweetness) &&
		strings.EqualFold(o.IceLevel, other.IceLevel)
}

// CartLine is one priced entry in a session cart.
type CartLine struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Options    LineOptions     `json:"options"`
}

// LineTotal is UnitPrice × Quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// SameLine reports whether l and other refer to the same item and variant.
func (l CartLine) SameLine(menuItemID string, opts LineOptions) bool {
	return l.MenuItemID == menuItemID && l.Options.Matches(opts)
}

// AppliedDiscount is the discount cached in a session. Amount is only valid
// against ComputedAgainst and must be recomputed before it is honoured.
type AppliedDiscount struct {
	Code            string          `json:"code"`
	Amount          decimal.Decimal `json:"amount"`
	ComputedAgainst decimal.Decimal `json:"computed_against"`
}

// Totals are the monetary figures derived from cart lines.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	ServiceTax decimal.Decimal `json:"service_tax"`
	SST        decimal.Decimal `json:"sst"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}
