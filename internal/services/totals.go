package services

import (
	"kedai/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ServiceTaxRate = decimal.RequireFromString("0.10")
	SSTRate        = decimal.RequireFromString("0.06")
)

// CalculateTotals derives the four money figures for a cart. Each figure is
// rounded to cents, half away from zero, before it feeds the next one.
func CalculateTotals(lines []models.CartLine) models.Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}
	subtotal = subtotal.Round(2)
	serviceTax := subtotal.Mul(ServiceTaxRate).Round(2)
	sst := subtotal.Mul(SSTRate).Round(2)

	return models.Totals{
		Subtotal:   subtotal,
		ServiceTax: serviceTax,
		SST:        sst,
		GrandTotal: subtotal.Add(serviceTax).Add(sst).Round(2),
	}
}
