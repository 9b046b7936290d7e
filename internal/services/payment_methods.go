package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"kedai/internal/models"

	"github.com/shopspring/decimal"
)

// PaymentHandler is one way of taking money for an order.
type PaymentHandler interface {
	// Validate returns a *PaymentValidationError for unusable input.
	Validate(details models.PaymentDetails) error
	// Provider names who settled the payment, e.g. "Cash" or the card brand.
	Provider(details models.PaymentDetails) string
	Settle(ctx context.Context, details models.PaymentDetails, amount decimal.Decimal) (Settlement, error)
}

// Settlement holds the method-specific facts recorded on a successful payment.
type Settlement struct {
	CardLastFour string
	CardBrand    string
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// CashHandler settles pay-at-counter orders. It always succeeds.
type CashHandler struct{}

func (CashHandler) Validate(models.PaymentDetails) error { return nil }

func (CashHandler) Provider(models.PaymentDetails) string { return "Cash" }

func (CashHandler) Settle(context.Context, models.PaymentDetails, decimal.Decimal) (Settlement, error) {
	return Settlement{}, nil
}

// CardHandler simulates a card gateway.
type CardHandler struct {
	Delay time.Duration
	Today func() time.Time
	Sleep Sleeper
}

// NewCardHandler creates a CardHandler that takes delay to settle.
func NewCardHandler(delay time.Duration) *CardHandler {
	return &CardHandler{Delay: delay, Today: time.Now, Sleep: sleepContext}
}

func (h *CardHandler) Validate(d models.PaymentDetails) error {
	reject := func(reason string) error {
		return &PaymentValidationError{Method: models.PaymentMethodCard, Reason: reason}
	}
	switch {
	case !ValidCardNumber(d.CardNumber):
		return reject("Invalid card number")
	case strings.TrimSpace(d.CardHolderName) == "":
		return reject("Cardholder name is required")
	case !ValidExpiry(d.ExpiryMonth, d.ExpiryYear, h.Today()):
		return reject("Card has expired or invalid expiry date")
	case !ValidCVV(d.CVV):
		return reject("Invalid CVV code")
	}
	return nil
}

func (h *CardHandler) Provider(d models.PaymentDetails) string {
	return CardBrand(d.CardNumber)
}

func (h *CardHandler) Settle(ctx context.Context, d models.PaymentDetails, _ decimal.Decimal) (Settlement, error) {
	if err := h.Sleep(ctx, h.Delay); err != nil {
		return Settlement{}, err
	}
	number := normalizeCardNumber(d.CardNumber)
	return Settlement{
		CardLastFour: number[len(number)-4:],
		CardBrand:    CardBrand(number),
	}, nil
}

// EWalletHandler simulates an e-wallet redirect.
type EWalletHandler struct {
	Delay        time.Duration
	RequirePhone bool
	Sleep        Sleeper
}

// NewEWalletHandler creates an EWalletHandler that takes delay to settle.
func NewEWalletHandler(delay time.Duration, requirePhone bool) *EWalletHandler {
	return &EWalletHandler{Delay: delay, RequirePhone: requirePhone, Sleep: sleepContext}
}

func (h *EWalletHandler) Validate(d models.PaymentDetails) error {
	if strings.TrimSpace(d.EWalletProvider) == "" {
		return &PaymentValidationError{Method: models.PaymentMethodEWallet, Reason: "Please select an E-Wallet provider"}
	}
	if h.RequirePhone && strings.TrimSpace(d.EWalletPhone) == "" {
		return &PaymentValidationError{Method: models.PaymentMethodEWallet, Reason: "E-Wallet phone number is required"}
	}
	return nil
}

func (h *EWalletHandler) Provider(d models.PaymentDetails) string {
	return strings.TrimSpace(d.EWalletProvider)
}

func (h *EWalletHandler) Settle(ctx context.Context, _ models.PaymentDetails, _ decimal.Decimal) (Settlement, error) {
	if err := h.Sleep(ctx, h.Delay); err != nil {
		return Settlement{}, err
	}
	return Settlement{}, nil
}

func normalizeCardNumber(n string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(n)
}

// ValidCardNumber runs the Luhn checksum over a 13 to 19 digit card number.
// Spaces and dashes are ignored.
func ValidCardNumber(n string) bool {
	n = normalizeCardNumber(n)
	if len(n) < 13 || len(n) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(n) - 1; i >= 0; i-- {
		c := n[i]
		if c < '0' || c > '9' {
			return false
		}
		digit := int(c - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}
	return sum%10 == 0
}

// CardBrand guesses the network from the leading digit.
func CardBrand(n string) string {
	n = normalizeCardNumber(n)
	if n == "" {
		return "Unknown"
	}
	switch n[0] {
	case '4':
		return "Visa"
	case '5':
		return "Mastercard"
	case '3':
		return "American Express"
	case '6':
		return "Discover"
	}
	return "Unknown"
}

// ValidExpiry reports whether the card is usable on today. A card stays valid
// through the last day of its expiry month. Two-digit years are 20xx.
func ValidExpiry(month, year string, today time.Time) bool {
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil || m < 1 || m > 12 {
		return false
	}
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || y < 0 {
		return false
	}
	if y < 100 {
		y += 2000
	}
	lastDay := time.Date(y, time.Month(m)+1, 0, 0, 0, 0, 0, time.UTC)
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return !lastDay.Before(day)
}

// ValidCVV accepts exactly three or four digits.
func ValidCVV(cvv string) bool {
	if len(cvv) != 3 && len(cvv) != 4 {
		return false
	}
	for _, c := range cvv {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
