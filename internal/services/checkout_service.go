package services

import (
	"context"
	"errors"
	"fmt"

	"kedai/internal/cart"
	"kedai/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const discountLostReason = "discount code is no longer available"

// CheckoutSummary is what the customer sees before paying.
type CheckoutSummary struct {
	Lines          []models.CartLine       `json:"lines"`
	Totals         models.Totals           `json:"totals"`
	Discount       *models.AppliedDiscount `json:"discount,omitempty"`
	DiscountNotice string                  `json:"discount_notice,omitempty"`
	FinalTotal     decimal.Decimal         `json:"final_total"`
}

// CheckoutRequest is a payment submission for the session cart.
type CheckoutRequest struct {
	Method  models.PaymentMethod
	Details models.PaymentDetails
	UserID  *string
}

// CheckoutResult describes a paid order. DiscountNotice is set when a
// previously applied discount no longer held and was left off the order.
type CheckoutResult struct {
	Order          *models.Order              `json:"order"`
	Transaction    *models.PaymentTransaction `json:"transaction"`
	DiscountNotice string                     `json:"discount_notice,omitempty"`
}

// CheckoutService turns a session cart into a paid order.
type CheckoutService struct {
	discounts *DiscountService
	payments  *PaymentService
	orders    *OrderService
	log       *zap.Logger
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(discounts *DiscountService, payments *PaymentService, orders *OrderService, log *zap.Logger) *CheckoutService {
	return &CheckoutService{
		discounts: discounts,
		payments:  payments,
		orders:    orders,
		log:       log,
	}
}

// pricedCart is a cart with totals and its discount re-checked.
type pricedCart struct {
	lines    []models.CartLine
	totals   models.Totals
	applied  *models.AppliedDiscount
	code     *models.DiscountCode
	notice   string
	discount decimal.Decimal
}

func (p *pricedCart) finalTotal() decimal.Decimal {
	return p.totals.GrandTotal.Sub(p.discount)
}

// price loads the cart and re-validates any cached discount against the
// current grand total. A discount that no longer holds is dropped from the session.
func (s *CheckoutService) price(ctx context.Context, store *cart.Store) (*pricedCart, error) {
	lines, err := store.Lines(ctx)
	if err != nil {
		return nil, err
	}
	p := &pricedCart{
		lines:    lines,
		totals:   CalculateTotals(lines),
		discount: decimal.Zero,
	}

	cached, err := store.Discount(ctx)
	if err != nil || cached == nil {
		return p, err
	}

	if len(lines) == 0 {
		return p, store.ClearDiscount(ctx)
	}

	res, err := s.discounts.Validate(ctx, cached.Code, p.totals.GrandTotal)
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		if err := store.ClearDiscount(ctx); err != nil {
			return nil, err
		}
		p.notice = res.Message
		return p, nil
	}

	p.code = res.Code
	p.discount = res.Amount
	p.applied = &models.AppliedDiscount{
		Code:            res.Code.Code,
		Amount:          res.Amount,
		ComputedAgainst: p.totals.GrandTotal,
	}
	if !cached.Amount.Equal(res.Amount) || !cached.ComputedAgainst.Equal(p.totals.GrandTotal) {
		if err := store.SaveDiscount(ctx, *p.applied); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Summary returns the cart, totals and the discount that would apply if the
// customer paid now.
func (s *CheckoutService) Summary(ctx context.Context, store *cart.Store) (*CheckoutSummary, error) {
	p, err := s.price(ctx, store)
	if err != nil {
		return nil, err
	}
	return &CheckoutSummary{
		Lines:          p.lines,
		Totals:         p.totals,
		Discount:       p.applied,
		DiscountNotice: p.notice,
		FinalTotal:     p.finalTotal(),
	}, nil
}

// ApplyDiscount checks code against the cart's grand total and caches it in
// the session when valid. An invalid code leaves any applied discount alone.
func (s *CheckoutService) ApplyDiscount(ctx context.Context, store *cart.Store, code string) (DiscountResult, error) {
	lines, err := store.Lines(ctx)
	if err != nil {
		return DiscountResult{}, err
	}
	if len(lines) == 0 {
		return DiscountResult{}, ErrCartEmpty
	}

	grand := CalculateTotals(lines).GrandTotal
	res, err := s.discounts.Validate(ctx, code, grand)
	if err != nil || !res.Valid {
		return res, err
	}

	err = store.SaveDiscount(ctx, models.AppliedDiscount{
		Code:            res.Code.Code,
		Amount:          res.Amount,
		ComputedAgainst: grand,
	})
	return res, err
}

// RemoveDiscount drops the applied discount from the session.
func (s *CheckoutService) RemoveDiscount(ctx context.Context, store *cart.Store) error {
	return store.ClearDiscount(ctx)
}

// Checkout prices the cart, places the order and takes payment.
//
// Payment input is checked before anything is written, so rejected input
// leaves no order behind. Once the order exists every failure ends with it
// Cancelled, the discount use given back and the cart untouched.
func (s *CheckoutService) Checkout(ctx context.Context, store *cart.Store, req CheckoutRequest) (*CheckoutResult, error) {
	p, err := s.price(ctx, store)
	if err != nil {
		return nil, err
	}
	if len(p.lines) == 0 {
		return nil, ErrCartEmpty
	}

	if err := s.payments.Validate(req.Method, req.Details); err != nil {
		return nil, err
	}

	draft := OrderDraft{
		UserID:          req.UserID,
		PaymentMethod:   req.Method,
		PaymentProvider: s.payments.Provider(req.Method, req.Details),
		Totals:          p.totals,
		Lines:           p.lines,
		DiscountAmount:  p.discount,
	}
	if p.code != nil {
		draft.DiscountCodeID = &p.code.ID
	}

	order, err := s.orders.CreateOrder(ctx, draft)
	if err != nil {
		return nil, err
	}

	// Compensation must run even if the client disconnects mid-checkout.
	bg := context.WithoutCancel(ctx)

	// The use is held while settlement is in flight and released on failure.
	// A crash between claim and release leaves one unpaid use counted.
	if p.code != nil {
		if err := s.discounts.ClaimUsage(ctx, p.code.ID); err != nil {
			reason := "discount could not be applied"
			if errors.Is(err, ErrDiscountExhausted) {
				reason = discountLostReason
				if clearErr := store.ClearDiscount(bg); clearErr != nil {
					s.log.Warn("failed to clear exhausted discount", zap.Error(clearErr))
				}
			}
			s.abandon(bg, order.ID, reason)
			return nil, fmt.Errorf("order %s: %w", order.ID, err)
		}
	}

	txn, err := s.payments.Process(ctx, req.Method, req.Details, order.ChargeAmount(), order.ID)
	if err != nil {
		s.release(bg, p.code)
		s.abandon(bg, order.ID, "payment could not be recorded")
		return nil, err
	}
	if !txn.Succeeded() {
		reason := *txn.ErrorMessage
		s.release(bg, p.code)
		s.abandon(bg, order.ID, reason)
		return nil, &PaymentFailedError{
			OrderID:       order.ID,
			TransactionID: txn.TransactionID,
			Reason:        reason,
		}
	}

	if err := store.Clear(bg); err != nil {
		s.log.Error("failed to clear cart after payment",
			zap.String("session_id", store.SessionID()),
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}

	s.log.Info("checkout completed",
		zap.String("order_id", order.ID),
		zap.String("transaction_id", txn.TransactionID),
		zap.String("charged", txn.Amount.StringFixed(2)),
	)
	return &CheckoutResult{
		Order:          order,
		Transaction:    txn,
		DiscountNotice: p.notice,
	}, nil
}

func (s *CheckoutService) release(ctx context.Context, code *models.DiscountCode) {
	if code == nil {
		return
	}
	_ = s.discounts.ReleaseUsage(ctx, code.ID)
}

func (s *CheckoutService) abandon(ctx context.Context, orderID, reason string) {
	if _, err := s.orders.CancelOrder(ctx, orderID, reason); err != nil {
		s.log.Error("failed to cancel unpaid order",
			zap.String("order_id", orderID),
			zap.String("reason", reason),
			zap.Error(err),
		)
	}
}
