package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"kedai/internal/models"
	"kedai/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const unknownMethodMessage = "Invalid payment method selected."

// PaymentConfig tunes the simulated gateways.
type PaymentConfig struct {
	CardDelay           time.Duration
	EWalletDelay        time.Duration
	RequireEWalletPhone bool
}

// PaymentService validates payment input, settles it through the handler
// registered for the method and records every attempt.
type PaymentService struct {
	repo     repositories.PaymentRepository
	handlers map[models.PaymentMethod]PaymentHandler
	log      *zap.Logger
	now      func() time.Time
}

// NewPaymentService creates a PaymentService with the cash, card and e-wallet
// handlers registered.
func NewPaymentService(repo repositories.PaymentRepository, cfg PaymentConfig, log *zap.Logger) *PaymentService {
	s := &PaymentService{
		repo:     repo,
		handlers: make(map[models.PaymentMethod]PaymentHandler),
		log:      log,
		now:      time.Now,
	}
	s.Register(models.PaymentMethodPayAtCounter, CashHandler{})
	s.Register(models.PaymentMethodCard, NewCardHandler(cfg.CardDelay))
	s.Register(models.PaymentMethodEWallet, NewEWalletHandler(cfg.EWalletDelay, cfg.RequireEWalletPhone))
	return s
}

// Register installs h for method, replacing any previous handler.
func (s *PaymentService) Register(method models.PaymentMethod, h PaymentHandler) {
	s.handlers[method] = h
}

// Validate checks payment input without recording anything.
func (s *PaymentService) Validate(method models.PaymentMethod, details models.PaymentDetails) error {
	h, ok := s.handlers[method]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, method)
	}
	return h.Validate(details)
}

// Provider names who will settle a payment made with method and details.
func (s *PaymentService) Provider(method models.PaymentMethod, details models.PaymentDetails) string {
	if h, ok := s.handlers[method]; ok {
		return h.Provider(details)
	}
	return ""
}

// Process charges amount for orderID and persists exactly one transaction
// whatever the outcome. A failed payment is reported through the returned
// transaction's status; the error return means the attempt could not be recorded.
func (s *PaymentService) Process(ctx context.Context, method models.PaymentMethod, details models.PaymentDetails, amount decimal.Decimal, orderID string) (*models.PaymentTransaction, error) {
	now := s.now()
	txn := &models.PaymentTransaction{
		OrderID:       orderID,
		PaymentMethod: method,
		TransactionID: newTransactionID(now),
		Amount:        amount,
		Status:        models.PaymentStatusPending,
		CreatedAt:     now,
	}

	if h, ok := s.handlers[method]; !ok {
		fail(txn, unknownMethodMessage)
	} else if err := h.Validate(details); err != nil {
		fail(txn, validationReason(err))
	} else if st, err := h.Settle(ctx, details, amount); err != nil {
		fail(txn, "Payment processing error: "+err.Error())
	} else {
		completed := s.now()
		txn.Status = models.PaymentStatusSuccess
		txn.Provider = h.Provider(details)
		txn.CompletedAt = &completed
		if st.CardLastFour != "" {
			txn.CardLastFour = &st.CardLastFour
			txn.CardBrand = &st.CardBrand
		}
	}

	// The record is written even when the caller has gone away.
	if err := s.repo.Create(context.WithoutCancel(ctx), txn); err != nil {
		return nil, fmt.Errorf("failed to record payment for order %s: %w", orderID, err)
	}

	fields := []zap.Field{
		zap.String("order_id", orderID),
		zap.String("transaction_id", txn.TransactionID),
		zap.String("method", string(method)),
		zap.String("amount", amount.StringFixed(2)),
	}
	if txn.Succeeded() {
		s.log.Info("payment settled", fields...)
	} else {
		s.log.Warn("payment failed", append(fields, zap.String("reason", *txn.ErrorMessage))...)
	}
	return txn, nil
}

// ListByOrder returns every payment attempt for an order, oldest first.
func (s *PaymentService) ListByOrder(ctx context.Context, orderID string) ([]models.PaymentTransaction, error) {
	return s.repo.ListByOrder(ctx, orderID)
}

func fail(txn *models.PaymentTransaction, reason string) {
	txn.Status = models.PaymentStatusFailed
	txn.ErrorMessage = &reason
}

func validationReason(err error) string {
	var pv *PaymentValidationError
	if errors.As(err, &pv) {
		return pv.Reason
	}
	return err.Error()
}

// newTransactionID formats TXN + UTC timestamp to the second + four random digits.
func newTransactionID(now time.Time) string {
	return fmt.Sprintf("TXN%s%04d", now.UTC().Format("20060102150405"), 1000+rand.IntN(9000))
}
