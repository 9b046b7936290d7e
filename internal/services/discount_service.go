package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kedai/internal/models"
	"kedai/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

// DiscountResult is the outcome of checking a code against an order total.
// Code is set only when Valid.
type DiscountResult struct {
	Valid   bool                 `json:"valid"`
	Message string               `json:"message"`
	Amount  decimal.Decimal      `json:"amount"`
	Code    *models.DiscountCode `json:"-"`
}

// DiscountService validates discount codes and guards their usage counter.
type DiscountService struct {
	repo     repositories.DiscountRepository
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

// NewDiscountService creates a new DiscountService.
func NewDiscountService(repo repositories.DiscountRepository, log *zap.Logger) *DiscountService {
	return &DiscountService{
		repo:     repo,
		validate: validator.New(),
		log:      log,
		now:      time.Now,
	}
}

// CreateCode registers a new discount code.
func (s *DiscountService) CreateCode(ctx context.Context, code *models.DiscountCode) error {
	if err := s.validate.Struct(code); err != nil {
		return fmt.Errorf("invalid discount code: %w", err)
	}
	if code.Percentage.LessThan(decimal.NewFromInt(1)) || code.Percentage.GreaterThan(hundred) {
		return fmt.Errorf("invalid discount code: percentage must be between 1 and 100")
	}
	return s.repo.Create(ctx, code)
}

// Validate checks code against orderTotal. Rule failures come back as an
// invalid result with a customer-facing message; the error return is kept for
// registry failures.
func (s *DiscountService) Validate(ctx context.Context, code string, orderTotal decimal.Decimal) (DiscountResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return rejected("Please enter a discount code"), nil
	}

	dc, err := s.repo.FindByCode(ctx, code)
	if errors.Is(err, repositories.ErrDiscountNotFound) {
		return rejected("Invalid discount code"), nil
	}
	if err != nil {
		return DiscountResult{}, fmt.Errorf("failed to look up discount code: %w", err)
	}

	switch {
	case !dc.IsActive:
		return rejected("This discount code is no longer active"), nil
	case dc.Expired(s.now()):
		return rejected("This discount code has expired"), nil
	case dc.Exhausted():
		return rejected("This discount code has reached its usage limit"), nil
	case dc.MinOrderAmount.Valid && orderTotal.LessThan(dc.MinOrderAmount.Decimal):
		return rejected(fmt.Sprintf("Minimum order amount is RM %s", dc.MinOrderAmount.Decimal.StringFixed(2))), nil
	}

	amount := orderTotal.Mul(dc.Percentage).Div(hundred).Round(2)
	if dc.MaxDiscountAmount.Valid && amount.GreaterThan(dc.MaxDiscountAmount.Decimal) {
		amount = dc.MaxDiscountAmount.Decimal
	}

	return DiscountResult{
		Valid:   true,
		Message: fmt.Sprintf("Discount applied! You saved RM %s (%s%% off)", amount.StringFixed(2), dc.Percentage.String()),
		Amount:  amount,
		Code:    dc,
	}, nil
}

// ClaimUsage takes one use of the code. It fails with ErrDiscountExhausted
// when another checkout took the last one first.
func (s *DiscountService) ClaimUsage(ctx context.Context, id uint) error {
	if err := s.repo.IncrementUsage(ctx, id); err != nil {
		return fmt.Errorf("failed to claim discount usage: %w", err)
	}
	return nil
}

// ReleaseUsage gives back a use taken by ClaimUsage.
func (s *DiscountService) ReleaseUsage(ctx context.Context, id uint) error {
	if err := s.repo.DecrementUsage(ctx, id); err != nil {
		s.log.Error("failed to release discount usage", zap.Uint("discount_code_id", id), zap.Error(err))
		return fmt.Errorf("failed to release discount usage: %w", err)
	}
	return nil
}

func rejected(msg string) DiscountResult {
	return DiscountResult{Message: msg, Amount: decimal.Zero}
}
