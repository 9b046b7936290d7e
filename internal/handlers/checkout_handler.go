package handlers

import (
	"kedai/internal/middleware"
	"kedai/internal/models"
	"kedai/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CheckoutHandler handles discount and payment requests for the session cart.
type CheckoutHandler struct {
	service  *services.CheckoutService
	validate *validator.Validate
	log      *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the checkout routes. router must carry the session
// and identity middleware.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	checkoutRoutes := router.Group("/checkout")
	checkoutRoutes.Get("/", h.HandleSummary)
	checkoutRoutes.Post("/discount", h.HandleApplyDiscount)
	checkoutRoutes.Delete("/discount", h.HandleRemoveDiscount)
	checkoutRoutes.Post("/pay", h.HandlePay)
}

type applyDiscountRequest struct {
	Code string `json:"code" validate:"max=20"`
}

type payRequest struct {
	PaymentMethod   string `json:"payment_method" validate:"required"`
	CardNumber      string `json:"card_number" validate:"omitempty,max=23"`
	CardHolderName  string `json:"card_holder_name" validate:"omitempty,max=100"`
	ExpiryMonth     string `json:"expiry_month" validate:"omitempty,max=2"`
	ExpiryYear      string `json:"expiry_year" validate:"omitempty,max=4"`
	CVV             string `json:"cvv" validate:"omitempty,max=4"`
	EWalletProvider string `json:"ewallet_provider" validate:"omitempty,max=50"`
	EWalletPhone    string `json:"ewallet_phone" validate:"omitempty,max=20"`
}

func (r payRequest) details() models.PaymentDetails {
	return models.PaymentDetails{
		CardNumber:      r.CardNumber,
		CardHolderName:  r.CardHolderName,
		ExpiryMonth:     r.ExpiryMonth,
		ExpiryYear:      r.ExpiryYear,
		CVV:             r.CVV,
		EWalletProvider: r.EWalletProvider,
		EWalletPhone:    r.EWalletPhone,
	}
}

// HandleSummary returns the priced cart and applied discount.
func (h *CheckoutHandler) HandleSummary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext(), middleware.CartStore(c))
	if err != nil {
		h.log.Error("failed to build checkout summary", zap.Error(err))
		return errorResponse(c, err, "Could not load checkout")
	}
	return c.JSON(summary)
}

// HandleApplyDiscount validates a code and caches it in the session.
func (h *CheckoutHandler) HandleApplyDiscount(c *fiber.Ctx) error {
	var req applyDiscountRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	store := middleware.CartStore(c)
	res, err := h.service.ApplyDiscount(c.UserContext(), store, req.Code)
	if err != nil {
		return errorResponse(c, err, "Could not apply discount")
	}
	if !res.Valid {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(res)
	}

	summary, err := h.service.Summary(c.UserContext(), store)
	if err != nil {
		return errorResponse(c, err, "Could not load checkout")
	}
	return c.JSON(fiber.Map{
		"valid":   res.Valid,
		"message": res.Message,
		"amount":  res.Amount,
		"summary": summary,
	})
}

// HandleRemoveDiscount drops the applied discount.
func (h *CheckoutHandler) HandleRemoveDiscount(c *fiber.Ctx) error {
	store := middleware.CartStore(c)
	if err := h.service.RemoveDiscount(c.UserContext(), store); err != nil {
		return errorResponse(c, err, "Could not remove discount")
	}
	summary, err := h.service.Summary(c.UserContext(), store)
	if err != nil {
		return errorResponse(c, err, "Could not load checkout")
	}
	return c.JSON(summary)
}

// HandlePay places the order and takes payment.
func (h *CheckoutHandler) HandlePay(c *fiber.Ctx) error {
	var req payRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	method, err := models.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid payment method selected.",
			"error":   err.Error(),
		})
	}

	checkoutReq := services.CheckoutRequest{Method: method, Details: req.details()}
	if uid, ok := middleware.UserID(c); ok {
		checkoutReq.UserID = &uid
	}

	res, err := h.service.Checkout(c.UserContext(), middleware.CartStore(c), checkoutReq)
	if err != nil {
		if statusFor(err) == fiber.StatusInternalServerError {
			h.log.Error("checkout failed", zap.Error(err))
		}
		return errorResponse(c, err, "Checkout failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":         "Order placed successfully",
		"order_id":        res.Order.ID,
		"transaction_id":  res.Transaction.TransactionID,
		"order":           res.Order,
		"transaction":     res.Transaction,
		"discount_notice": res.DiscountNotice,
	})
}
