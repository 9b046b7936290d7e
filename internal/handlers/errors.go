package handlers

import (
	"errors"
	"fmt"

	"kedai/internal/models"
	"kedai/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		transitionErr *models.TransitionError
		validationErr *services.PaymentValidationError
		paymentErr    *services.PaymentFailedError
	)
	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, services.ErrCartEmpty),
		errors.Is(err, services.ErrUnknownPaymentMethod),
		errors.Is(err, services.ErrMenuItemUnavailable):
		return fiber.StatusBadRequest
	case errors.As(err, &paymentErr):
		return fiber.StatusPaymentRequired
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrMenuItemNotFound),
		errors.Is(err, services.ErrDiscountNotFound),
		errors.Is(err, services.ErrCartLineNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &transitionErr),
		errors.Is(err, services.ErrDiscountExhausted):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// errorResponse writes err with the status statusFor picks.
func errorResponse(c *fiber.Ctx, err error, message string) error {
	body := fiber.Map{
		"message": message,
		"error":   err.Error(),
	}

	var validationErr *services.PaymentValidationError
	var paymentErr *services.PaymentFailedError
	switch {
	case errors.As(err, &validationErr):
		body["error"] = validationErr.Reason
	case errors.As(err, &paymentErr):
		body["error"] = paymentErr.Reason
		body["order_id"] = paymentErr.OrderID
		body["transaction_id"] = paymentErr.TransactionID
	}
	return c.Status(statusFor(err)).JSON(body)
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// validationFailed reports struct validation errors field by field.
func validationFailed(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return badRequest(c, err)
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
