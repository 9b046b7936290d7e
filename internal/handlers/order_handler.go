package handlers

import (
	"kedai/internal/middleware"
	"kedai/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles customer-facing order lookups.
type OrderHandler struct {
	service *services.OrderService
	log     *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes registers the order routes. router must carry the identity middleware.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Get("/:id/status", h.HandleGetOrderStatus)

	router.Get("/me/orders", middleware.AuthRequired(), h.HandleGetMyOrders)
}

// HandleGetOrderByID returns an order. Orders placed by a signed-in customer
// are visible only to that customer and to staff.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrderByID(c.UserContext(), orderID)
	if err != nil {
		if statusFor(err) == fiber.StatusInternalServerError {
			h.log.Error("failed to get order", zap.String("order_id", orderID), zap.Error(err))
		}
		return errorResponse(c, err, "Could not retrieve order")
	}

	if order.UserID != nil && !middleware.HasRole(c, middleware.RoleAdmin, middleware.RoleStaff) {
		uid, _ := middleware.UserID(c)
		if uid != *order.UserID {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Could not retrieve order",
				"error":   "order not found",
			})
		}
	}
	return c.JSON(order)
}

// HandleGetOrderStatus is the public tracking endpoint.
func (h *OrderHandler) HandleGetOrderStatus(c *fiber.Ctx) error {
	order, err := h.service.GetOrderByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err, "Could not retrieve order")
	}
	return c.JSON(fiber.Map{
		"id":           order.ID,
		"status":       order.Status,
		"created_at":   order.CreatedAt,
		"updated_at":   order.UpdatedAt,
		"completed_at": order.CompletedAt,
	})
}

// HandleGetMyOrders lists the signed-in customer's orders.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	uid, _ := middleware.UserID(c)
	orders, err := h.service.ListOrdersByUser(c.UserContext(), uid)
	if err != nil {
		h.log.Error("failed to list orders", zap.String("user_id", uid), zap.Error(err))
		return errorResponse(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}
