package handlers

import (
	"kedai/internal/middleware"
	"kedai/internal/models"
	"kedai/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ManagementHandler lets kitchen staff move orders through their workflow.
type ManagementHandler struct {
	service  *services.OrderService
	validate *validator.Validate
	log      *zap.Logger
}

// NewManagementHandler creates a new ManagementHandler.
func NewManagementHandler(service *services.OrderService, log *zap.Logger) *ManagementHandler {
	return &ManagementHandler{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the staff routes under /manage.
func (h *ManagementHandler) RegisterRoutes(router fiber.Router) {
	manage := router.Group("/manage", middleware.RequireRole(middleware.RoleAdmin, middleware.RoleStaff))
	manage.Get("/orders", h.HandleListOrders)
	manage.Get("/orders/counts", h.HandleCountOrders)
	manage.Patch("/orders/:id/status", h.HandleUpdateStatus)
	manage.Post("/orders/:id/advance", h.HandleAdvance)
	manage.Post("/orders/:id/cancel", h.HandleCancel)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"max=500"`
}

type cancelRequest struct {
	Reason *string `json:"reason" validate:"required,max=500"`
}

// HandleListOrders lists orders, optionally filtered with ?status=.
func (h *ManagementHandler) HandleListOrders(c *fiber.Ctx) error {
	var status models.OrderStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := models.ParseOrderStatus(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid status filter",
				"error":   err.Error(),
			})
		}
		status = parsed
	}

	orders, err := h.service.ListOrders(c.UserContext(), status)
	if err != nil {
		h.log.Error("failed to list orders", zap.Error(err))
		return errorResponse(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleCountOrders returns the number of orders per status.
func (h *ManagementHandler) HandleCountOrders(c *fiber.Ctx) error {
	counts, err := h.service.CountByStatus(c.UserContext())
	if err != nil {
		h.log.Error("failed to count orders", zap.Error(err))
		return errorResponse(c, err, "Could not count orders")
	}
	return c.JSON(counts)
}

// HandleUpdateStatus moves an order to the requested status.
func (h *ManagementHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}
	status, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid order status",
			"error":   err.Error(),
		})
	}

	order, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), status, req.Reason)
	if err != nil {
		return errorResponse(c, err, "Could not update order status")
	}
	return c.JSON(order)
}

// HandleAdvance moves an order to its next workflow status.
func (h *ManagementHandler) HandleAdvance(c *fiber.Ctx) error {
	order, err := h.service.AdvanceStatus(c.UserContext(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err, "Could not advance order")
	}
	return c.JSON(order)
}

// HandleCancel cancels an order. A reason field is required but may be empty.
func (h *ManagementHandler) HandleCancel(c *fiber.Ctx) error {
	var req cancelRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	order, err := h.service.CancelOrder(c.UserContext(), c.Params("id"), *req.Reason)
	if err != nil {
		return errorResponse(c, err, "Could not cancel order")
	}
	return c.JSON(order)
}
