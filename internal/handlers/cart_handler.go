package handlers

import (
	"kedai/internal/middleware"
	"kedai/internal/models"
	"kedai/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartHandler handles HTTP requests for the session cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
	log      *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the cart routes. router must carry the session middleware.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:itemId", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:itemId", h.HandleRemoveItem)
}

type addItemRequest struct {
	MenuItemID string `json:"menu_item_id" validate:"required,max=36"`
	Quantity   int    `json:"quantity" validate:"gte=0,lte=99"`
	Sweetness  string `json:"sweetness" validate:"omitempty,max=20"`
	IceLevel   string `json:"ice_level" validate:"omitempty,max=20"`
}

type updateItemRequest struct {
	Quantity  int    `json:"quantity" validate:"lte=99"`
	Sweetness string `json:"sweetness" validate:"omitempty,max=20"`
	IceLevel  string `json:"ice_level" validate:"omitempty,max=20"`
}

// HandleGetCart returns the cart with its totals.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	view, err := h.service.View(c.UserContext(), middleware.CartStore(c))
	if err != nil {
		h.log.Error("failed to load cart", zap.Error(err))
		return errorResponse(c, err, "Could not retrieve cart")
	}
	return c.JSON(view)
}

// HandleAddItem adds a menu item to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	opts := models.LineOptions{Sweetness: req.Sweetness, IceLevel: req.IceLevel}
	view, err := h.service.AddItem(c.UserContext(), middleware.CartStore(c), req.MenuItemID, req.Quantity, opts)
	if err != nil {
		return errorResponse(c, err, "Could not add item to cart")
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// HandleUpdateItem changes a line's quantity. Zero removes the line.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req updateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	opts := models.LineOptions{Sweetness: req.Sweetness, IceLevel: req.IceLevel}
	view, err := h.service.UpdateQuantity(c.UserContext(), middleware.CartStore(c), c.Params("itemId"), opts, req.Quantity)
	if err != nil {
		return errorResponse(c, err, "Could not update cart")
	}
	return c.JSON(view)
}

// HandleRemoveItem drops a line. The variant is given as query parameters.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	opts := models.LineOptions{Sweetness: c.Query("sweetness"), IceLevel: c.Query("ice_level")}
	view, err := h.service.RemoveItem(c.UserContext(), middleware.CartStore(c), c.Params("itemId"), opts)
	if err != nil {
		return errorResponse(c, err, "Could not remove item from cart")
	}
	return c.JSON(view)
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.service.Clear(c.UserContext(), middleware.CartStore(c)); err != nil {
		return errorResponse(c, err, "Could not clear cart")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
