package handlers

import (
	"log"

	"kasir/internal/middleware"
	"kasir/internal/models"
	"kasir/internal/repositories"
	"kasir/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the authenticated customer order routes.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCheckout)
	orderRoutes.Get("/", h.HandleGetMyOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
}

// RegisterGuestRoutes registers the public guest checkout route.
func (h *OrderHandler) RegisterGuestRoutes(router fiber.Router) {
	router.Post("/orders/guest", h.HandleGuestCheckout)
}

// RegisterAdminRoutes registers the staff-only order management routes.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	adminRoutes := router.Group("/admin/orders")
	adminRoutes.Get("/", h.HandleListOrders)
	adminRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
}

// HandleCheckout creates an order for the authenticated user.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var req services.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing checkout request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	req.UserID = middleware.UserID(c)

	if err := h.validate.Struct(req); err != nil {
		return writeValidationError(c, err)
	}

	order, err := h.service.CreateOrder(req)
	if err != nil {
		log.Printf("Checkout failed for user %s: %v", req.UserID, err)
		return writeServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGuestCheckout creates an order without a user account. The shipping
// address carries the guest's contact details; loyalty redemption is not
// available.
func (h *OrderHandler) HandleGuestCheckout(c *fiber.Ctx) error {
	var req services.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing guest checkout request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	req.UserID = ""
	req.FromCart = false

	if err := h.validate.Struct(req); err != nil {
		return writeValidationError(c, err)
	}

	order, err := h.service.CreateOrder(req)
	if err != nil {
		log.Printf("Guest checkout failed: %v", err)
		return writeServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetMyOrders retrieves the authenticated user's order history.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	orders, err := h.service.GetOrdersByUser(userID)
	if err != nil {
		log.Printf("Error getting orders for user %s: %v", userID, err)
		return writeServiceError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order. Customers can only see their
// own orders; staff can see any.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrderByID(orderID)
	if err != nil {
		log.Printf("Error getting order by ID %s: %v", orderID, err)
		return writeServiceError(c, err)
	}

	if !middleware.IsStaff(c) {
		userID := middleware.UserID(c)
		if order.UserID == nil || *order.UserID != userID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "You do not have access to this order",
			})
		}
	}
	return c.JSON(order)
}

// CancelOrderRequest carries the customer's cancellation reason.
type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// HandleCancelOrder cancels an order on behalf of its owner or staff.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var req CancelOrderRequest
	if err := c.BodyParser(&req); err != nil && err != fiber.ErrUnprocessableEntity {
		log.Printf("Error parsing cancellation request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	order, err := h.service.CancelOrder(orderID, middleware.UserID(c), middleware.IsStaff(c), req.Reason)
	if err != nil {
		log.Printf("Error cancelling order %s: %v", orderID, err)
		return writeServiceError(c, err)
	}
	return c.JSON(order)
}

// HandleListOrders retrieves all orders, optionally filtered by status or
// user, for the admin dashboard.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	filter := repositories.OrderFilter{
		Status: models.OrderStatus(c.Query("status")),
		UserID: c.Query("user_id"),
	}
	if filter.Status != "" && !services.ValidOrderStatus(filter.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Unknown order status filter",
		})
	}

	orders, err := h.service.GetAllOrders(filter)
	if err != nil {
		log.Printf("Error listing orders: %v", err)
		return writeServiceError(c, err)
	}
	return c.JSON(orders)
}

// UpdateOrderStatusRequest is the staff status-change payload.
type UpdateOrderStatusRequest struct {
	Status         models.OrderStatus `json:"status" validate:"required"`
	TrackingNumber string             `json:"tracking_number" validate:"omitempty,max=100"`
	Note           string             `json:"note" validate:"omitempty,max=500"`
}

// HandleUpdateOrderStatus moves an order through its lifecycle (staff only).
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var req UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing request body for status update: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return writeValidationError(c, err)
	}

	order, err := h.service.TransitionOrder(orderID, req.Status, req.TrackingNumber, req.Note)
	if err != nil {
		log.Printf("Error updating order status for order %s: %v", orderID, err)
		return writeServiceError(c, err)
	}
	return c.JSON(order)
}
