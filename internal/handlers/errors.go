package handlers

import (
	"errors"

	"kasir/internal/repositories"
	"kasir/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// writeServiceError maps service error kinds onto HTTP responses. Per-product
// failures carry the offending product id (and available quantity for stock)
// so clients can highlight the bad line; persistence and transition failures
// stay generic.
func writeServiceError(c *fiber.Ctx, err error) error {
	var stockErr *services.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":    "Insufficient stock",
			"error":      stockErr.Error(),
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
	}

	var notFoundErr *services.ProductNotFoundError
	if errors.As(err, &notFoundErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":    "Product not available",
			"error":      notFoundErr.Error(),
			"product_id": notFoundErr.ProductID,
		})
	}

	var variantErr *services.VariantError
	if errors.As(err, &variantErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":    "Invalid variant selection",
			"error":      variantErr.Error(),
			"product_id": variantErr.ProductID,
		})
	}

	var pointsErr *services.LoyaltyPointsError
	if errors.As(err, &pointsErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":   "Insufficient loyalty points",
			"error":     pointsErr.Error(),
			"requested": pointsErr.Requested,
			"available": pointsErr.Available,
		})
	}

	switch {
	case errors.Is(err, services.ErrEmptyOrder):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Order must contain at least one item",
		})
	case errors.Is(err, services.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Order status change is not allowed",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You do not have access to this order",
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Not found",
			"error":   err.Error(),
		})
	}

	// ErrPersistenceFailure and anything unexpected: generic retry-later.
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Something went wrong, please try again later",
	})
}

// writeValidationError renders validator.ValidationErrors as a field map,
// matching the envelope used across all handlers.
func writeValidationError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = "Field '" + e.Field() + "' failed on the '" + e.Tag() + "' tag"
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"error":   err.Error(),
	})
}
