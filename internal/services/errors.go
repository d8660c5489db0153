package services

import (
	"errors"
	"fmt"

	"kasir/internal/models"
)

// Error kinds surfaced by the checkout and order lifecycle services.
// Handlers match these with errors.Is; the detail types below additionally
// carry the data clients need to self-correct, reachable via errors.As.
var (
	ErrEmptyOrder                = errors.New("order must contain at least one item")
	ErrProductNotFound           = errors.New("product not found")
	ErrVariantInvalid            = errors.New("invalid variant selection")
	ErrInsufficientStock         = errors.New("insufficient stock")
	ErrInsufficientLoyaltyPoints = errors.New("insufficient loyalty points")
	ErrInvalidTransition         = errors.New("invalid order status transition")
	ErrPersistenceFailure        = errors.New("could not durably commit order")
	ErrForbidden                 = errors.New("not allowed for this user")
)

// ProductNotFoundError identifies the line whose product is missing or
// inactive.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found or inactive", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

// VariantError identifies an unsupported color or size selector.
type VariantError struct {
	ProductID string
	Selector  string // "color" or "size"
	Value     string
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("product %s does not offer %s %q", e.ProductID, e.Selector, e.Value)
}

func (e *VariantError) Unwrap() error { return ErrVariantInvalid }

// InsufficientStockError identifies the offending line and how much stock is
// actually available, so the client can highlight it.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (requested: %d, available: %d)",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// LoyaltyPointsError reports a redemption request exceeding the balance.
type LoyaltyPointsError struct {
	Requested int
	Available int
}

func (e *LoyaltyPointsError) Error() string {
	return fmt.Sprintf("insufficient loyalty points (requested: %d, available: %d)",
		e.Requested, e.Available)
}

func (e *LoyaltyPointsError) Unwrap() error { return ErrInsufficientLoyaltyPoints }

// TransitionError reports an illegal order status change. These indicate a
// race or a buggy client, never an expected user flow.
type TransitionError struct {
	OrderID string
	From    models.OrderStatus
	To      models.OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %s: illegal transition %s -> %s", e.OrderID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
