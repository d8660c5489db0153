package services

import (
	"errors"
	"fmt"

	"kasir/internal/models"
	"kasir/internal/repositories"
)

// CartLine is a proposed order line as submitted by the client.
type CartLine struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
	Color     string `json:"color" validate:"omitempty,max=50"`
	Size      string `json:"size" validate:"omitempty,max=50"`
}

// CartValidator checks a proposed set of line items against the live catalog
// and freezes current prices into order-item snapshots. It is read-only; all
// stock mutation is deferred to order creation.
type CartValidator struct {
	productRepo repositories.ProductRepository
}

// NewCartValidator creates a new CartValidator.
func NewCartValidator(productRepo repositories.ProductRepository) *CartValidator {
	return &CartValidator{
		productRepo: productRepo,
	}
}

// Validate resolves every line against the current catalog state and returns
// the frozen line-item snapshots, or the first failure. Lines are checked in
// input order and the whole operation fails on any bad line. Duplicate
// product+variant lines are validated independently, not merged.
func (v *CartValidator) Validate(lines []CartLine) ([]models.OrderItem, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("product %s: quantity must be at least 1", line.ProductID)
		}

		product, err := v.productRepo.GetByID(line.ProductID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, &ProductNotFoundError{ProductID: line.ProductID}
			}
			return nil, fmt.Errorf("failed to look up product %s: %w", line.ProductID, err)
		}
		if !product.Active {
			return nil, &ProductNotFoundError{ProductID: line.ProductID}
		}
		if !product.AllowsColor(line.Color) {
			return nil, &VariantError{ProductID: line.ProductID, Selector: "color", Value: line.Color}
		}
		if !product.AllowsSize(line.Size) {
			return nil, &VariantError{ProductID: line.ProductID, Selector: "size", Value: line.Size}
		}
		if !product.InStock || product.Stock < line.Quantity {
			return nil, &InsufficientStockError{
				ProductID: line.ProductID,
				Requested: line.Quantity,
				Available: product.Stock,
			}
		}

		// Last-look pricing: the current catalog price and name become the
		// immutable order-time snapshot.
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  line.Quantity,
			Color:     line.Color,
			Size:      line.Size,
		})
	}
	return items, nil
}
