package services

import (
	"errors"
	"fmt"

	"kasir/internal/models"
	"kasir/internal/repositories"
)

// CartService handles a user's stored shopping cart. Stock is not reserved
// here; availability is only settled at checkout.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart returns the user's cart lines.
func (s *CartService) GetCart(userID string) ([]models.CartItem, error) {
	return s.cartRepo.ListByUser(userID)
}

// AddItem validates the product and variant, then merges the line into the
// cart keyed by (user, product, color, size).
func (s *CartService) AddItem(userID string, line CartLine) (*models.CartItem, error) {
	product, err := s.productRepo.GetByID(line.ProductID)
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

	item := &models.CartItem{
		UserID:    userID,
		ProductID: line.ProductID,
		Color:     line.Color,
		Size:      line.Size,
		Quantity:  line.Quantity,
	}
	if err := s.cartRepo.Upsert(item); err != nil {
		return nil, fmt.Errorf("failed to add item to cart: %w", err)
	}
	return item, nil
}

// RemoveItem deletes a single cart line.
func (s *CartService) RemoveItem(userID, productID, color, size string) error {
	return s.cartRepo.Remove(userID, productID, color, size)
}

// ClearCart removes everything from the user's cart.
func (s *CartService) ClearCart(userID string) error {
	return s.cartRepo.Clear(userID)
}
