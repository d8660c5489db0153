package repositories

import (
	"kasir/internal/models"
)

// ProductRepository defines the interface for product data access and the
// inventory ledger operations backing order creation and cancellation.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error

	// ReserveStock decrements the product's stock by quantity only if the
	// current stock covers it, as a single atomic conditional update. A
	// failed guard returns ErrInsufficientStock and leaves stock untouched.
	// Safe under concurrent reservations against the same product.
	ReserveStock(id string, quantity int) error

	// ReleaseStock increments the product's stock by quantity. Used when an
	// order is cancelled or returned.
	ReleaseStock(id string, quantity int) error
}
