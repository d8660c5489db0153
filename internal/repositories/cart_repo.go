package repositories

import "kasir/internal/models"

// CartRepository defines the interface for cart data access. Lines are keyed
// by (user, product, color, size); Upsert merges quantities into the existing
// line for that key instead of appending duplicates.
type CartRepository interface {
	ListByUser(userID string) ([]models.CartItem, error)
	Upsert(item *models.CartItem) error
	Remove(userID, productID, color, size string) error
	Clear(userID string) error
}
