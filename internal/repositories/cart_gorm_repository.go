package repositories

import (
	"errors"
	"fmt"
	"kasir/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// ListByUser retrieves all cart lines for a user.
func (r *GORMCartRepository) ListByUser(userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Where("user_id = ?", userID).Order("created_at").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list cart for user %s: %w", userID, err)
	}
	return items, nil
}

// Upsert inserts the line or, when the (user, product, color, size) key
// already exists, adds the quantity onto the existing row.
func (r *GORMCartRepository) Upsert(item *models.CartItem) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "product_id"}, {Name: "color"}, {Name: "size"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", item.Quantity),
		}),
	}).Create(item).Error
	if err != nil {
		return fmt.Errorf("failed to upsert cart line for user %s: %w", item.UserID, err)
	}
	return nil
}

// Remove deletes a single cart line by its key.
func (r *GORMCartRepository) Remove(userID, productID, color, size string) error {
	res := r.db.Where("user_id = ? AND product_id = ? AND color = ? AND size = ?",
		userID, productID, color, size).Delete(&models.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart line: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart line for product %s: %w", productID, ErrNotFound)
	}
	return nil
}

// Clear removes every cart line for a user. Clearing an already-empty cart
// is not an error.
func (r *GORMCartRepository) Clear(userID string) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}
