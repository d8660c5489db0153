package models

import "time"

// CartItem is a line in a user's shopping cart, keyed by
// (user, product, color, size). Adding the same key again increases the
// quantity instead of creating a duplicate row.
type CartItem struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);uniqueIndex:idx_cart_line"`
	ProductID string    `json:"product_id" gorm:"type:varchar(36);uniqueIndex:idx_cart_line"`
	Color     string    `json:"color,omitempty" gorm:"type:varchar(50);uniqueIndex:idx_cart_line"`
	Size      string    `json:"size,omitempty" gorm:"type:varchar(50);uniqueIndex:idx_cart_line"`
	Quantity  int       `json:"quantity" validate:"gte=1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
