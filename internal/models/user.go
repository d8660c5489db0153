package models

import "gorm.io/gorm"

// User roles.
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
)

// User represents a user of the store. LoyaltyPoints are redeemable 1:1
// against an order subtotal and accrue on completed checkouts.
type User struct {
	ID            string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username      string  `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email         string  `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password      string  `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	Role          string  `json:"role" gorm:"type:varchar(20);default:'customer'"`
	LoyaltyPoints int     `json:"loyalty_points" validate:"gte=0"`
	TotalSpent    float64 `json:"total_spent"`
	gorm.Model            // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// IsStaff reports whether the user may perform administrative operations.
func (u *User) IsStaff() bool {
	return u.Role == RoleStaff
}
