package models

import (
	"strings"

	"gorm.io/gorm"
)

// Product represents a product in the store catalog. Stock is mutated only
// through ProductRepository.ReserveStock/ReleaseStock; handlers must not
// write it directly.
type Product struct {
	ID          string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string  `json:"name" validate:"required,min=3,max=100"`
	Description string  `json:"description" validate:"omitempty,max=500"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	InStock     bool    `json:"in_stock"`
	Active      bool    `json:"active"`
	Colors      string  `json:"colors"` // comma-separated allowed color selectors; empty means no color variants
	Sizes       string  `json:"sizes"`  // comma-separated allowed size selectors
	gorm.Model          // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// AllowsColor reports whether the given color selector is valid for this
// product. An empty selector is always allowed.
func (p *Product) AllowsColor(color string) bool {
	return allowsSelector(p.Colors, color)
}

// AllowsSize reports whether the given size selector is valid for this product.
func (p *Product) AllowsSize(size string) bool {
	return allowsSelector(p.Sizes, size)
}

func allowsSelector(allowed, selector string) bool {
	if selector == "" {
		return true
	}
	for _, s := range strings.Split(allowed, ",") {
		if strings.EqualFold(strings.TrimSpace(s), selector) {
			return true
		}
	}
	return false
}
