// Package pricing computes the monetary breakdown of an order from a
// validated line-item set. It performs no I/O; the same inputs always yield
// the same breakdown.
package pricing

import (
	"math"

	"kasir/internal/models"
)

// Config holds the fixed business rules used to price orders.
type Config struct {
	TaxRate               float64 // GST-style rate applied to the subtotal
	FreeShippingThreshold float64 // subtotal at or above this ships free
	FlatShippingFee       float64 // charged below the threshold
	LoyaltyAccrualRate    float64 // fraction of the total accrued as points
}

// DefaultConfig returns the store's standard rates.
func DefaultConfig() Config {
	return Config{
		TaxRate:               0.18,
		FreeShippingThreshold: 5000,
		FlatShippingFee:       500,
		LoyaltyAccrualRate:    0.01,
	}
}

// Breakdown is the monetary summary of an order.
// Total = Subtotal + Tax + Shipping - Discount, exactly.
type Breakdown struct {
	Subtotal float64
	Tax      float64
	Shipping float64
	Discount float64
	Total    float64
}

// Quote computes the breakdown for a validated line-item set.
// loyaltyPoints is the redemption the caller has already verified against the
// user's balance; the discount is capped at the subtotal so a large balance
// can never push the total negative. Tax is rounded to the nearest currency
// unit. The total never goes below zero.
func Quote(items []models.OrderItem, loyaltyPoints int, cfg Config) Breakdown {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}

	shipping := cfg.FlatShippingFee
	if subtotal >= cfg.FreeShippingThreshold {
		shipping = 0
	}

	tax := math.Round(subtotal * cfg.TaxRate)

	discount := float64(loyaltyPoints)
	if discount > subtotal {
		discount = subtotal
	}

	total := subtotal + tax + shipping - discount
	if total < 0 {
		total = 0
	}

	return Breakdown{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    total,
	}
}

// AccruedPoints returns the loyalty points earned on a completed checkout,
// 1 point per whole currency unit of the configured fraction of the total.
func AccruedPoints(total float64, cfg Config) int {
	return int(math.Floor(total * cfg.LoyaltyAccrualRate))
}
