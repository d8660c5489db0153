package repositories

import "errors"

// Sentinel errors shared by all repository implementations. The service
// layer translates these into user-facing error kinds; repositories only
// report what the store observed.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInsufficientStock indicates a conditional stock decrement matched no
	// row, i.e. the available quantity was below the requested amount.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInsufficientPoints indicates a conditional loyalty debit matched no
	// row, i.e. the balance was below the requested amount.
	ErrInsufficientPoints = errors.New("insufficient loyalty points")
)
