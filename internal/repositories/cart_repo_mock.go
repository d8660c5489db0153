package repositories

import (
	"fmt"
	"sync"

	"kasir/internal/models"
)

type cartKey struct {
	userID    string
	productID string
	color     string
	size      string
}

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	items map[cartKey]models.CartItem
	mu    sync.RWMutex
	seq   uint
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		items: make(map[cartKey]models.CartItem),
	}
}

// ListByUser returns all cart lines for a user.
func (r *MockCartRepository) ListByUser(userID string) ([]models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []models.CartItem
	for key, item := range r.items {
		if key.userID == userID {
			items = append(items, item)
		}
	}
	return items, nil
}

// Upsert merges the quantity into an existing line for the same key, or
// stores a new line.
func (r *MockCartRepository) Upsert(item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cartKey{item.UserID, item.ProductID, item.Color, item.Size}
	if existing, ok := r.items[key]; ok {
		existing.Quantity += item.Quantity
		r.items[key] = existing
		return nil
	}
	r.seq++
	item.ID = r.seq
	r.items[key] = *item
	return nil
}

// Remove deletes a single cart line by its key.
func (r *MockCartRepository) Remove(userID, productID, color, size string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cartKey{userID, productID, color, size}
	if _, ok := r.items[key]; !ok {
		return fmt.Errorf("cart line for product %s: %w", productID, ErrNotFound)
	}
	delete(r.items, key)
	return nil
}

// Clear removes every cart line for a user.
func (r *MockCartRepository) Clear(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.items {
		if key.userID == userID {
			delete(r.items, key)
		}
	}
	return nil
}
