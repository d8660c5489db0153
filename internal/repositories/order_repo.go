package repositories

import (
	"kasir/internal/models"
)

// OrderFilter narrows order listings. Zero values mean "no filter".
type OrderFilter struct {
	Status models.OrderStatus
	UserID string
}

// OrderRepository defines the interface for order data access. Orders are
// append-and-mutate only; there is deliberately no Delete.
type OrderRepository interface {
	GetAll(filter OrderFilter) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByOrderNumber(orderNumber string) (*models.Order, error)
	GetByUserID(userID string) ([]models.Order, error)
	Create(order *models.Order) error
	Update(order *models.Order) error
}
