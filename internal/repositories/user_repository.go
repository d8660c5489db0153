package repositories

import "kasir/internal/models"

// UserRepository defines the interface for user data access, including the
// loyalty/spend ledger touched by order creation and cancellation.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)

	// DebitLoyaltyPoints subtracts points from the user's balance only if the
	// balance covers it, as a single atomic conditional update. A failed
	// guard returns ErrInsufficientPoints.
	DebitLoyaltyPoints(id string, points int) error

	// CreditLoyaltyPoints adds points to the user's balance. Used for accrual
	// and for refunds on cancellation.
	CreditLoyaltyPoints(id string, points int) error

	// AddTotalSpent increments the user's cumulative spend.
	AddTotalSpent(id string, amount float64) error
}
