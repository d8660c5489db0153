package repositories

import (
	"errors"
	"fmt"
	"kasir/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with username %s: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by username %s: %w", username, err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// DebitLoyaltyPoints performs a single conditional decrement; the balance
// guard is evaluated by the database inside the UPDATE.
func (r *GORMUserRepository) DebitLoyaltyPoints(id string, points int) error {
	res := r.db.Model(&models.User{}).
		Where("id = ? AND loyalty_points >= ?", id, points).
		Update("loyalty_points", gorm.Expr("loyalty_points - ?", points))
	if res.Error != nil {
		return fmt.Errorf("failed to debit %d points from user %s: %w", points, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", id, ErrInsufficientPoints)
	}
	return nil
}

// CreditLoyaltyPoints adds points to the user's balance.
func (r *GORMUserRepository) CreditLoyaltyPoints(id string, points int) error {
	res := r.db.Model(&models.User{}).
		Where("id = ?", id).
		Update("loyalty_points", gorm.Expr("loyalty_points + ?", points))
	if res.Error != nil {
		return fmt.Errorf("failed to credit %d points to user %s: %w", points, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s for points credit: %w", id, ErrNotFound)
	}
	return nil
}

// AddTotalSpent increments the user's cumulative spend.
func (r *GORMUserRepository) AddTotalSpent(id string, amount float64) error {
	res := r.db.Model(&models.User{}).
		Where("id = ?", id).
		Update("total_spent", gorm.Expr("total_spent + ?", amount))
	if res.Error != nil {
		return fmt.Errorf("failed to add %.2f spend to user %s: %w", amount, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s for spend update: %w", id, ErrNotFound)
	}
	return nil
}
