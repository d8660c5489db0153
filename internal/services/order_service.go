package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"kasir/internal/models"
	"kasir/internal/pricing"
	"kasir/internal/repositories"

	"github.com/google/uuid"
)

// EventPublisher publishes order lifecycle events. *rabbitmq.Client
// satisfies it; tests pass nil to skip publication.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// CheckoutRequest carries everything needed to place an order. UserID is
// empty for guest checkout, in which case the shipping address doubles as
// the contact record and loyalty redemption is unavailable.
type CheckoutRequest struct {
	UserID            string
	Items             []CartLine           `json:"items" validate:"omitempty,dive"`
	FromCart          bool                 `json:"from_cart"`
	ShippingAddress   models.Address       `json:"shipping_address" validate:"required"`
	BillingAddress    *models.Address      `json:"billing_address" validate:"omitempty"`
	PaymentMethod     models.PaymentMethod `json:"payment_method" validate:"required,oneof=card upi netbanking wallet cod"`
	LoyaltyPointsUsed int                  `json:"loyalty_points_used" validate:"gte=0"`
	CouponCode        string               `json:"coupon_code" validate:"omitempty,max=50"`
	Notes             string               `json:"notes" validate:"omitempty,max=500"`
}

// OrderService handles order creation and queries. Status transitions live in
// lifecycle.go on the same type.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	cartRepo    repositories.CartRepository
	validator   *CartValidator
	pricing     pricing.Config
	events      EventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	userRepo repositories.UserRepository,
	cartRepo repositories.CartRepository,
	pricingCfg pricing.Config,
	events EventPublisher,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		cartRepo:    cartRepo,
		validator:   NewCartValidator(productRepo),
		pricing:     pricingCfg,
		events:      events,
	}
}

// GetAllOrders retrieves orders matching the filter, newest first.
func (s *OrderService) GetAllOrders(filter repositories.OrderFilter) ([]models.Order, error) {
	return s.orderRepo.GetAll(filter)
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// GetOrderByNumber retrieves a single order by its human-readable number.
func (s *OrderService) GetOrderByNumber(orderNumber string) (*models.Order, error) {
	return s.orderRepo.GetByOrderNumber(orderNumber)
}

// GetOrdersByUser retrieves a user's order history, newest first.
func (s *OrderService) GetOrdersByUser(userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(userID)
}

// CreateOrder runs the checkout sequence: validate the cart snapshot, price
// it, reserve stock line by line, debit redeemed loyalty points, and persist
// the order. Any failure rolls back every effect already applied in this
// attempt, so a failed checkout never leaves dangling reservations or a
// partial order.
func (s *OrderService) CreateOrder(req CheckoutRequest) (*models.Order, error) {
	lines := req.Items
	if req.FromCart {
		if req.UserID == "" {
			return nil, fmt.Errorf("guest checkout cannot draw from a stored cart: %w", ErrEmptyOrder)
		}
		cartItems, err := s.cartRepo.ListByUser(req.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load cart: %w", err)
		}
		lines = make([]CartLine, 0, len(cartItems))
		for _, ci := range cartItems {
			lines = append(lines, CartLine{
				ProductID: ci.ProductID,
				Quantity:  ci.Quantity,
				Color:     ci.Color,
				Size:      ci.Size,
			})
		}
	}

	// 1. Validate the proposed lines against live catalog state and freeze
	// prices (read-only; no stock is touched yet).
	items, err := s.validator.Validate(lines)
	if err != nil {
		return nil, err
	}

	// 2. Price the validated snapshot. Redemption is worth 1 point = 1
	// currency unit against the subtotal; points beyond it carry no discount
	// value, so only the capped amount is debited and recorded.
	redeemed := req.LoyaltyPointsUsed
	breakdown := pricing.Quote(items, redeemed, s.pricing)
	if float64(redeemed) > breakdown.Discount {
		redeemed = int(breakdown.Discount)
		breakdown = pricing.Quote(items, redeemed, s.pricing)
	}

	// 3. Verify the redemption up front so we fail before touching
	// inventory. The actual debit below is still conditional, so a
	// concurrent spend cannot overdraw the balance.
	if req.LoyaltyPointsUsed > 0 {
		if req.UserID == "" {
			return nil, &LoyaltyPointsError{Requested: req.LoyaltyPointsUsed, Available: 0}
		}
		user, err := s.userRepo.GetByID(req.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up user %s: %w", req.UserID, err)
		}
		if user.LoyaltyPoints < redeemed {
			return nil, &LoyaltyPointsError{
				Requested: redeemed,
				Available: user.LoyaltyPoints,
			}
		}
	}

	// 4. Reserve stock in input order so failure messages are reproducible.
	// On any failure, release what this attempt already reserved.
	reserved := make([]models.OrderItem, 0, len(items))
	rollbackReservations := func() {
		for _, item := range reserved {
			if relErr := s.productRepo.ReleaseStock(item.ProductID, item.Quantity); relErr != nil {
				log.Printf("CRITICAL: failed to roll back reservation of %d x %s: %v",
					item.Quantity, item.ProductID, relErr)
			}
		}
	}
	for _, item := range items {
		if err := s.productRepo.ReserveStock(item.ProductID, item.Quantity); err != nil {
			rollbackReservations()
			if errors.Is(err, repositories.ErrInsufficientStock) {
				available := 0
				if p, lookupErr := s.productRepo.GetByID(item.ProductID); lookupErr == nil {
					available = p.Stock
				}
				return nil, &InsufficientStockError{
					ProductID: item.ProductID,
					Requested: item.Quantity,
					Available: available,
				}
			}
			return nil, fmt.Errorf("failed to reserve stock: %w", err)
		}
		reserved = append(reserved, item)
	}

	// 5. Debit redeemed points atomically.
	if redeemed > 0 {
		if err := s.userRepo.DebitLoyaltyPoints(req.UserID, redeemed); err != nil {
			rollbackReservations()
			if errors.Is(err, repositories.ErrInsufficientPoints) {
				// A concurrent spend won the balance; re-read it for the
				// error detail.
				available := 0
				if u, lookupErr := s.userRepo.GetByID(req.UserID); lookupErr == nil {
					available = u.LoyaltyPoints
				}
				return nil, &LoyaltyPointsError{Requested: redeemed, Available: available}
			}
			return nil, fmt.Errorf("failed to debit loyalty points: %w", err)
		}
	}

	// 6. Build and persist the order record.
	billing := req.ShippingAddress
	if req.BillingAddress != nil {
		billing = *req.BillingAddress
	}
	var userID *string
	if req.UserID != "" {
		id := req.UserID
		userID = &id
	}
	order := &models.Order{
		ID:                uuid.New().String(),
		OrderNumber:       newOrderNumber(),
		UserID:            userID,
		Items:             items,
		Subtotal:          breakdown.Subtotal,
		Tax:               breakdown.Tax,
		Shipping:          breakdown.Shipping,
		Discount:          breakdown.Discount,
		Total:             breakdown.Total,
		LoyaltyPointsUsed: redeemed,
		CouponCode:        req.CouponCode,
		PaymentMethod:     req.PaymentMethod,
		PaymentStatus:     models.PaymentStatusPending,
		Status:            models.OrderStatusPending,
		ShippingAddress:   req.ShippingAddress,
		BillingAddress:    billing,
		Notes:             req.Notes,
	}

	if err := s.orderRepo.Create(order); err != nil {
		// Compensate: undo reservations and the points debit, then surface a
		// generic persistence failure.
		rollbackReservations()
		if redeemed > 0 {
			if credErr := s.userRepo.CreditLoyaltyPoints(req.UserID, redeemed); credErr != nil {
				log.Printf("CRITICAL: failed to refund %d points to user %s after persistence failure: %v",
					redeemed, req.UserID, credErr)
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	// 7. Post-commit effects. Failures here are logged, not surfaced; the
	// order itself is already durable.
	if req.UserID != "" {
		if accrued := pricing.AccruedPoints(order.Total, s.pricing); accrued > 0 {
			if err := s.userRepo.CreditLoyaltyPoints(req.UserID, accrued); err != nil {
				log.Printf("Warning: failed to accrue %d points for user %s on order %s: %v",
					accrued, req.UserID, order.OrderNumber, err)
			}
		}
		if err := s.userRepo.AddTotalSpent(req.UserID, order.Total); err != nil {
			log.Printf("Warning: failed to add spend for user %s on order %s: %v",
				req.UserID, order.OrderNumber, err)
		}
		if req.FromCart {
			if err := s.cartRepo.Clear(req.UserID); err != nil {
				log.Printf("Warning: failed to clear cart for user %s after order %s: %v",
					req.UserID, order.OrderNumber, err)
			}
		}
	}

	s.publishEvent("order.created", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      req.UserID,
		"status":       order.Status,
		"total":        order.Total,
	})

	return order, nil
}

// publishEvent marshals and publishes an order event, logging failures
// instead of surfacing them; event delivery is best-effort.
func (s *OrderService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.events.Publish(routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}

// newOrderNumber returns a globally unique, human-readable order number that
// sorts by creation time for support and debugging.
func newOrderNumber() string {
	ts := time.Now().UTC().Format("20060102-150405")
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", ts, suffix)
}
