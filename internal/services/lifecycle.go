package services

import (
	"fmt"
	"log"
	"time"

	"kasir/internal/models"
)

// orderTransitions is the single source of truth for legal status moves.
// cancelled and returned are terminal; delivered only admits a return.
// Shipping requires staff confirmation first, so pending cannot jump
// straight to shipped.
var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed:  {models.OrderStatusProcessing, models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
	models.OrderStatusDelivered:  {models.OrderStatusReturned},
	models.OrderStatusCancelled:  {},
	models.OrderStatusReturned:   {},
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s models.OrderStatus) bool {
	_, ok := orderTransitions[s]
	return ok
}

func canTransition(from, to models.OrderStatus) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionOrder moves an order to the target status, applying the side
// effects the transition implies. Illegal moves fail closed with
// ErrInvalidTransition and are logged for operator review, since they
// indicate a race or a buggy client rather than an expected user flow.
//
// The status change is persisted before inventory or loyalty effects run, so
// a retried request finds the order already transitioned and fails the guard
// instead of releasing stock twice.
func (s *OrderService) TransitionOrder(orderID string, target models.OrderStatus, trackingNumber, note string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	if !ValidOrderStatus(target) {
		return nil, fmt.Errorf("unknown order status %q: %w", target, ErrInvalidTransition)
	}
	if !canTransition(order.Status, target) {
		tErr := &TransitionError{OrderID: order.ID, From: order.Status, To: target}
		log.Printf("Rejected order transition: %v", tErr)
		return nil, tErr
	}

	if target == models.OrderStatusCancelled {
		return s.cancelLocked(order, note)
	}

	from := order.Status
	order.Status = target
	switch target {
	case models.OrderStatusShipped:
		if trackingNumber != "" {
			order.TrackingNumber = trackingNumber
		}
	case models.OrderStatusDelivered:
		now := time.Now()
		order.DeliveredAt = &now
		// Cash-on-delivery settles at the door.
		if order.PaymentStatus == models.PaymentStatusPending {
			order.PaymentStatus = models.PaymentStatusCompleted
		}
	case models.OrderStatusReturned:
		if order.PaymentStatus == models.PaymentStatusCompleted {
			order.PaymentStatus = models.PaymentStatusRefunded
			order.RefundAmount = order.Total
			order.RefundReason = note
			if order.RefundReason == "" {
				order.RefundReason = "customer return"
			}
		}
	}
	if note != "" {
		order.Notes = note
	}

	if err := s.orderRepo.Update(order); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	// Returned goods go back on the shelf once the transition is durable.
	if target == models.OrderStatusReturned {
		s.releaseOrderStock(order)
	}

	s.publishEvent("order.status_changed", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"from":         from,
		"to":           target,
	})

	return order, nil
}

// CancelOrder cancels an order on behalf of its owner or staff, releasing
// reserved stock and refunding any redeemed loyalty points. Cancelling an
// already-cancelled order fails the transition guard cleanly, never
// releasing inventory twice.
func (s *OrderService) CancelOrder(orderID, requesterID string, staff bool, reason string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	if !staff {
		if order.UserID == nil || *order.UserID != requesterID {
			return nil, fmt.Errorf("order %s: %w", orderID, ErrForbidden)
		}
	}

	if !canTransition(order.Status, models.OrderStatusCancelled) {
		tErr := &TransitionError{OrderID: order.ID, From: order.Status, To: models.OrderStatusCancelled}
		log.Printf("Rejected order cancellation: %v", tErr)
		return nil, tErr
	}

	return s.cancelLocked(order, reason)
}

// cancelLocked applies the cancellation effects to an order whose transition
// guard has already passed. The status flip is persisted first; inventory
// release and loyalty refund follow, so retries cannot double-compensate.
func (s *OrderService) cancelLocked(order *models.Order, reason string) (*models.Order, error) {
	from := order.Status
	now := time.Now()
	order.Status = models.OrderStatusCancelled
	order.CancelledAt = &now
	if reason != "" {
		order.RefundReason = reason
	}
	// A completed payment carries a refund obligation; record it on the
	// order so it is never silently lost.
	if order.PaymentStatus == models.PaymentStatusCompleted {
		order.PaymentStatus = models.PaymentStatusRefunded
		order.RefundAmount = order.Total
	}

	if err := s.orderRepo.Update(order); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	s.releaseOrderStock(order)

	if order.LoyaltyPointsUsed > 0 && order.UserID != nil {
		if err := s.userRepo.CreditLoyaltyPoints(*order.UserID, order.LoyaltyPointsUsed); err != nil {
			log.Printf("CRITICAL: failed to refund %d points to user %s for cancelled order %s: %v",
				order.LoyaltyPointsUsed, *order.UserID, order.OrderNumber, err)
		}
	}

	s.publishEvent("order.cancelled", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"from":         from,
		"reason":       reason,
	})

	return order, nil
}

// releaseOrderStock returns every line's quantity to inventory. Release
// never fails by contract; an error here means the catalog row vanished and
// is escalated to the log.
func (s *OrderService) releaseOrderStock(order *models.Order) {
	for _, item := range order.Items {
		if err := s.productRepo.ReleaseStock(item.ProductID, item.Quantity); err != nil {
			log.Printf("CRITICAL: failed to release %d x %s for order %s: %v",
				item.Quantity, item.ProductID, order.OrderNumber, err)
		}
	}
}
