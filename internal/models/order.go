package models

import "time"

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

// PaymentStatus tracks payment separately from fulfilment.
type PaymentStatus string

// PaymentMethod is the payment instrument chosen at checkout.
type PaymentMethod string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusReturned   OrderStatus = "returned"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"

	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodNetbanking PaymentMethod = "netbanking"
	PaymentMethodWallet     PaymentMethod = "wallet"
	PaymentMethodCOD        PaymentMethod = "cod"
)

// Address is a postal address snapshot stored on the order. For guest
// checkout it is also the customer's contact record.
type Address struct {
	FullName   string `json:"full_name" validate:"required,max=100"`
	Phone      string `json:"phone" validate:"required,max=20"`
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2" validate:"omitempty,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"omitempty,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
}

// OrderItem is a single line of an order. Name and Price are snapshots taken
// at order-creation time and never track later catalog edits.
type OrderItem struct {
	ID        uint    `json:"-" gorm:"primaryKey"`
	OrderID   string  `json:"-" gorm:"index;type:varchar(36)"`
	ProductID string  `json:"product_id" gorm:"type:varchar(36)"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"` // Unit price at the time of order
	Quantity  int     `json:"quantity" validate:"gte=1"`
	Color     string  `json:"color,omitempty"`
	Size      string  `json:"size,omitempty"`
}

// Order represents a customer order. UserID is nil for guest checkout.
// Orders are never physically deleted; history is retained indefinitely.
type Order struct {
	ID          string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderNumber string  `json:"order_number" gorm:"uniqueIndex;type:varchar(64)"`
	UserID      *string `json:"user_id,omitempty" gorm:"index;type:varchar(36)"`

	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	// Monetary breakdown. Total = Subtotal + Tax + Shipping - Discount must
	// hold exactly for every persisted order.
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`

	LoyaltyPointsUsed int    `json:"loyalty_points_used"`
	CouponCode        string `json:"coupon_code,omitempty"`

	PaymentMethod PaymentMethod `json:"payment_method" gorm:"type:varchar(20)"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"type:varchar(20);default:'pending'"`
	Status        OrderStatus   `json:"status" gorm:"type:varchar(20);default:'pending'"`

	ShippingAddress Address `json:"shipping_address" gorm:"embedded;embeddedPrefix:ship_"`
	BillingAddress  Address `json:"billing_address" gorm:"embedded;embeddedPrefix:bill_"`

	TrackingNumber string     `json:"tracking_number,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	RefundAmount   float64    `json:"refund_amount,omitempty"`
	RefundReason   string     `json:"refund_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsGuest reports whether the order was placed without a user account.
func (o *Order) IsGuest() bool {
	return o.UserID == nil || *o.UserID == ""
}
