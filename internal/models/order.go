package models

import "time"

// Order statuses.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
	OrderRefunded  = "refunded"
)

// Payment statuses.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

type Order struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderNumber string  `gorm:"size:36;not null;uniqueIndex" json:"order_number"`
	BuyerID     uint    `gorm:"not null;index" json:"buyer_id"`
	TotalAmount float64 `gorm:"not null" json:"total_amount"`

	ShippingAddress string `gorm:"size:500;not null" json:"shipping_address"`
	BillingAddress  string `gorm:"size:500;not null" json:"billing_address"`

	OrderStatus   string `gorm:"size:20;default:'pending'" json:"order_status"`
	PaymentStatus string `gorm:"size:20;default:'pending'" json:"payment_status"`

	PaymentMethod        string `gorm:"size:50" json:"payment_method"`
	PaymentTransactionID string `gorm:"size:100" json:"payment_transaction_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem snapshots the unit price at purchase time.
type OrderItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	UnitPrice  float64   `gorm:"not null" json:"unit_price"`
	TotalPrice float64   `gorm:"not null" json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
}
