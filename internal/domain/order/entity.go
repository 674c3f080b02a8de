// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order statuses
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// Payment methods
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodOnline = "online"
)

// Payment statuses
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// statusTransitions defines the allowed order status changes. An order can
// only be cancelled while still pending.
var statusTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

// CanTransition reports whether an order may move from one status to another
func CanTransition(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Order represents a placed order. All amounts are in paise; Total is the
// tax-inclusive amount the customer pays. The delivery address is
// snapshotted onto the order so later address edits don't rewrite history.
type Order struct {
	ID            string `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNumber   string `gorm:"uniqueIndex;not null;size:30" json:"order_number"`
	UserID        string `gorm:"type:uuid;not null;index" json:"user_id"`
	Status        string `gorm:"not null;default:'pending';size:20;index" json:"status"`
	PaymentMethod string `gorm:"not null;size:20" json:"payment_method"`
	PaymentStatus string `gorm:"not null;default:'pending';size:20" json:"payment_status"`
	UTRNumber     string `gorm:"size:50" json:"utr_number,omitempty"`

	Subtotal int64 `gorm:"not null" json:"subtotal"`
	Tax      int64 `gorm:"not null" json:"tax"`
	Total    int64 `gorm:"not null" json:"total"`

	// Delivery address snapshot
	ShippingName     string `gorm:"not null;size:255" json:"shipping_name"`
	ShippingPhone    string `gorm:"not null;size:20" json:"shipping_phone"`
	ShippingAddress  string `gorm:"not null;size:500" json:"shipping_address"`
	ShippingCity     string `gorm:"not null;size:100" json:"shipping_city"`
	ShippingState    string `gorm:"not null;size:100" json:"shipping_state"`
	ShippingPincode  string `gorm:"not null;size:10" json:"shipping_pincode"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
}

// OrderItem represents one line of an order, with the product name and
// unit price captured at purchase time.
type OrderItem struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID     string    `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   string    `gorm:"type:uuid;not null" json:"product_id"`
	ProductName string    `gorm:"not null;size:255" json:"product_name"`
	UnitPrice   int64     `gorm:"not null" json:"unit_price"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName overrides the table name for Order
func (Order) TableName() string {
	return "orders"
}

// TableName overrides the table name for OrderItem
func (OrderItem) TableName() string {
	return "order_items"
}

// BeforeCreate assigns an ID
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns an ID
func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Subtotal returns the line total in paise
func (i *OrderItem) Subtotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// IsFinal reports whether the order has reached a terminal status
func (o *Order) IsFinal() bool {
	return o.Status == StatusDelivered || o.Status == StatusCancelled
}
