// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Item is a cart line as held in memory and serialized to either store.
// Price is the unit price in paise, captured at the time of adding.
type Item struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	ImageURL  string `json:"image_url,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Subtotal returns the line total in paise
func (i Item) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// CartItem is the database row backing one line of a signed-in user's cart
type CartItem struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	ProductID string    `gorm:"type:uuid;not null" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name for CartItem
func (CartItem) TableName() string {
	return "cart_items"
}

// BeforeCreate assigns an ID
func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Cart is the view returned to callers
type Cart struct {
	Items         []Item `json:"items"`
	TotalQuantity int    `json:"total_quantity"`
	TotalPrice    int64  `json:"total_price"`
}

// BuildCart computes the totals view over a set of items
func BuildCart(items []Item) *Cart {
	c := &Cart{Items: items}
	if c.Items == nil {
		c.Items = []Item{}
	}
	for _, item := range c.Items {
		c.TotalQuantity += item.Quantity
		c.TotalPrice += item.Subtotal()
	}
	return c
}
