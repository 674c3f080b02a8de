// internal/domain/wishlist/entity.go
package wishlist

import (
	"time"

	"github.com/google/uuid"
	"github.com/your-org/storefront/internal/domain/product"
	"gorm.io/gorm"
)

// WishlistItem represents one saved product for a user. The pair
// (user_id, product_id) is unique: a product can be saved at most once.
type WishlistItem struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_product" json:"user_id"`
	ProductID string    `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_product" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`

	Product *product.Product `gorm:"foreignKey:ProductID;references:ID" json:"product,omitempty"`
}

// TableName overrides the table name for WishlistItem
func (WishlistItem) TableName() string {
	return "wishlist_items"
}

// BeforeCreate assigns an ID
func (w *WishlistItem) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
