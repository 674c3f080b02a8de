// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product categories
const (
	CategorySticker    = "sticker"
	CategoryPoster     = "poster"
	CategoryPhoneCover = "phone_cover"
	CategoryPhone      = "phone"
)

// ValidCategories lists the categories accepted by the catalog
var ValidCategories = []string{CategorySticker, CategoryPoster, CategoryPhoneCover, CategoryPhone}

// Product represents a catalog item. Price is stored in paise.
type Product struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:255;index" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Price       int64     `gorm:"not null" json:"price"`
	ImageURL    string    `gorm:"size:500" json:"image_url,omitempty"`
	Category    string    `gorm:"not null;size:50;index" json:"category"`
	Brand       string    `gorm:"size:100;index" json:"brand,omitempty"`
	PhoneModel  string    `gorm:"size:100" json:"phone_model,omitempty"`
	Stock       int       `gorm:"default:0" json:"stock"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides the table name for Product
func (Product) TableName() string {
	return "products"
}

// BeforeCreate assigns an ID
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// InStock reports whether the product can be ordered
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// IsValidCategory reports whether the category is one the catalog accepts
func IsValidCategory(category string) bool {
	for _, c := range ValidCategories {
		if c == category {
			return true
		}
	}
	return false
}
