// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"log"

	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/domain/wishlist"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RunAutoMigrations runs GORM auto-migrations for all models
func RunAutoMigrations(db *gorm.DB) error {
	log.Println("🔄 Running database migrations...")

	err := db.AutoMigrate(
		&user.User{},
		&user.Address{},
		&product.Product{},
		&cart.CartItem{},
		&wishlist.WishlistItem{},
		&order.Order{},
		&order.OrderItem{},
	)
	if err != nil {
		return err
	}

	log.Println("✅ Database migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes not covered by model tags
func CreateIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_user_product ON cart_items(user_id, product_id)",
	}

	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			log.Printf("⚠️  Failed to create index: %v", err)
		}
	}

	return nil
}

// SeedInitialData seeds a development admin account and a few catalog
// items. Intended for development environments only.
func SeedInitialData(db *gorm.DB) error {
	var adminCount int64
	db.Model(&user.User{}).Where("role = ?", user.RoleAdmin).Count(&adminCount)
	if adminCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte("admin123456"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin := user.User{
			Email:    "admin@example.com",
			Password: string(hash),
			FullName: "Store Admin",
			Role:     user.RoleAdmin,
		}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}
		log.Println("✅ Seeded development admin account")
	}

	var productCount int64
	db.Model(&product.Product{}).Count(&productCount)
	if productCount == 0 {
		products := []product.Product{
			{
				Name:        "Retro Wave Sticker Pack",
				Description: "Set of 10 die-cut vinyl stickers",
				Price:       19900,
				Category:    product.CategorySticker,
				Stock:       200,
				IsActive:    true,
			},
			{
				Name:        "Mountain Sunrise Poster",
				Description: "A2 matte art print",
				Price:       49900,
				Category:    product.CategoryPoster,
				Stock:       50,
				IsActive:    true,
			},
			{
				Name:        "Carbon Fiber Phone Cover",
				Description: "Slim protective case",
				Price:       79900,
				Category:    product.CategoryPhoneCover,
				Brand:       "Samsung",
				PhoneModel:  "Galaxy S24",
				Stock:       75,
				IsActive:    true,
			},
		}
		if err := db.Create(&products).Error; err != nil {
			return err
		}
		log.Println("✅ Seeded sample catalog")
	}

	return nil
}
