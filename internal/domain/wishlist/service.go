// internal/domain/wishlist/service.go
package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/product"
	"gorm.io/gorm"
)

// Sentinel errors
var (
	ErrSignInRequired    = errors.New("sign in to use the wishlist")
	ErrAlreadyInWishlist = errors.New("product already in wishlist")
	ErrNotInWishlist     = errors.New("product not in wishlist")
)

// Service handles wishlist persistence for signed-in users
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new wishlist service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ListItems returns the user's wishlist, newest first, with product details
func (s *Service) ListItems(ctx context.Context, userID string) ([]WishlistItem, error) {
	if userID == "" {
		return nil, ErrSignInRequired
	}

	var items []WishlistItem
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist items: %w", err)
	}
	return items, nil
}

// AddItem saves a product to the user's wishlist. Duplicates are checked
// before the insert so the caller gets a stable error instead of a
// driver-specific constraint violation.
func (s *Service) AddItem(ctx context.Context, userID, productID string) (*WishlistItem, error) {
	if userID == "" {
		return nil, ErrSignInRequired
	}

	var p product.Product
	if err := s.db.WithContext(ctx).Where("id = ?", productID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check wishlist: %w", err)
	}
	if count > 0 {
		return nil, ErrAlreadyInWishlist
	}

	item := WishlistItem{
		UserID:    userID,
		ProductID: productID,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to add wishlist item: %w", err)
	}
	item.Product = &p

	return &item, nil
}

// RemoveItem deletes a product from the user's wishlist
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) error {
	if userID == "" {
		return ErrSignInRequired
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&WishlistItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotInWishlist
	}
	return nil
}

// Contains reports whether a product is in the user's wishlist
func (s *Service) Contains(ctx context.Context, userID, productID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check wishlist: %w", err)
	}
	return count > 0, nil
}
