// internal/domain/user/address_service.go
package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/storefront/internal/config"
	"gorm.io/gorm"
)

// ErrAddressNotFound is returned when an address does not exist or does
// not belong to the requesting user.
var ErrAddressNotFound = errors.New("address not found")

// AddressService handles delivery address operations
type AddressService struct {
	db     *gorm.DB
	config *config.Config
}

// NewAddressService creates a new address service
func NewAddressService(db *gorm.DB, cfg *config.Config) *AddressService {
	return &AddressService{
		db:     db,
		config: cfg,
	}
}

// AddressRequest represents an address create/update request
type AddressRequest struct {
	Name         string `json:"name" binding:"required,min=2,max=255"`
	Phone        string `json:"phone" binding:"required,min=10,max=20"`
	AddressLine1 string `json:"address_line1" binding:"required,max=255"`
	AddressLine2 string `json:"address_line2" binding:"max=255"`
	City         string `json:"city" binding:"required,max=100"`
	State        string `json:"state" binding:"required,max=100"`
	Pincode      string `json:"pincode" binding:"required,min=6,max=10"`
	IsDefault    bool   `json:"is_default"`
}

// ListAddresses returns all addresses for a user, default first
func (s *AddressService) ListAddresses(ctx context.Context, userID string) ([]Address, error) {
	var addresses []Address
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

// GetAddress returns a single address owned by the user
func (s *AddressService) GetAddress(ctx context.Context, userID, addressID string) (*Address, error) {
	var address Address
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		First(&address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to load address: %w", err)
	}
	return &address, nil
}

// CreateAddress adds a new address for the user
func (s *AddressService) CreateAddress(ctx context.Context, userID string, req *AddressRequest) (*Address, error) {
	address := Address{
		UserID:       userID,
		Name:         req.Name,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		Pincode:      req.Pincode,
		IsDefault:    req.IsDefault,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := tx.Model(&Address{}).Where("user_id = ?", userID).Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	return &address, nil
}

// UpdateAddress updates an existing address owned by the user
func (s *AddressService) UpdateAddress(ctx context.Context, userID, addressID string, req *AddressRequest) (*Address, error) {
	address, err := s.GetAddress(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.IsDefault && !address.IsDefault {
			if err := tx.Model(&Address{}).Where("user_id = ?", userID).Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Model(address).Updates(map[string]interface{}{
			"name":          req.Name,
			"phone":         req.Phone,
			"address_line1": req.AddressLine1,
			"address_line2": req.AddressLine2,
			"city":          req.City,
			"state":         req.State,
			"pincode":       req.Pincode,
			"is_default":    req.IsDefault,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}

	return s.GetAddress(ctx, userID, addressID)
}

// DeleteAddress removes an address owned by the user
func (s *AddressService) DeleteAddress(ctx context.Context, userID, addressID string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		Delete(&Address{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete address: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAddressNotFound
	}
	return nil
}
