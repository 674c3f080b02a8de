// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"fmt"

	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/domain/user"
	"gorm.io/gorm"
)

// DashboardStats is the admin dashboard summary. Revenue covers confirmed,
// shipped and delivered orders; amounts are in paise.
type DashboardStats struct {
	TotalOrders    int64 `json:"total_orders"`
	PendingOrders  int64 `json:"pending_orders"`
	TotalRevenue   int64 `json:"total_revenue"`
	TotalCustomers int64 `json:"total_customers"`
	TotalProducts  int64 `json:"total_products"`
}

// Service computes dashboard statistics
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new analytics service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// GetStats computes the current dashboard summary
func (s *Service) GetStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	if err := s.db.WithContext(ctx).Model(&order.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	err := s.db.WithContext(ctx).Model(&order.Order{}).
		Where("status = ?", order.StatusPending).
		Count(&stats.PendingOrders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}

	// Pending orders have not been paid or confirmed yet, so they do not
	// count as revenue.
	var revenue *int64
	err = s.db.WithContext(ctx).Model(&order.Order{}).
		Where("status IN ?", []string{order.StatusConfirmed, order.StatusShipped, order.StatusDelivered}).
		Select("SUM(total)").
		Scan(&revenue).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if revenue != nil {
		stats.TotalRevenue = *revenue
	}

	if err := s.db.WithContext(ctx).Model(&user.User{}).Count(&stats.TotalCustomers).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&product.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	return stats, nil
}
