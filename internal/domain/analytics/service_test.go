// internal/domain/analytics/service_test.go
package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/domain/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{}, &product.Product{},
		&order.Order{}, &order.OrderItem{},
	))

	return NewService(db, &config.Config{}), db
}

func seedOrder(t *testing.T, db *gorm.DB, status string, total int64) {
	t.Helper()

	o := order.Order{
		OrderNumber:     "ORD-TEST-" + status + "-" + t.Name(),
		UserID:          "user-1",
		Status:          status,
		PaymentMethod:   order.PaymentMethodCOD,
		PaymentStatus:   order.PaymentStatusPending,
		Subtotal:        total,
		Total:           total,
		ShippingName:    "Buyer",
		ShippingPhone:   "9999999999",
		ShippingAddress: "42 Main Street",
		ShippingCity:    "Chennai",
		ShippingState:   "Tamil Nadu",
		ShippingPincode: "600001",
	}
	require.NoError(t, db.Create(&o).Error)
}

func TestGetStatsEmptyDatabase(t *testing.T) {
	svc, _ := newTestService(t)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalOrders)
	assert.Equal(t, int64(0), stats.TotalRevenue)
}

func TestGetStatsRevenueCountsConfirmedOnwards(t *testing.T) {
	svc, db := newTestService(t)

	seedOrder(t, db, order.StatusPending, 118000)
	seedOrder(t, db, order.StatusConfirmed, 59000)
	seedOrder(t, db, order.StatusShipped, 23600)
	seedOrder(t, db, order.StatusDelivered, 11800)
	seedOrder(t, db, order.StatusCancelled, 999999)

	require.NoError(t, db.Create(&user.User{Email: "a@b.com"}).Error)
	require.NoError(t, db.Create(&product.Product{
		Name: "P", Price: 100, Category: product.CategorySticker, IsActive: true,
	}).Error)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.PendingOrders)
	// Pending and cancelled orders contribute nothing
	assert.Equal(t, int64(59000+23600+11800), stats.TotalRevenue)
	assert.Equal(t, int64(1), stats.TotalCustomers)
	assert.Equal(t, int64(1), stats.TotalProducts)
}
