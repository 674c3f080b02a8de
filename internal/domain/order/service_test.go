// internal/domain/order/service_test.go
package order

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/pkg/email"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db          *gorm.DB
	redisClient *goredis.Client
	service     *Service
	cartService *cart.Service
	userID      string
	addressID   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{}, &user.Address{},
		&product.Product{}, &cart.CartItem{},
		&Order{}, &OrderItem{},
	))

	mr := miniredis.RunT(t)
	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	cfg := &config.Config{}
	cfg.App.Name = "storefront-test"
	cfg.Email.Provider = "log"
	cfg.Email.FromName = "Storefront"

	authStream := user.NewStream()
	t.Cleanup(authStream.Close)

	productService := product.NewService(db, cfg)
	cartService := cart.NewService(db, redisClient, cfg, productService, authStream)
	t.Cleanup(cartService.Close)
	addressService := user.NewAddressService(db, cfg)
	emailService := email.NewService(cfg)
	svc := NewService(db, redisClient, cfg, cartService, addressService, emailService)

	ctx := context.Background()

	customer := user.User{Email: "buyer@example.com", FullName: "Buyer"}
	require.NoError(t, db.Create(&customer).Error)

	address, err := addressService.CreateAddress(ctx, customer.ID, &user.AddressRequest{
		Name:         "Buyer",
		Phone:        "9999999999",
		AddressLine1: "42 Main Street",
		City:         "Chennai",
		State:        "Tamil Nadu",
		Pincode:      "600001",
	})
	require.NoError(t, err)

	return &testEnv{
		db:          db,
		redisClient: redisClient,
		service:     svc,
		cartService: cartService,
		userID:      customer.ID,
		addressID:   address.ID,
	}
}

func (e *testEnv) fillCart(t *testing.T, prices ...int64) {
	t.Helper()

	ctx := context.Background()
	for i, price := range prices {
		p := product.Product{
			Name:     "Item",
			Price:    price,
			Category: product.CategorySticker,
			Stock:    10,
			IsActive: true,
		}
		require.NoError(t, e.db.Create(&p).Error)
		_, err := e.cartService.AddItem(ctx, cart.Owner{UserID: e.userID}, p.ID)
		require.NoError(t, err, "item %d", i)
	}
}

func TestApplyTax(t *testing.T) {
	// Rs. 1000.00 plus 18% GST is exactly Rs. 1180.00
	assert.Equal(t, int64(118000), applyTax(100000))
	// Fractional paise round half up
	assert.Equal(t, int64(117), applyTax(99))
	assert.Equal(t, int64(0), applyTax(0))
}

func TestPlaceOrderCOD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.fillCart(t, 100000)

	placed, err := env.service.PlaceOrder(ctx, env.userID, &PlaceOrderRequest{
		AddressID:     env.addressID,
		PaymentMethod: PaymentMethodCOD,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, placed.Status)
	assert.Equal(t, PaymentStatusPending, placed.PaymentStatus)
	assert.Equal(t, int64(100000), placed.Subtotal)
	assert.Equal(t, int64(18000), placed.Tax)
	assert.Equal(t, int64(118000), placed.Total)
	assert.Contains(t, placed.OrderNumber, "ORD-")
	require.Len(t, placed.Items, 1)
	assert.Equal(t, int64(100000), placed.Items[0].UnitPrice)
	assert.Equal(t, "42 Main Street", placed.ShippingAddress)

	// The cart is cleared after the order commits
	c, err := env.cartService.GetCart(ctx, cart.Owner{UserID: env.userID})
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestPlaceOrderOnlineRequiresUTR(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.fillCart(t, 50000)

	_, err := env.service.PlaceOrder(ctx, env.userID, &PlaceOrderRequest{
		AddressID:     env.addressID,
		PaymentMethod: PaymentMethodOnline,
	})
	assert.ErrorIs(t, err, ErrUTRRequired)

	_, err = env.service.PlaceOrder(ctx, env.userID, &PlaceOrderRequest{
		AddressID:     env.addressID,
		PaymentMethod: PaymentMethodOnline,
		UTRNumber:     "   ",
	})
	assert.ErrorIs(t, err, ErrUTRRequired)

	placed, err := env.service.PlaceOrder(ctx, env.userID, &PlaceOrderRequest{
		AddressID:     env.addressID,
		PaymentMethod: PaymentMethodOnline,
		UTRNumber:     "UTR123456",
	})
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, placed.PaymentStatus)
	assert.Equal(t, "UTR123456", placed.UTRNumber)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.PlaceOrder(context.Background(), env.userID, &PlaceOrderRequest{
		AddressID:     env.addressID,
		PaymentMethod: PaymentMethodCOD,
	})
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestPlaceOrderForeignAddress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.fillCart(t, 10000)

	other := user.User{Email: "other@example.com"}
	require.NoError(t, env.db.Create(&other).Error)

	_, err := env.service.PlaceOrder(ctx, other.ID, &PlaceOrderRequest{
		AddressID:     env.addressID,
		PaymentMethod: PaymentMethodCOD,
	})
	assert.ErrorIs(t, err, user.ErrAddressNotFound)
}

func TestPlaceOrderPublishesEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pubsub := env.redisClient.Subscribe(ctx, EventsChannel)
	defer pubsub.Close()
	_, err := pubsub.Receive(ctx)
	require.NoError(t, err)

	env.fillCart(t, 10000)

	placed, err := env.service.PlaceOrder(ctx, env.userID, &PlaceOrderRequest{
		AddressID:     env.addressID,
		PaymentMethod: PaymentMethodCOD,
	})
	require.NoError(t, err)

	select {
	case msg := <-pubsub.Channel():
		var evt OrderEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &evt))
		assert.Equal(t, EventOrderCreated, evt.Type)
		assert.Equal(t, placed.ID, evt.OrderID)
	case <-time.After(2 * time.Second):
		t.Fatal("no order event published")
	}
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusConfirmed))
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
	assert.True(t, CanTransition(StatusConfirmed, StatusShipped))
	assert.True(t, CanTransition(StatusShipped, StatusDelivered))

	assert.False(t, CanTransition(StatusPending, StatusShipped))
	assert.False(t, CanTransition(StatusConfirmed, StatusCancelled))
	assert.False(t, CanTransition(StatusDelivered, StatusPending))
	assert.False(t, CanTransition(StatusCancelled, StatusConfirmed))
}

func TestUpdateStatusEnforcesTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.fillCart(t, 10000)
	placed, err := env.service.PlaceOrder(ctx, env.userID, &PlaceOrderRequest{
		AddressID:     env.addressID,
		PaymentMethod: PaymentMethodCOD,
	})
	require.NoError(t, err)

	_, err = env.service.UpdateStatus(ctx, placed.ID, StatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	o, err := env.service.UpdateStatus(ctx, placed.ID, StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, o.Status)

	o, err = env.service.UpdateStatus(ctx, placed.ID, StatusShipped)
	require.NoError(t, err)

	// Delivery settles a cash-on-delivery payment
	o, err = env.service.UpdateStatus(ctx, placed.ID, StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)

	_, err = env.service.UpdateStatus(ctx, placed.ID, StatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestGetOrderScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.fillCart(t, 10000)
	placed, err := env.service.PlaceOrder(ctx, env.userID, &PlaceOrderRequest{
		AddressID:     env.addressID,
		PaymentMethod: PaymentMethodCOD,
	})
	require.NoError(t, err)

	_, err = env.service.GetOrder(ctx, "someone-else", placed.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	o, err := env.service.GetOrder(ctx, env.userID, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.OrderNumber, o.OrderNumber)
	require.Len(t, o.Items, 1)
}

func TestListAllOrdersFiltersByStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.fillCart(t, 10000)
	first, err := env.service.PlaceOrder(ctx, env.userID, &PlaceOrderRequest{
		AddressID: env.addressID, PaymentMethod: PaymentMethodCOD,
	})
	require.NoError(t, err)

	env.fillCart(t, 20000)
	_, err = env.service.PlaceOrder(ctx, env.userID, &PlaceOrderRequest{
		AddressID: env.addressID, PaymentMethod: PaymentMethodCOD,
	})
	require.NoError(t, err)

	_, err = env.service.UpdateStatus(ctx, first.ID, StatusConfirmed)
	require.NoError(t, err)

	resp, err := env.service.ListAllOrders(ctx, &ListRequest{Status: StatusPending})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)

	resp, err = env.service.ListAllOrders(ctx, &ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
}
