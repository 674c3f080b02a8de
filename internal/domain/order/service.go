// internal/domain/order/service.go
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/pkg/email"
	"gorm.io/gorm"
)

// Sentinel errors
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrCartEmpty         = errors.New("cart is empty")
	ErrUTRRequired       = errors.New("UTR number is required for online payment")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// taxRatePercent is the GST rate applied on the cart subtotal
const taxRatePercent = 18

// EventsChannel is the Redis pub/sub channel carrying order lifecycle events
const EventsChannel = "orders.events"

// Event types published on EventsChannel
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the pub/sub payload for order lifecycle changes
type OrderEvent struct {
	Type        string `json:"type"`
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
}

// Service handles order placement and lifecycle
type Service struct {
	db             *gorm.DB
	redisClient    *redis.Client
	config         *config.Config
	cartService    *cart.Service
	addressService *user.AddressService
	emailService   *email.Service
}

// NewService creates a new order service
func NewService(
	db *gorm.DB,
	redisClient *redis.Client,
	cfg *config.Config,
	cartService *cart.Service,
	addressService *user.AddressService,
	emailService *email.Service,
) *Service {
	return &Service{
		db:             db,
		redisClient:    redisClient,
		config:         cfg,
		cartService:    cartService,
		addressService: addressService,
		emailService:   emailService,
	}
}

// PlaceOrderRequest represents a checkout request
type PlaceOrderRequest struct {
	AddressID     string `json:"address_id" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=cod online"`
	UTRNumber     string `json:"utr_number"`
}

// ListRequest represents admin order listing filters
type ListRequest struct {
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// ListResponse represents a page of orders
type ListResponse struct {
	Orders []Order `json:"orders"`
	Total  int64   `json:"total"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

// PlaceOrder turns the user's cart into an order. The order and its items
// are written in a single transaction; the cart is cleared only after the
// transaction commits. Online payments must carry a UTR number and are
// recorded as paid, cash on delivery stays pending.
func (s *Service) PlaceOrder(ctx context.Context, userID string, req *PlaceOrderRequest) (*Order, error) {
	if req.PaymentMethod == PaymentMethodOnline && strings.TrimSpace(req.UTRNumber) == "" {
		return nil, ErrUTRRequired
	}

	owner := cart.Owner{UserID: userID}
	userCart, err := s.cartService.GetCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(userCart.Items) == 0 {
		return nil, ErrCartEmpty
	}

	address, err := s.addressService.GetAddress(ctx, userID, req.AddressID)
	if err != nil {
		return nil, err
	}

	subtotal := userCart.TotalPrice
	total := applyTax(subtotal)

	paymentStatus := PaymentStatusPending
	if req.PaymentMethod == PaymentMethodOnline {
		paymentStatus = PaymentStatusPaid
	}

	shippingAddress := address.AddressLine1
	if address.AddressLine2 != "" {
		shippingAddress += ", " + address.AddressLine2
	}

	newOrder := Order{
		OrderNumber:     generateOrderNumber(),
		UserID:          userID,
		Status:          StatusPending,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   paymentStatus,
		UTRNumber:       strings.TrimSpace(req.UTRNumber),
		Subtotal:        subtotal,
		Tax:             total - subtotal,
		Total:           total,
		ShippingName:    address.Name,
		ShippingPhone:   address.Phone,
		ShippingAddress: shippingAddress,
		ShippingCity:    address.City,
		ShippingState:   address.State,
		ShippingPincode: address.Pincode,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newOrder).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		items := make([]OrderItem, 0, len(userCart.Items))
		for _, line := range userCart.Items {
			items = append(items, OrderItem{
				OrderID:     newOrder.ID,
				ProductID:   line.ProductID,
				ProductName: line.Name,
				UnitPrice:   line.Price,
				Quantity:    line.Quantity,
			})
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}
		newOrder.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cartService.ClearCart(ctx, owner); err != nil {
		logrus.WithError(err).WithField("order_id", newOrder.ID).Warn("Failed to clear cart after order")
	}

	s.publishEvent(ctx, EventOrderCreated, &newOrder)
	s.sendConfirmationEmail(userID, &newOrder)

	return &newOrder, nil
}

// GetOrder returns an order owned by the user, items included
func (s *Service) GetOrder(ctx context.Context, userID, orderID string) (*Order, error) {
	var o Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &o, nil
}

// GetOrderByID returns any order by ID (admin)
func (s *Service) GetOrderByID(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", orderID).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &o, nil
}

// ListOrders returns the user's orders, newest first
func (s *Service) ListOrders(ctx context.Context, userID string) ([]Order, error) {
	var orders []Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListAllOrders returns a filtered page of all orders (admin)
func (s *Service) ListAllOrders(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.WithContext(ctx).Model(&Order{})
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	err := query.Preload("Items").
		Order("created_at DESC").
		Offset((req.Page - 1) * req.Limit).
		Limit(req.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return &ListResponse{
		Orders: orders,
		Total:  total,
		Page:   req.Page,
		Limit:  req.Limit,
	}, nil
}

// UpdateStatus moves an order along its lifecycle (admin). Only the
// transitions pending→confirmed/cancelled, confirmed→shipped and
// shipped→delivered are allowed.
func (s *Service) UpdateStatus(ctx context.Context, orderID, newStatus string) (*Order, error) {
	o, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(o.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, o.Status, newStatus)
	}

	updates := map[string]interface{}{"status": newStatus}
	if newStatus == StatusDelivered && o.PaymentMethod == PaymentMethodCOD {
		updates["payment_status"] = PaymentStatusPaid
	}

	if err := s.db.WithContext(ctx).Model(o).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	o.Status = newStatus
	if ps, ok := updates["payment_status"]; ok {
		o.PaymentStatus = ps.(string)
	}

	s.publishEvent(ctx, EventOrderStatusChanged, o)

	return o, nil
}

// Private helper methods

// applyTax returns the tax-inclusive total in paise, rounded half up
func applyTax(subtotal int64) int64 {
	return (subtotal*(100+taxRatePercent) + 50) / 100
}

func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
}

func (s *Service) publishEvent(ctx context.Context, eventType string, o *Order) {
	payload, err := json.Marshal(OrderEvent{
		Type:        eventType,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal order event")
		return
	}

	if err := s.redisClient.Publish(ctx, EventsChannel, payload).Err(); err != nil {
		logrus.WithError(err).WithField("order_id", o.ID).Warn("Failed to publish order event")
	}
}

func (s *Service) sendConfirmationEmail(userID string, o *Order) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		var u user.User
		if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&u).Error; err != nil {
			logrus.WithError(err).WithField("order_id", o.ID).Warn("Failed to load user for confirmation email")
			return
		}

		if err := s.emailService.SendOrderConfirmation(ctx, u.Email, u.DisplayName(), o.OrderNumber, o.Total); err != nil {
			logrus.WithError(err).WithField("order_id", o.ID).Warn("Failed to send order confirmation email")
		}
	}()
}
