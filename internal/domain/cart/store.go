// internal/domain/cart/store.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront/internal/domain/product"
	"gorm.io/gorm"
)

// Store persists a cart for one owner. LocalStore backs anonymous sessions,
// RemoteStore backs signed-in users; the reconciler works against the
// interface and never knows which one it holds.
type Store interface {
	// Load returns the persisted items, or an empty slice when none exist
	Load(ctx context.Context) ([]Item, error)
	// Save overwrites the persisted items with the given set
	Save(ctx context.Context, items []Item) error
	// Clear removes all persisted items
	Clear(ctx context.Context) error
}

const guestCartTTL = 7 * 24 * time.Hour

// LocalStore keeps an anonymous session's cart as a JSON blob in Redis,
// keyed by the guest session ID.
type LocalStore struct {
	redisClient *redis.Client
	sessionID   string
}

// NewLocalStore creates a store for an anonymous session
func NewLocalStore(redisClient *redis.Client, sessionID string) *LocalStore {
	return &LocalStore{
		redisClient: redisClient,
		sessionID:   sessionID,
	}
}

// Load implements Store
func (s *LocalStore) Load(ctx context.Context) ([]Item, error) {
	data, err := s.redisClient.Get(ctx, s.key()).Result()
	if err == redis.Nil {
		return []Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load guest cart: %w", err)
	}

	var items []Item
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		// Unreadable blob; treat as empty rather than poisoning the session.
		return []Item{}, nil
	}
	return items, nil
}

// Save implements Store
func (s *LocalStore) Save(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return s.Clear(ctx)
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal guest cart: %w", err)
	}
	if err := s.redisClient.Set(ctx, s.key(), data, guestCartTTL).Err(); err != nil {
		return fmt.Errorf("failed to save guest cart: %w", err)
	}
	return nil
}

// Clear implements Store
func (s *LocalStore) Clear(ctx context.Context) error {
	if err := s.redisClient.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("failed to clear guest cart: %w", err)
	}
	return nil
}

func (s *LocalStore) key() string {
	return fmt.Sprintf("cart:guest:%s", s.sessionID)
}

// RemoteStore keeps a signed-in user's cart in the database. Save is a
// full overwrite: delete everything, insert the current set.
type RemoteStore struct {
	db     *gorm.DB
	userID string
}

// NewRemoteStore creates a store for a signed-in user
func NewRemoteStore(db *gorm.DB, userID string) *RemoteStore {
	return &RemoteStore{
		db:     db,
		userID: userID,
	}
}

// Load implements Store. Product details are joined in so the items carry
// current names, prices and images.
func (s *RemoteStore) Load(ctx context.Context) ([]Item, error) {
	var rows []CartItem
	err := s.db.WithContext(ctx).
		Where("user_id = ?", s.userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	if len(rows) == 0 {
		return []Item{}, nil
	}

	productIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		productIDs = append(productIDs, row.ProductID)
	}

	var products []product.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart products: %w", err)
	}
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		p, ok := byID[row.ProductID]
		if !ok {
			// Product was removed from the catalog; drop the line.
			continue
		}
		items = append(items, Item{
			ProductID: row.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			ImageURL:  p.ImageURL,
			Quantity:  row.Quantity,
		})
	}
	return items, nil
}

// Save implements Store
func (s *RemoteStore) Save(ctx context.Context, items []Item) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", s.userID).Delete(&CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart items: %w", err)
		}
		if len(items) == 0 {
			return nil
		}

		rows := make([]CartItem, 0, len(items))
		for _, item := range items {
			rows = append(rows, CartItem{
				UserID:    s.userID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert cart items: %w", err)
		}
		return nil
	})
}

// Clear implements Store
func (s *RemoteStore) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", s.userID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}
	return nil
}
