// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/domain/user"
	"gorm.io/gorm"
)

// Sentinel errors
var (
	ErrNoCartOwner = errors.New("no cart owner identified")
	ErrProductGone = errors.New("product is no longer available")
	ErrNotInCart   = errors.New("product not in cart")
)

// maxCachedReconcilers bounds the per-owner reconciler cache. The backing
// stores remain the source of truth, so an evicted owner just reloads on
// the next request.
const maxCachedReconcilers = 4096

// Owner identifies whose cart a request operates on. A signed-in user's
// cart lives in the database; an anonymous session's cart lives in Redis
// keyed by the guest session ID. Signing in switches the owner and with it
// the store: the persisted user cart replaces the guest cart, no merge.
type Owner struct {
	UserID    string
	SessionID string
}

// IsSignedIn reports whether the owner is an authenticated user
func (o Owner) IsSignedIn() bool {
	return o.UserID != ""
}

func (o Owner) key() (string, error) {
	if o.UserID != "" {
		return "user:" + o.UserID, nil
	}
	if o.SessionID != "" {
		return "guest:" + o.SessionID, nil
	}
	return "", ErrNoCartOwner
}

// Service fronts the per-owner cart reconcilers for the HTTP layer. Each
// owner gets one reconciler, kept across requests, so mutations take
// effect in memory immediately and persist in the background. Auth events
// evict the affected user's reconciler; the next request reloads from the
// store.
type Service struct {
	db             *gorm.DB
	redisClient    *redis.Client
	config         *config.Config
	productService *product.Service

	mu          sync.Mutex
	reconcilers map[string]*Reconciler

	cancelAuth func()
	done       chan struct{}
	closeOnce  sync.Once
}

// NewService creates a cart service subscribed to the auth event stream
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, productService *product.Service, stream *user.Stream) *Service {
	s := &Service{
		db:             db,
		redisClient:    redisClient,
		config:         cfg,
		productService: productService,
		reconcilers:    make(map[string]*Reconciler),
		done:           make(chan struct{}),
	}

	events, cancel := stream.Subscribe()
	s.cancelAuth = cancel
	go s.watchAuth(events)

	return s
}

// StoreFor returns the store backing the owner's cart
func (s *Service) StoreFor(owner Owner) (Store, error) {
	if owner.UserID != "" {
		return NewRemoteStore(s.db, owner.UserID), nil
	}
	if owner.SessionID != "" {
		return NewLocalStore(s.redisClient, owner.SessionID), nil
	}
	return nil, ErrNoCartOwner
}

// GetCart returns the owner's cart with totals
func (s *Service) GetCart(ctx context.Context, owner Owner) (*Cart, error) {
	r, err := s.reconcilerFor(ctx, owner)
	if err != nil {
		return nil, err
	}
	return r.Cart(), nil
}

// AddItem adds one unit of the product to the owner's cart, incrementing
// the existing line when present.
func (s *Service) AddItem(ctx context.Context, owner Owner, productID string) (*Cart, error) {
	p, err := s.productService.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			return nil, ErrProductGone
		}
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrProductGone
	}

	r, err := s.reconcilerFor(ctx, owner)
	if err != nil {
		return nil, err
	}
	return r.Add(p), nil
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, owner Owner, productID string, quantity int) (*Cart, error) {
	r, err := s.reconcilerFor(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !r.Contains(productID) {
		return nil, ErrNotInCart
	}
	return r.UpdateQuantity(productID, quantity), nil
}

// RemoveItem deletes a line from the owner's cart
func (s *Service) RemoveItem(ctx context.Context, owner Owner, productID string) (*Cart, error) {
	return s.UpdateQuantity(ctx, owner, productID, 0)
}

// ClearCart empties the owner's cart
func (s *Service) ClearCart(ctx context.Context, owner Owner) error {
	r, err := s.reconcilerFor(ctx, owner)
	if err != nil {
		return err
	}
	r.Clear()
	return nil
}

// Close stops the auth event consumer
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		s.cancelAuth()
		<-s.done
	})
}

// Private helper methods

// reconcilerFor returns the owner's cached reconciler, creating and
// hydrating one on first use.
func (s *Service) reconcilerFor(ctx context.Context, owner Owner) (*Reconciler, error) {
	key, err := owner.key()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if r, ok := s.reconcilers[key]; ok {
		s.mu.Unlock()
		return r, nil
	}
	s.mu.Unlock()

	store, err := s.StoreFor(owner)
	if err != nil {
		return nil, err
	}

	// Hydrate outside the lock; a concurrent request for the same owner
	// may win the race, in which case its reconciler is kept.
	r := NewReconciler(ctx, store)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.reconcilers[key]; ok {
		return existing, nil
	}
	if len(s.reconcilers) >= maxCachedReconcilers {
		for evicted := range s.reconcilers {
			delete(s.reconcilers, evicted)
			break
		}
	}
	s.reconcilers[key] = r
	return r, nil
}

// watchAuth evicts a user's reconciler on every auth event for them, so
// a fresh session reloads the cart from its store.
func (s *Service) watchAuth(events <-chan user.Event) {
	defer close(s.done)

	for evt := range events {
		if evt.User == nil || evt.User.ID == "" {
			continue
		}
		s.mu.Lock()
		delete(s.reconcilers, "user:"+evt.User.ID)
		s.mu.Unlock()
	}
}
