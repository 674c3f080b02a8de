// internal/domain/wishlist/reconciler.go
package wishlist

import (
	"context"
	"sync"
)

// Reconciler keeps one session's wishlist in memory so membership checks
// are instant. Every mutation goes to the service first and is followed by
// a full re-fetch; the database remains the source of truth and the memory
// copy only ever lags it by one refresh.
type Reconciler struct {
	mu      sync.RWMutex
	userID  string
	items   []WishlistItem
	service *Service
}

// NewReconciler creates a reconciler for the given user. An empty userID
// means an anonymous session: reads return empty and mutations fail with
// ErrSignInRequired.
func NewReconciler(ctx context.Context, service *Service, userID string) (*Reconciler, error) {
	r := &Reconciler{
		userID:  userID,
		service: service,
		items:   []WishlistItem{},
	}
	if userID != "" {
		if err := r.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Items returns the cached wishlist
func (r *Reconciler) Items() []WishlistItem {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]WishlistItem, len(r.items))
	copy(out, r.items)
	return out
}

// Contains reports membership from the cached copy, without a query
func (r *Reconciler) Contains(productID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// Add saves a product and refreshes the cache
func (r *Reconciler) Add(ctx context.Context, productID string) error {
	if r.userID == "" {
		return ErrSignInRequired
	}
	if _, err := r.service.AddItem(ctx, r.userID, productID); err != nil {
		return err
	}
	return r.Refresh(ctx)
}

// Remove deletes a product and refreshes the cache
func (r *Reconciler) Remove(ctx context.Context, productID string) error {
	if r.userID == "" {
		return ErrSignInRequired
	}
	if err := r.service.RemoveItem(ctx, r.userID, productID); err != nil {
		return err
	}
	return r.Refresh(ctx)
}

// Refresh re-fetches the wishlist from the database
func (r *Reconciler) Refresh(ctx context.Context) error {
	if r.userID == "" {
		return nil
	}

	items, err := r.service.ListItems(ctx, r.userID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.items = items
	r.mu.Unlock()
	return nil
}
