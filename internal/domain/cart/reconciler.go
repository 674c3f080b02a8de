// internal/domain/cart/reconciler.go
package cart

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/product"
)

// Reconciler holds the authoritative in-memory cart for one session and
// mirrors every mutation to its backing store. Persistence is asynchronous
// and fire-and-forget: mutations never fail on store errors, the write is
// logged and the in-memory state stays authoritative.
type Reconciler struct {
	mu    sync.Mutex
	items []Item
	store Store

	wg sync.WaitGroup
}

// NewReconciler creates a reconciler over the given store, hydrating the
// in-memory cart from it. A load failure starts the cart empty.
func NewReconciler(ctx context.Context, store Store) *Reconciler {
	items, err := store.Load(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Failed to load cart, starting empty")
		items = []Item{}
	}

	return &Reconciler{
		items: items,
		store: store,
	}
}

// Cart returns the current cart view with totals
func (r *Reconciler) Cart() *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	return BuildCart(r.snapshotLocked())
}

// Contains reports whether the product has a line in the cart
func (r *Reconciler) Contains(productID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// Add adds one unit of the product, or increments the existing line
func (r *Reconciler) Add(p *product.Product) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := false
	for i := range r.items {
		if r.items[i].ProductID == p.ID {
			r.items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		r.items = append(r.items, Item{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			ImageURL:  p.ImageURL,
			Quantity:  1,
		})
	}

	r.persistLocked()
	return BuildCart(r.snapshotLocked())
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes the line; an unknown product ID is a no-op.
func (r *Reconciler) UpdateQuantity(productID string, quantity int) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ProductID == productID {
			if quantity <= 0 {
				r.items = append(r.items[:i], r.items[i+1:]...)
			} else {
				r.items[i].Quantity = quantity
			}
			r.persistLocked()
			break
		}
	}
	return BuildCart(r.snapshotLocked())
}

// Remove deletes a line from the cart
func (r *Reconciler) Remove(productID string) *Cart {
	return r.UpdateQuantity(productID, 0)
}

// Clear empties the cart
func (r *Reconciler) Clear() *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = []Item{}
	r.persistLocked()
	return BuildCart(nil)
}

// SwapStore replaces the backing store and reloads the cart from it. The
// in-memory items are discarded, not merged: the new owner's persisted
// cart wins. Used when a session signs in or out.
func (r *Reconciler) SwapStore(ctx context.Context, store Store) *Cart {
	items, err := store.Load(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Failed to load cart from new store, starting empty")
		items = []Item{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.store = store
	r.items = items
	return BuildCart(r.snapshotLocked())
}

// Wait blocks until all in-flight persistence writes have finished.
// Intended for shutdown and tests.
func (r *Reconciler) Wait() {
	r.wg.Wait()
}

// Private helper methods

// persistLocked mirrors the current items to the store in the background.
// Callers must hold r.mu.
func (r *Reconciler) persistLocked() {
	store := r.store
	items := r.snapshotLocked()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := store.Save(ctx, items); err != nil {
			logrus.WithError(err).Warn("Failed to persist cart")
		}
	}()
}

// snapshotLocked copies the items so callers never alias internal state.
// Callers must hold r.mu.
func (r *Reconciler) snapshotLocked() []Item {
	out := make([]Item, len(r.items))
	copy(out, r.items)
	return out
}
