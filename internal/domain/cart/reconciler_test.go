// internal/domain/cart/reconciler_test.go
package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/domain/product"
)

// fakeStore records saves in memory so tests can assert what was persisted
type fakeStore struct {
	mu      sync.Mutex
	items   []Item
	saves   int
	loadErr error
	saveErr error
}

func (f *fakeStore) Load(ctx context.Context) ([]Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make([]Item, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeStore) Save(ctx context.Context, items []Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.items = make([]Item, len(items))
	copy(f.items, items)
	f.saves++
	return nil
}

func (f *fakeStore) Clear(ctx context.Context) error {
	return f.Save(ctx, nil)
}

func (f *fakeStore) persisted() []Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Item, len(f.items))
	copy(out, f.items)
	return out
}

func testProduct(id string, price int64) *product.Product {
	return &product.Product{
		ID:       id,
		Name:     "Product " + id,
		Price:    price,
		Category: product.CategorySticker,
		IsActive: true,
	}
}

func TestReconcilerAddComputesTotals(t *testing.T) {
	r := NewReconciler(context.Background(), &fakeStore{})

	r.Add(testProduct("p1", 19900))
	r.Add(testProduct("p2", 49900))
	c := r.Add(testProduct("p1", 19900))

	assert.Len(t, c.Items, 2)
	assert.Equal(t, 3, c.TotalQuantity)
	assert.Equal(t, int64(2*19900+49900), c.TotalPrice)
}

func TestReconcilerAddTwiceIncrementsLine(t *testing.T) {
	r := NewReconciler(context.Background(), &fakeStore{})

	r.Add(testProduct("p1", 10000))
	c := r.Add(testProduct("p1", 10000))

	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestReconcilerZeroQuantityRemovesLine(t *testing.T) {
	r := NewReconciler(context.Background(), &fakeStore{})
	r.Add(testProduct("p1", 10000))
	r.Add(testProduct("p2", 20000))

	c := r.UpdateQuantity("p1", 0)

	require.Len(t, c.Items, 1)
	assert.Equal(t, "p2", c.Items[0].ProductID)

	// Same result as Remove
	c = r.Remove("p2")
	assert.Empty(t, c.Items)
	assert.Equal(t, int64(0), c.TotalPrice)
}

func TestReconcilerUpdateUnknownProductIsNoop(t *testing.T) {
	r := NewReconciler(context.Background(), &fakeStore{})
	r.Add(testProduct("p1", 10000))

	c := r.UpdateQuantity("missing", 5)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 1, c.Items[0].Quantity)
}

func TestReconcilerPersistsMutations(t *testing.T) {
	store := &fakeStore{}
	r := NewReconciler(context.Background(), store)

	r.Add(testProduct("p1", 10000))
	r.UpdateQuantity("p1", 3)
	r.Wait()

	persisted := store.persisted()
	require.Len(t, persisted, 1)
	assert.Equal(t, 3, persisted[0].Quantity)
}

func TestReconcilerStoreFailureKeepsMemoryAuthoritative(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("store down")}
	r := NewReconciler(context.Background(), store)

	c := r.Add(testProduct("p1", 10000))
	r.Wait()

	// The mutation succeeded in memory despite the failed write
	require.Len(t, c.Items, 1)
	assert.Empty(t, store.persisted())
}

func TestReconcilerSwapStoreReplacesNotMerges(t *testing.T) {
	guestStore := &fakeStore{}
	r := NewReconciler(context.Background(), guestStore)
	r.Add(testProduct("guest-item", 5000))

	userStore := &fakeStore{items: []Item{
		{ProductID: "user-item", Name: "Saved", Price: 30000, Quantity: 2},
	}}

	c := r.SwapStore(context.Background(), userStore)

	// The persisted user cart wins; the guest item is gone
	require.Len(t, c.Items, 1)
	assert.Equal(t, "user-item", c.Items[0].ProductID)
	assert.Equal(t, 2, c.TotalQuantity)
	assert.Equal(t, int64(60000), c.TotalPrice)
}

func TestReconcilerSwapStoreLoadFailureStartsEmpty(t *testing.T) {
	r := NewReconciler(context.Background(), &fakeStore{})
	r.Add(testProduct("p1", 10000))

	c := r.SwapStore(context.Background(), &fakeStore{loadErr: errors.New("unavailable")})

	assert.Empty(t, c.Items)
}

func TestReconcilerClear(t *testing.T) {
	store := &fakeStore{}
	r := NewReconciler(context.Background(), store)
	r.Add(testProduct("p1", 10000))
	r.Add(testProduct("p2", 20000))

	c := r.Clear()
	r.Wait()

	assert.Empty(t, c.Items)
	assert.Empty(t, store.persisted())
}

func TestBuildCartEmpty(t *testing.T) {
	c := BuildCart(nil)

	assert.NotNil(t, c.Items)
	assert.Equal(t, 0, c.TotalQuantity)
	assert.Equal(t, int64(0), c.TotalPrice)
}
