// internal/domain/wishlist/service_test.go
package wishlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/product"
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
	require.NoError(t, db.AutoMigrate(&product.Product{}, &WishlistItem{}))

	return NewService(db, &config.Config{}), db
}

func seedProduct(t *testing.T, db *gorm.DB, name string) *product.Product {
	t.Helper()

	p := &product.Product{
		Name:     name,
		Price:    19900,
		Category: product.CategoryPoster,
		Stock:    5,
		IsActive: true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestAddItemRequiresSignIn(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddItem(context.Background(), "", "some-product")
	assert.ErrorIs(t, err, ErrSignInRequired)

	_, err = svc.ListItems(context.Background(), "")
	assert.ErrorIs(t, err, ErrSignInRequired)

	err = svc.RemoveItem(context.Background(), "", "some-product")
	assert.ErrorIs(t, err, ErrSignInRequired)
}

func TestAddItemAndList(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	p := seedProduct(t, db, "Poster")

	item, err := svc.AddItem(ctx, "user-1", p.ID)
	require.NoError(t, err)
	require.NotNil(t, item.Product)
	assert.Equal(t, "Poster", item.Product.Name)

	items, err := svc.ListItems(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, p.ID, items[0].ProductID)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Poster", items[0].Product.Name)
}

func TestAddItemRejectsDuplicates(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	p := seedProduct(t, db, "Poster")

	_, err := svc.AddItem(ctx, "user-1", p.ID)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, "user-1", p.ID)
	assert.ErrorIs(t, err, ErrAlreadyInWishlist)

	// A different user can still save the same product
	_, err = svc.AddItem(ctx, "user-2", p.ID)
	assert.NoError(t, err)
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddItem(context.Background(), "user-1", "no-such-product")
	assert.ErrorIs(t, err, product.ErrProductNotFound)
}

func TestRemoveItem(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	p := seedProduct(t, db, "Poster")
	_, err := svc.AddItem(ctx, "user-1", p.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(ctx, "user-1", p.ID))

	err = svc.RemoveItem(ctx, "user-1", p.ID)
	assert.ErrorIs(t, err, ErrNotInWishlist)
}

func TestContains(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	p := seedProduct(t, db, "Poster")

	inWishlist, err := svc.Contains(ctx, "user-1", p.ID)
	require.NoError(t, err)
	assert.False(t, inWishlist)

	_, err = svc.AddItem(ctx, "user-1", p.ID)
	require.NoError(t, err)

	inWishlist, err = svc.Contains(ctx, "user-1", p.ID)
	require.NoError(t, err)
	assert.True(t, inWishlist)

	// Anonymous callers simply get false
	inWishlist, err = svc.Contains(ctx, "", p.ID)
	require.NoError(t, err)
	assert.False(t, inWishlist)
}

func TestReconcilerCachesMembership(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	p1 := seedProduct(t, db, "Poster A")
	p2 := seedProduct(t, db, "Poster B")

	r, err := NewReconciler(ctx, svc, "user-1")
	require.NoError(t, err)

	assert.False(t, r.Contains(p1.ID))

	require.NoError(t, r.Add(ctx, p1.ID))
	assert.True(t, r.Contains(p1.ID))
	assert.False(t, r.Contains(p2.ID))

	err = r.Add(ctx, p1.ID)
	assert.ErrorIs(t, err, ErrAlreadyInWishlist)

	require.NoError(t, r.Remove(ctx, p1.ID))
	assert.False(t, r.Contains(p1.ID))
	assert.Empty(t, r.Items())
}

func TestReconcilerAnonymousSession(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	p := seedProduct(t, db, "Poster")

	r, err := NewReconciler(ctx, svc, "")
	require.NoError(t, err)

	assert.False(t, r.Contains(p.ID))
	assert.ErrorIs(t, r.Add(ctx, p.ID), ErrSignInRequired)
	assert.ErrorIs(t, r.Remove(ctx, p.ID), ErrSignInRequired)
}
