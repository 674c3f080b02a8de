// internal/domain/cart/store_test.go
package cart

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/domain/product"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&product.Product{}, &CartItem{}))
	return db
}

func newTestRedis(t *testing.T) *goredis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	return goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price int64) *product.Product {
	t.Helper()

	p := &product.Product{
		Name:     name,
		Price:    price,
		Category: product.CategorySticker,
		Stock:    10,
		IsActive: true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestRemoteStoreSaveIsFullOverwrite(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p1 := seedProduct(t, db, "Sticker", 19900)
	p2 := seedProduct(t, db, "Poster", 49900)

	store := NewRemoteStore(db, "user-1")
	require.NoError(t, store.Save(ctx, []Item{
		{ProductID: p1.ID, Quantity: 2},
		{ProductID: p2.ID, Quantity: 1},
	}))

	// Overwrite with a smaller set; the removed line must not survive
	require.NoError(t, store.Save(ctx, []Item{
		{ProductID: p2.ID, Quantity: 3},
	}))

	items, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, p2.ID, items[0].ProductID)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestRemoteStoreLoadJoinsProductDetails(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := seedProduct(t, db, "Poster", 49900)

	store := NewRemoteStore(db, "user-1")
	require.NoError(t, store.Save(ctx, []Item{{ProductID: p.ID, Quantity: 2}}))

	items, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Poster", items[0].Name)
	assert.Equal(t, int64(49900), items[0].Price)
}

func TestRemoteStoreLoadDropsRemovedProducts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := seedProduct(t, db, "Gone", 10000)

	store := NewRemoteStore(db, "user-1")
	require.NoError(t, store.Save(ctx, []Item{{ProductID: p.ID, Quantity: 1}}))
	require.NoError(t, db.Delete(&product.Product{}, "id = ?", p.ID).Error)

	items, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRemoteStoreIsolatesUsers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := seedProduct(t, db, "Shared", 10000)

	require.NoError(t, NewRemoteStore(db, "user-1").Save(ctx, []Item{{ProductID: p.ID, Quantity: 1}}))

	items, err := NewRemoteStore(db, "user-2").Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLocalStoreRoundTrip(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	store := NewLocalStore(client, "session-1")
	saved := []Item{
		{ProductID: "p1", Name: "Sticker", Price: 19900, Quantity: 2},
	}
	require.NoError(t, store.Save(ctx, saved))

	items, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, items)
}

func TestLocalStoreEmptyAndClear(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	store := NewLocalStore(client, "session-1")

	items, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, store.Save(ctx, []Item{{ProductID: "p1", Price: 100, Quantity: 1}}))
	require.NoError(t, store.Clear(ctx))

	items, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLocalStoreSavingEmptyClears(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	store := NewLocalStore(client, "session-1")
	require.NoError(t, store.Save(ctx, []Item{{ProductID: "p1", Price: 100, Quantity: 1}}))
	require.NoError(t, store.Save(ctx, []Item{}))

	items, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLocalStoreSessionsAreIsolated(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, NewLocalStore(client, "session-1").Save(ctx, []Item{
		{ProductID: "p1", Price: 100, Quantity: 1},
	}))

	items, err := NewLocalStore(client, "session-2").Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}
