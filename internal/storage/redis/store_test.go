package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roboshop/cart-service/internal/domain/cart"
)

func setupStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client), mr
}

func testCart(id string) *cart.Cart {
	c := cart.New(id)
	c.Items = []cart.LineItem{
		{
			SKU:      "Watson",
			Name:     "Watson",
			Price:    decimal.RequireFromString("200.99"),
			Qty:      2,
			Subtotal: decimal.RequireFromString("401.98"),
		},
		{
			SKU:      cart.ShipSKU,
			Name:     "shipping to Oslo",
			Price:    decimal.RequireFromString("4.99"),
			Qty:      1,
			Subtotal: decimal.RequireFromString("4.99"),
		},
	}
	c.Total = cart.Total(c.Items)
	c.Tax = cart.Tax(c.Total)
	return c
}

func TestGet_Missing(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.Get(context.Background(), "nope")
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestPutGet_RoundTrip(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	want := testCart("c1")
	require.NoError(t, store.Put(ctx, "c1", want))

	got, err := store.Get(ctx, "c1")
	require.NoError(t, err)

	assert.Equal(t, want.ID, got.ID)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Watson", got.Items[0].SKU)
	assert.True(t, want.Items[0].Price.Equal(got.Items[0].Price))
	assert.True(t, want.Total.Equal(got.Total))
	assert.True(t, want.Tax.Equal(got.Tax))
}

func TestPut_SetsAndRefreshesTTL(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "c1", testCart("c1")))
	assert.Equal(t, TTL, mr.TTL("cart:c1"))

	// Age the record, then write again: the expiry clock must reset.
	mr.FastForward(30 * time.Minute)
	require.NoError(t, store.Put(ctx, "c1", testCart("c1")))
	assert.Equal(t, TTL, mr.TTL("cart:c1"))
}

func TestGet_AfterExpiry(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "c1", testCart("c1")))
	mr.FastForward(TTL + time.Second)

	_, err := store.Get(ctx, "c1")
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestDelete_ReportsExistence(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "c1", testCart("c1")))

	existed, err := store.Delete(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = store.Delete(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestRename_MovesRecord(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	want := testCart("anon-1")
	require.NoError(t, store.Put(ctx, "anon-1", want))
	mr.FastForward(10 * time.Minute)

	moved, err := store.Rename(ctx, "anon-1", "user-7")
	require.NoError(t, err)
	assert.Equal(t, "user-7", moved.ID)

	_, err = store.Get(ctx, "anon-1")
	require.ErrorIs(t, err, cart.ErrNotFound)

	got, err := store.Get(ctx, "user-7")
	require.NoError(t, err)
	assert.Equal(t, len(want.Items), len(got.Items))
	assert.True(t, want.Total.Equal(got.Total))

	// Rename writes under the new id, so its expiry starts fresh.
	assert.Equal(t, TTL, mr.TTL("cart:user-7"))
}

func TestRename_Missing(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.Rename(context.Background(), "nope", "other")
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestPing(t *testing.T) {
	store, mr := setupStore(t)

	require.NoError(t, store.Ping(context.Background()))

	mr.Close()
	require.Error(t, store.Ping(context.Background()))
}
