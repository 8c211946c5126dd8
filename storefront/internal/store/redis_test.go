package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/adiwardana/commerce/cart/pkg/entry"
)

func setupRedisStore(t *testing.T, c context.Context) *RedisStore {
	t.Helper()

	// the store uses redis-JSON commands, so the stack image is required
	redisContainer, err := testRedis.Run(c, "redis/redis-stack-server:7.4.0-v3")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := redisContainer.Terminate(c); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	redisConnStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}

	redisOpt, err := redis.ParseURL(redisConnStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}

	redisClient := redis.NewClient(redisOpt)
	if err = redisClient.Ping(c).Err(); err != nil {
		t.Fatalf("failed ping redis client with error: %s", err)
	}
	t.Cleanup(func() { redisClient.Close() })

	return NewRedisStore(redisClient)
}

func TestRedisStoreCartRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	c := context.Background()
	redisStore := setupRedisStore(t, c)

	// a session that never saved anything reads back empty, not an error
	cart, err := redisStore.Load(c, "session-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	saved := entry.Cart{Entries: []entry.Entry{
		entry.NewSimple(entry.SimpleItem{
			Key:       entry.VariantKey{ProductID: uuid.New(), Size: "m", Color: "navy"},
			Name:      "Crew Tee",
			UnitPrice: decimal.NewFromFloat(24.90),
			Quantity:  2,
		}),
		entry.NewBundle(entry.BundleItem{
			BundleID:  uuid.New(),
			Name:      "Weekend Set",
			UnitPrice: decimal.NewFromInt(80),
			Quantity:  1,
			SubItems: []entry.ResolvedSubItem{
				{ProductID: uuid.New(), Size: "l", Color: "olive", Quantity: 1, UnitPrice: decimal.NewFromInt(60)},
			},
		}),
	}}
	require.NoError(t, redisStore.Save(c, "session-1", saved))

	loaded, err := redisStore.Load(c, "session-1")
	require.NoError(t, err)
	require.Len(t, loaded.Entries, 2)
	assert.Equal(t, entry.KindSimple, loaded.Entries[0].Kind)
	assert.Equal(t, "Crew Tee", loaded.Entries[0].Item.Name)
	assert.Equal(t, entry.KindBundle, loaded.Entries[1].Kind)
	require.Len(t, loaded.Entries[1].Bundle.SubItems, 1)
	assert.True(t, loaded.Subtotal().Equal(saved.Subtotal()))
	assert.Equal(t, saved.ContentHash(), loaded.ContentHash())

	require.NoError(t, redisStore.Clear(c, "session-1"))
	cleared, err := redisStore.Load(c, "session-1")
	require.NoError(t, err)
	assert.True(t, cleared.IsEmpty())
}

func TestRedisStoreLastOrderID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	c := context.Background()
	redisStore := setupRedisStore(t, c)

	_, err := redisStore.LastOrderID(c, "session-1")
	assert.ErrorIs(t, err, ErrNoLastOrder)

	orderID := uuid.New()
	require.NoError(t, redisStore.SaveLastOrderID(c, "session-1", orderID))

	loaded, err := redisStore.LastOrderID(c, "session-1")
	require.NoError(t, err)
	assert.Equal(t, orderID, loaded)
}
