package catalog_test

import (
	"context"
	"os"
	"testing"

	"github.com/ValentinKolb/flatmsg/lib/catalog"
	catalogtesting "github.com/ValentinKolb/flatmsg/lib/catalog/testing"
	"github.com/ValentinKolb/flatmsg/lib/marshal"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *marshal.Engine {
	t.Helper()
	e := marshal.New(marshal.Options{})
	require.NoError(t, catalog.Register(e))
	return e
}

func TestItemWireFormat(t *testing.T) {
	e := newEngine(t)
	item := catalogtesting.SampleItem("table")

	msg, err := catalog.Encode(e, item)
	require.NoError(t, err)

	assert.Equal(t, item.ID.String(), msg.Value("id"))
	assert.Equal(t, "active", msg.Value("status"))
	assert.Equal(t, "oak", msg.Value("tags[1]"))
	assert.Equal(t, "0", msg.Value("stock[new+york]"))
	assert.Equal(t, "oiled & waxed", msg.Value("attributes[finish]"))
	assert.Equal(t, "60.5", msg.Value("dimensions.depth"))
	assert.Equal(t, "2024-03-01T09:30:00Z", msg.Value("released"))
	assert.False(t, msg.Has("totalStock"))

	decoded, err := catalog.Decode(e, msg)
	require.NoError(t, err)
	assert.Equal(t, item.Name, decoded.Name)
	assert.Equal(t, item.Stock, decoded.Stock)
	assert.Equal(t, *item.Dimensions, *decoded.Dimensions)
	assert.True(t, item.Released.Equal(decoded.Released))
}

func TestMemoryStore(t *testing.T) {
	e := newEngine(t)
	catalogtesting.RunStoreTests(t, "MemoryStore", func() catalog.IStore {
		return catalog.NewMemoryStore(e)
	})
}

func TestRedisStore(t *testing.T) {
	e := newEngine(t)
	catalogtesting.RunStoreTests(t, "RedisStore", func() catalog.IStore {
		server := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: server.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return catalog.NewRedisStore(e, client)
	})
}

// TestRedisStoreLive runs the suite against a real server if REDIS_URL is set
func TestRedisStoreLive(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	e := newEngine(t)
	catalogtesting.RunStoreTests(t, "RedisStoreLive", func() catalog.IStore {
		client := redis.NewClient(opts)
		require.NoError(t, client.FlushDB(context.Background()).Err())
		t.Cleanup(func() { _ = client.Close() })
		return catalog.NewRedisStore(e, client)
	})
}

func TestCorruptItem(t *testing.T) {
	e := newEngine(t)
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	store := catalog.NewRedisStore(e, client)
	item := catalogtesting.SampleItem("broken")
	require.NoError(t, store.Put(context.Background(), item))

	server.HSet("flatmsg:item:"+item.ID.String(), "price", "not a number")
	_, _, err := store.Get(context.Background(), item.ID)
	require.Error(t, err)
	var catErr *catalog.Error
	require.ErrorAs(t, err, &catErr)
	assert.Equal(t, catalog.RetCCorruptItem, catErr.Code)
}
