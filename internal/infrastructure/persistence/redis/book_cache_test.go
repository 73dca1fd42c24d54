package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookmarket/internal/domain/book"
	"github.com/xiebiao/bookmarket/internal/domain/order"
)

func newTestClient(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func testBook() *book.Book {
	b := book.NewBook("9780134190440", "The Go Programming Language", []string{"Alan Donovan", "Brian Kernighan"})
	_ = b.AddListing(book.NewListing("seller-1", 5990, 3, "new"))
	b.TotalStock = 3
	return b
}

func TestBookCache_MissReturnsNilNil(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewBookCache(client, time.Hour)

	b, err := cache.Get(context.Background(), "9780134190440")
	require.NoError(t, err, "缓存未命中不是错误")
	assert.Nil(t, b)
}

func TestBookCache_SetGetRoundTrip(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewBookCache(client, time.Hour)
	ctx := context.Background()

	want := testBook()
	require.NoError(t, cache.Set(ctx, want))

	got, err := cache.Get(ctx, want.ISBN)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.ISBN, got.ISBN)
	assert.Equal(t, want.Title, got.Title)
	require.Len(t, got.Listings, 1)
	assert.Equal(t, want.Listings[0].ID, got.Listings[0].ID)

	// 键带TTL
	ttl := mr.TTL("book:" + want.ISBN)
	assert.Equal(t, time.Hour, ttl)
}

func TestBookCache_ExpiredKeyIsMiss(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewBookCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, testBook()))
	mr.FastForward(2 * time.Minute)

	b, err := cache.Get(ctx, "9780134190440")
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestBookCache_CorruptPayloadIsMiss(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewBookCache(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, mr.Set("book:9780134190440", "not-json"))

	b, err := cache.Get(ctx, "9780134190440")
	require.NoError(t, err)
	assert.Nil(t, b)
	// 脏数据被清除
	assert.False(t, mr.Exists("book:9780134190440"))
}

func TestBookCache_Delete(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewBookCache(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, testBook()))
	require.NoError(t, cache.Delete(ctx, "9780134190440"))
	assert.False(t, mr.Exists("book:9780134190440"))

	// 删除不存在的键也不报错
	assert.NoError(t, cache.Delete(ctx, "no-such-isbn"))
}

func TestOrderCache_RoundTrip(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewOrderCache(client, 30*time.Minute)
	ctx := context.Background()

	snapshot := *testBook()
	o := order.NewOrder(snapshot, snapshot.Listings[0], 2)

	missed, err := cache.Get(ctx, o.OrderID)
	require.NoError(t, err)
	assert.Nil(t, missed)

	require.NoError(t, cache.Set(ctx, o))

	got, err := cache.Get(ctx, o.OrderID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, o.OrderID, got.OrderID)
	assert.Equal(t, o.TotalPrice, got.TotalPrice)
	assert.Equal(t, 30*time.Minute, mr.TTL("order:"+o.OrderID))

	require.NoError(t, cache.Delete(ctx, o.OrderID))
	assert.False(t, mr.Exists("order:"+o.OrderID))
}
