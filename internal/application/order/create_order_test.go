package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookmarket/internal/domain/book"
	"github.com/xiebiao/bookmarket/internal/domain/order"
	"github.com/xiebiao/bookmarket/internal/messaging"
)

// fakeBookReader 固定返回一本书
type fakeBookReader struct {
	book *book.Book
	err  error
}

func (r *fakeBookReader) Execute(ctx context.Context, isbn string) (*book.Book, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.book, nil
}

// fakeOrderRepo 内存版订单仓储
type fakeOrderRepo struct {
	orders    map[string]*order.Order
	createErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*order.Order)}
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, orderID string) (*order.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *order.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.orders[o.OrderID] = o
	return nil
}

func (r *fakeOrderRepo) Delete(ctx context.Context, orderID string) error {
	if _, ok := r.orders[orderID]; !ok {
		return order.ErrOrderNotFound
	}
	delete(r.orders, orderID)
	return nil
}

// fakeOrderCache 内存版订单缓存
type fakeOrderCache struct {
	orders map[string]*order.Order
	setErr error
}

func newFakeOrderCache() *fakeOrderCache {
	return &fakeOrderCache{orders: make(map[string]*order.Order)}
}

func (c *fakeOrderCache) Get(ctx context.Context, orderID string) (*order.Order, error) {
	o, ok := c.orders[orderID]
	if !ok {
		return nil, nil
	}
	return o, nil
}

func (c *fakeOrderCache) Set(ctx context.Context, o *order.Order) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.orders[o.OrderID] = o
	return nil
}

func (c *fakeOrderCache) Delete(ctx context.Context, orderID string) error {
	delete(c.orders, orderID)
	return nil
}

// recordingPublisher 记录订单事件
type recordingPublisher struct {
	orders     []messaging.OrderCreatedMessage
	publishErr error
}

func (p *recordingPublisher) PublishBookCreated(ctx context.Context, b *book.Book) error { return nil }
func (p *recordingPublisher) PublishBookUpdated(ctx context.Context, b *book.Book) error { return nil }
func (p *recordingPublisher) PublishBookDeleted(ctx context.Context, isbn string) error  { return nil }
func (p *recordingPublisher) Close() error                                               { return nil }

func (p *recordingPublisher) PublishOrderCreated(ctx context.Context, msg messaging.OrderCreatedMessage) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.orders = append(p.orders, msg)
	return nil
}

func stockedBook(t *testing.T, stock int) *book.Book {
	t.Helper()
	b := book.NewBook("9780134190440", "The Go Programming Language", []string{"Alan Donovan"})
	require.NoError(t, b.AddListing(book.NewListing("seller-1", 5990, stock, "new")))
	book.Reconcile(b)
	return b
}

func TestCreateOrder_Success(t *testing.T) {
	b := stockedBook(t, 5)
	repo, cache, pub := newFakeOrderRepo(), newFakeOrderCache(), &recordingPublisher{}
	uc := NewCreateOrderUseCase(&fakeBookReader{book: b}, repo, cache, pub, zap.NewNop())

	o, err := uc.Execute(context.Background(), CreateOrderRequest{
		ISBN:           b.ISBN,
		ListingID:      b.Listings[0].ID,
		PurchaseAmount: 2,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, o.OrderID)
	assert.Equal(t, int64(5990*2), o.TotalPrice)
	require.Len(t, o.Book.Listings, 1, "快照只含被购买的挂单")
	assert.Equal(t, 3, o.Book.Listings[0].Stock, "快照库存是购买后的剩余值")

	// 三步都已生效
	assert.Contains(t, repo.orders, o.OrderID)
	assert.Contains(t, cache.orders, o.OrderID)
	require.Len(t, pub.orders, 1)
	assert.Equal(t, o.OrderID, pub.orders[0].OrderID)
	assert.Equal(t, 3, pub.orders[0].Listing.Stock)
}

func TestCreateOrder_ValidationErrors(t *testing.T) {
	b := stockedBook(t, 5)
	uc := NewCreateOrderUseCase(&fakeBookReader{book: b}, newFakeOrderRepo(), newFakeOrderCache(), &recordingPublisher{}, zap.NewNop())
	ctx := context.Background()

	_, err := uc.Execute(ctx, CreateOrderRequest{ISBN: b.ISBN, ListingID: b.Listings[0].ID, PurchaseAmount: 0})
	assert.ErrorIs(t, err, order.ErrInvalidPurchaseAmount)

	_, err = uc.Execute(ctx, CreateOrderRequest{ISBN: b.ISBN, ListingID: "no-such-listing", PurchaseAmount: 1})
	assert.ErrorIs(t, err, book.ErrListingNotFound)

	_, err = uc.Execute(ctx, CreateOrderRequest{ISBN: b.ISBN, ListingID: b.Listings[0].ID, PurchaseAmount: 6})
	assert.ErrorIs(t, err, order.ErrInsufficientStock)
}

func TestCreateOrder_BookNotFound(t *testing.T) {
	uc := NewCreateOrderUseCase(&fakeBookReader{err: book.ErrBookNotFound}, newFakeOrderRepo(), newFakeOrderCache(), &recordingPublisher{}, zap.NewNop())

	_, err := uc.Execute(context.Background(), CreateOrderRequest{ISBN: "x", ListingID: "l", PurchaseAmount: 1})
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestCreateOrder_PublishFailureCompensates(t *testing.T) {
	b := stockedBook(t, 5)
	repo, cache := newFakeOrderRepo(), newFakeOrderCache()
	pub := &recordingPublisher{publishErr: assert.AnError}
	uc := NewCreateOrderUseCase(&fakeBookReader{book: b}, repo, cache, pub, zap.NewNop())

	_, err := uc.Execute(context.Background(), CreateOrderRequest{
		ISBN:           b.ISBN,
		ListingID:      b.Listings[0].ID,
		PurchaseAmount: 1,
	})
	require.Error(t, err)

	// 发布失败后订单记录和缓存都被补偿清除
	assert.Empty(t, repo.orders)
	assert.Empty(t, cache.orders)
}

func TestCreateOrder_CacheFailureCompensatesRepo(t *testing.T) {
	b := stockedBook(t, 5)
	repo := newFakeOrderRepo()
	cache := newFakeOrderCache()
	cache.setErr = assert.AnError
	pub := &recordingPublisher{}
	uc := NewCreateOrderUseCase(&fakeBookReader{book: b}, repo, cache, pub, zap.NewNop())

	_, err := uc.Execute(context.Background(), CreateOrderRequest{
		ISBN:           b.ISBN,
		ListingID:      b.Listings[0].ID,
		PurchaseAmount: 1,
	})
	require.Error(t, err)

	assert.Empty(t, repo.orders, "缓存写失败后订单记录被补偿删除")
	assert.Empty(t, pub.orders, "事件不应发布")
}

func TestGetOrder_CacheAside(t *testing.T) {
	b := stockedBook(t, 5)
	repo, cache := newFakeOrderRepo(), newFakeOrderCache()
	o := order.NewOrder(*b, b.Listings[0], 1)
	repo.orders[o.OrderID] = o

	uc := NewGetOrderUseCase(repo, cache, zap.NewNop())

	got, err := uc.Execute(context.Background(), o.OrderID)
	require.NoError(t, err)
	assert.Equal(t, o.OrderID, got.OrderID)
	assert.Contains(t, cache.orders, o.OrderID, "回源后缓存已回填")

	_, err = uc.Execute(context.Background(), "no-such-order")
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestGetOrderBatch_SkipsMissing(t *testing.T) {
	b := stockedBook(t, 5)
	repo, cache := newFakeOrderRepo(), newFakeOrderCache()
	o := order.NewOrder(*b, b.Listings[0], 1)
	repo.orders[o.OrderID] = o

	uc := NewGetOrderUseCase(repo, cache, zap.NewNop())
	orders, err := uc.ExecuteBatch(context.Background(), []string{"missing", o.OrderID})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, o.OrderID, orders[0].OrderID)
}

func TestDeleteOrder(t *testing.T) {
	b := stockedBook(t, 5)
	repo, cache := newFakeOrderRepo(), newFakeOrderCache()
	o := order.NewOrder(*b, b.Listings[0], 1)
	repo.orders[o.OrderID] = o
	cache.orders[o.OrderID] = o

	uc := NewDeleteOrderUseCase(repo, cache, zap.NewNop())
	require.NoError(t, uc.Execute(context.Background(), o.OrderID))
	assert.Empty(t, repo.orders)
	assert.Empty(t, cache.orders)

	assert.ErrorIs(t, uc.Execute(context.Background(), o.OrderID), order.ErrOrderNotFound)
}
