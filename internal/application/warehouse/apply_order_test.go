package warehouse

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookmarket/internal/domain/book"
	"github.com/xiebiao/bookmarket/internal/messaging"
)

func seedBook(t *testing.T, repo *fakeBookRepo, stocks ...int) *book.Book {
	t.Helper()
	b := book.NewBook("9780134190440", "The Go Programming Language", []string{"Alan Donovan"})
	for _, stock := range stocks {
		require.NoError(t, b.AddListing(book.NewListing("seller-1", 5990, stock, "new")))
	}
	book.Reconcile(b)
	require.NoError(t, repo.Create(context.Background(), b))
	return b
}

func orderBody(t *testing.T, isbn, listingID string, stock int) []byte {
	t.Helper()
	body, err := json.Marshal(messaging.OrderCreatedMessage{
		OrderID: "order-1",
		ISBN:    isbn,
		Listing: messaging.ListingMessage{ID: listingID, SellerID: "seller-1", Price: 5990, Stock: stock},
	})
	require.NoError(t, err)
	return body
}

func newApplyOrder(repo *fakeBookRepo, cache *fakeBookCache, pub *recordingPublisher) *ApplyOrderUseCase {
	return NewApplyOrderUseCase(repo, cache, pub, zap.NewNop())
}

func TestApplyOrder_OverwritesStockAndReconciles(t *testing.T) {
	repo, cache, pub := newFakeBookRepo(), newFakeBookCache(), &recordingPublisher{}
	b := seedBook(t, repo, 5, 3)
	uc := newApplyOrder(repo, cache, pub)

	// 第一个挂单被买走3本,剩余2
	err := uc.Handle(context.Background(), orderBody(t, b.ISBN, b.Listings[0].ID, 2))
	require.NoError(t, err)

	saved, err := repo.GetByISBN(context.Background(), b.ISBN)
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Listings[0].Stock)
	assert.Equal(t, 5, saved.TotalStock, "总库存应重算为2+3")

	// 缓存已刷新,更新事件已发布
	cached, _ := cache.Get(context.Background(), b.ISBN)
	require.NotNil(t, cached)
	assert.Equal(t, 5, cached.TotalStock)
	assert.Equal(t, []string{b.ISBN}, pub.updated)
}

func TestApplyOrder_ExhaustedListingIsPruned(t *testing.T) {
	repo, cache, pub := newFakeBookRepo(), newFakeBookCache(), &recordingPublisher{}
	b := seedBook(t, repo, 4, 2)
	uc := newApplyOrder(repo, cache, pub)

	// 买空第一个挂单
	err := uc.Handle(context.Background(), orderBody(t, b.ISBN, b.Listings[0].ID, 0))
	require.NoError(t, err)

	saved, _ := repo.GetByISBN(context.Background(), b.ISBN)
	require.Len(t, saved.Listings, 1, "售罄挂单应被剪除")
	assert.Equal(t, b.Listings[1].ID, saved.Listings[0].ID)
	assert.Equal(t, 2, saved.TotalStock)
}

func TestApplyOrder_NegativeStockClampedToZero(t *testing.T) {
	repo, cache, pub := newFakeBookRepo(), newFakeBookCache(), &recordingPublisher{}
	b := seedBook(t, repo, 4)
	uc := newApplyOrder(repo, cache, pub)

	err := uc.Handle(context.Background(), orderBody(t, b.ISBN, b.Listings[0].ID, -7))
	require.NoError(t, err)

	saved, _ := repo.GetByISBN(context.Background(), b.ISBN)
	assert.Empty(t, saved.Listings, "负库存按0处理后挂单被剪除")
	assert.Equal(t, 0, saved.TotalStock)
}

func TestApplyOrder_Idempotent(t *testing.T) {
	repo, cache, pub := newFakeBookRepo(), newFakeBookCache(), &recordingPublisher{}
	b := seedBook(t, repo, 5)
	uc := newApplyOrder(repo, cache, pub)

	body := orderBody(t, b.ISBN, b.Listings[0].ID, 3)
	require.NoError(t, uc.Handle(context.Background(), body))
	require.NoError(t, uc.Handle(context.Background(), body))

	saved, _ := repo.GetByISBN(context.Background(), b.ISBN)
	assert.Equal(t, 3, saved.TotalStock, "绝对值覆盖语义下重复消费结果不变")
}

func TestApplyOrder_DropsStaleMessages(t *testing.T) {
	repo, cache, pub := newFakeBookRepo(), newFakeBookCache(), &recordingPublisher{}
	b := seedBook(t, repo, 5)
	uc := newApplyOrder(repo, cache, pub)
	ctx := context.Background()

	// 图书不存在:丢弃并确认
	assert.NoError(t, uc.Handle(ctx, orderBody(t, "no-such-isbn", "l1", 1)))

	// 挂单不存在:丢弃并确认
	assert.NoError(t, uc.Handle(ctx, orderBody(t, b.ISBN, "no-such-listing", 1)))

	// 消息体损坏:丢弃并确认
	assert.NoError(t, uc.Handle(ctx, []byte("not json")))

	// 缺少定位字段:丢弃并确认
	assert.NoError(t, uc.Handle(ctx, []byte(`{"OrderId":"x"}`)))

	// 权威数据未被触碰
	saved, _ := repo.GetByISBN(ctx, b.ISBN)
	assert.Equal(t, 5, saved.TotalStock)
	assert.Empty(t, pub.updated)
}

func TestApplyOrder_TransientRepoErrorPropagates(t *testing.T) {
	repo, cache, pub := newFakeBookRepo(), newFakeBookCache(), &recordingPublisher{}
	b := seedBook(t, repo, 5)
	repo.saveErr = assert.AnError
	uc := newApplyOrder(repo, cache, pub)

	// 数据库故障要向消费层报错,由broker重试
	err := uc.Handle(context.Background(), orderBody(t, b.ISBN, b.Listings[0].ID, 3))
	assert.Error(t, err)
}

func TestApplyOrder_CaseInsensitiveFieldNames(t *testing.T) {
	repo, cache, pub := newFakeBookRepo(), newFakeBookCache(), &recordingPublisher{}
	b := seedBook(t, repo, 5)
	uc := newApplyOrder(repo, cache, pub)

	// 上游序列化器可能输出小写字段名
	body := []byte(`{"orderId":"o1","isbn":"` + b.ISBN + `","listing":{"id":"` + b.Listings[0].ID + `","stock":1}}`)
	require.NoError(t, uc.Handle(context.Background(), body))

	saved, _ := repo.GetByISBN(context.Background(), b.ISBN)
	assert.Equal(t, 1, saved.TotalStock)
}
