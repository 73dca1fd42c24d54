package warehouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookmarket/internal/domain/book"
)

func TestCreateBook_PersistsCachesAndPublishes(t *testing.T) {
	repo, cache, pub := newFakeBookRepo(), newFakeBookCache(), &recordingPublisher{}
	uc := NewCreateBookUseCase(repo, cache, pub, zap.NewNop())

	b, err := uc.Execute(context.Background(), CreateBookRequest{
		ISBN:    "9780134190440",
		Title:   "The Go Programming Language",
		Authors: []string{"Alan Donovan", "Brian Kernighan"},
		Listings: []ListingRequest{
			{SellerID: "seller-1", Price: 5990, Stock: 3, Condition: "new"},
			{SellerID: "seller-2", Price: 4500, Stock: 2, Condition: "used"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, b.TotalStock)
	assert.Len(t, b.Listings, 2)
	assert.NotEmpty(t, b.Listings[0].ID)

	saved, err := repo.GetByISBN(context.Background(), b.ISBN)
	require.NoError(t, err)
	assert.Equal(t, 5, saved.TotalStock)

	cached, _ := cache.Get(context.Background(), b.ISBN)
	assert.NotNil(t, cached)
	assert.Equal(t, []string{b.ISBN}, pub.created)
}

func TestCreateBook_RejectsInvalidInput(t *testing.T) {
	uc := NewCreateBookUseCase(newFakeBookRepo(), newFakeBookCache(), &recordingPublisher{}, zap.NewNop())
	ctx := context.Background()

	_, err := uc.Execute(ctx, CreateBookRequest{Title: "no isbn"})
	assert.ErrorIs(t, err, book.ErrInvalidISBN)

	_, err = uc.Execute(ctx, CreateBookRequest{
		ISBN:     "9780134190440",
		Listings: []ListingRequest{{SellerID: "s", Price: 100, Stock: 0}},
	})
	assert.ErrorIs(t, err, book.ErrListingExhausted)
}

func TestCreateBook_DuplicateISBN(t *testing.T) {
	repo, cache, pub := newFakeBookRepo(), newFakeBookCache(), &recordingPublisher{}
	uc := NewCreateBookUseCase(repo, cache, pub, zap.NewNop())
	ctx := context.Background()

	_, err := uc.Execute(ctx, CreateBookRequest{ISBN: "9780134190440", Title: "first"})
	require.NoError(t, err)

	_, err = uc.Execute(ctx, CreateBookRequest{ISBN: "9780134190440", Title: "second"})
	assert.ErrorIs(t, err, book.ErrISBNDuplicate)
	assert.Len(t, pub.created, 1, "失败的创建不应发布事件")
}

func TestDeleteBook_EvictsCacheAndPublishes(t *testing.T) {
	repo, cache, pub := newFakeBookRepo(), newFakeBookCache(), &recordingPublisher{}
	b := seedBook(t, repo, 3)
	require.NoError(t, cache.Set(context.Background(), b))

	uc := NewDeleteBookUseCase(repo, cache, pub, zap.NewNop())
	require.NoError(t, uc.Execute(context.Background(), b.ISBN))

	_, err := repo.GetByISBN(context.Background(), b.ISBN)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
	cached, _ := cache.Get(context.Background(), b.ISBN)
	assert.Nil(t, cached)
	assert.Equal(t, []string{b.ISBN}, pub.deleted)
}

func TestUpdateBook_MergesMetadataOnly(t *testing.T) {
	repo, cache, pub := newFakeBookRepo(), newFakeBookCache(), &recordingPublisher{}
	b := seedBook(t, repo, 3)

	uc := NewUpdateBookUseCase(repo, cache, pub, zap.NewNop())
	got, err := uc.Execute(context.Background(), UpdateBookRequest{
		ISBN:  b.ISBN,
		Title: "新版书名",
		Tags:  []string{"programming"},
	})
	require.NoError(t, err)
	assert.Equal(t, "新版书名", got.Title)
	assert.Equal(t, []string{"programming"}, got.Tags)
	assert.Equal(t, b.Authors, got.Authors, "未提供的字段保持原值")
	assert.Len(t, got.Listings, 1, "更新元数据不触碰挂单")
	assert.Equal(t, []string{b.ISBN}, pub.updated)
}

func TestAddListing_ReconcilesTotals(t *testing.T) {
	repo, cache, pub := newFakeBookRepo(), newFakeBookCache(), &recordingPublisher{}
	b := seedBook(t, repo, 3)

	uc := NewAddListingUseCase(repo, cache, pub, zap.NewNop())
	got, err := uc.Execute(context.Background(), b.ISBN, ListingRequest{
		SellerID: "seller-2", Price: 4200, Stock: 4, Condition: "like-new",
	})
	require.NoError(t, err)
	assert.Len(t, got.Listings, 2)
	assert.Equal(t, 7, got.TotalStock)
	assert.Equal(t, []string{b.ISBN}, pub.updated)

	_, err = uc.Execute(context.Background(), b.ISBN, ListingRequest{SellerID: "s", Price: 1, Stock: 0})
	assert.ErrorIs(t, err, book.ErrListingExhausted)
}
