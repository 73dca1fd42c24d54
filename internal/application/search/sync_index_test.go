package search

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookmarket/internal/infrastructure/persistence/search"
	"github.com/xiebiao/bookmarket/internal/messaging"
)

// fakeIndexer 内存版索引
type fakeIndexer struct {
	docs      map[string]messaging.BookDTO
	searchErr error
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{docs: make(map[string]messaging.BookDTO)}
}

func (f *fakeIndexer) Upsert(ctx context.Context, doc messaging.BookDTO) error {
	f.docs[doc.ISBN] = doc
	return nil
}

func (f *fakeIndexer) Delete(ctx context.Context, isbn string) error {
	delete(f.docs, isbn)
	return nil
}

func (f *fakeIndexer) Get(ctx context.Context, isbn string) (*messaging.BookDTO, error) {
	doc, ok := f.docs[isbn]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (f *fakeIndexer) Search(ctx context.Context, q string, from, size int) (*search.SearchResult, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	result := &search.SearchResult{}
	for _, doc := range f.docs {
		result.Books = append(result.Books, doc)
	}
	result.Total = int64(len(result.Books))
	return result, nil
}

func bookEventBody(t *testing.T, dto messaging.BookDTO) []byte {
	t.Helper()
	body, err := json.Marshal(dto)
	require.NoError(t, err)
	return body
}

func sampleDTO() messaging.BookDTO {
	return messaging.BookDTO{
		ISBN:              "9780134190440",
		Title:             "The Go Programming Language",
		Authors:           []string{"Alan Donovan"},
		Categories:        []string{"programming"},
		QuantityAvailable: 5,
		UpdatedAt:         time.Now().UTC(),
	}
}

func TestIndexSyncer_CreateUpdateDelete(t *testing.T) {
	idx := newFakeIndexer()
	syncer := NewIndexSyncer(idx, zap.NewNop())
	ctx := context.Background()

	dto := sampleDTO()
	require.NoError(t, syncer.HandleBookCreated(ctx, bookEventBody(t, dto)))
	assert.Contains(t, idx.docs, dto.ISBN)

	dto.QuantityAvailable = 2
	require.NoError(t, syncer.HandleBookUpdated(ctx, bookEventBody(t, dto)))
	assert.Equal(t, 2, idx.docs[dto.ISBN].QuantityAvailable)

	require.NoError(t, syncer.HandleBookDeleted(ctx, bookEventBody(t, messaging.BookDTO{ISBN: dto.ISBN})))
	assert.NotContains(t, idx.docs, dto.ISBN)
}

func TestIndexSyncer_RejectsBadPayloads(t *testing.T) {
	syncer := NewIndexSyncer(newFakeIndexer(), zap.NewNop())
	ctx := context.Background()

	// 坏消息必须报错,让消费层决定重入队或死信
	assert.Error(t, syncer.HandleBookCreated(ctx, []byte("not json")))
	assert.Error(t, syncer.HandleBookUpdated(ctx, []byte(`{"Title":"no isbn"}`)))
	assert.Error(t, syncer.HandleBookDeleted(ctx, []byte(`{}`)))
	assert.Error(t, syncer.HandleBookModified(ctx, []byte(`{"ISBN":""}`)))
}

func TestIndexSyncer_ModifiedDistinguishesDeletion(t *testing.T) {
	idx := newFakeIndexer()
	syncer := NewIndexSyncer(idx, zap.NewNop())
	ctx := context.Background()

	dto := sampleDTO()
	require.NoError(t, syncer.HandleBookModified(ctx, bookEventBody(t, dto)))
	assert.Contains(t, idx.docs, dto.ISBN, "带内容的载荷按upsert处理")

	// 裸ISBN载荷是删除事件
	require.NoError(t, syncer.HandleBookModified(ctx, bookEventBody(t, messaging.BookDTO{ISBN: dto.ISBN})))
	assert.NotContains(t, idx.docs, dto.ISBN)
}

func TestSearchBooks_PaginationDefaults(t *testing.T) {
	idx := newFakeIndexer()
	require.NoError(t, idx.Upsert(context.Background(), sampleDTO()))
	uc := NewSearchBooksUseCase(idx, zap.NewNop())

	result, err := uc.Execute(context.Background(), "go", -5, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
}

func TestSearchBooks_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	idx := newFakeIndexer()
	idx.searchErr = errors.New("es down")
	uc := NewSearchBooksUseCase(idx, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := uc.Execute(ctx, "go", 0, 10)
		require.Error(t, err)
	}

	// 熔断后不再触碰索引,直接返回搜索服务错误
	idx.searchErr = nil
	_, err := uc.Execute(ctx, "go", 0, 10)
	assert.Error(t, err)
}

func TestSearchBooks_GetByISBN(t *testing.T) {
	idx := newFakeIndexer()
	dto := sampleDTO()
	require.NoError(t, idx.Upsert(context.Background(), dto))
	uc := NewSearchBooksUseCase(idx, zap.NewNop())

	got, err := uc.ExecuteGet(context.Background(), dto.ISBN)
	require.NoError(t, err)
	assert.Equal(t, dto.Title, got.Title)

	_, err = uc.ExecuteGet(context.Background(), "missing")
	assert.Error(t, err)
}
