package warehouse

import (
	"context"
	"encoding/json"

	"github.com/xiebiao/bookmarket/internal/domain/book"
	"github.com/xiebiao/bookmarket/internal/messaging"
)

// fakeBookRepo 内存版图书仓储,按JSON深拷贝隔离内外状态
type fakeBookRepo struct {
	books   map[string]*book.Book
	saveErr error
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: make(map[string]*book.Book)}
}

func cloneBook(b *book.Book) *book.Book {
	data, _ := json.Marshal(b)
	var out book.Book
	_ = json.Unmarshal(data, &out)
	return &out
}

func (r *fakeBookRepo) GetByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	b, ok := r.books[isbn]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return cloneBook(b), nil
}

func (r *fakeBookRepo) Create(ctx context.Context, b *book.Book) error {
	if _, dup := r.books[b.ISBN]; dup {
		return book.ErrISBNDuplicate
	}
	r.books[b.ISBN] = cloneBook(b)
	return nil
}

func (r *fakeBookRepo) Save(ctx context.Context, b *book.Book) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.books[b.ISBN] = cloneBook(b)
	return nil
}

func (r *fakeBookRepo) Delete(ctx context.Context, isbn string) error {
	if _, ok := r.books[isbn]; !ok {
		return book.ErrBookNotFound
	}
	delete(r.books, isbn)
	return nil
}

// fakeBookCache 内存版缓存
type fakeBookCache struct {
	books  map[string]*book.Book
	getErr error
	setErr error
}

func newFakeBookCache() *fakeBookCache {
	return &fakeBookCache{books: make(map[string]*book.Book)}
}

func (c *fakeBookCache) Get(ctx context.Context, isbn string) (*book.Book, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	b, ok := c.books[isbn]
	if !ok {
		return nil, nil
	}
	return cloneBook(b), nil
}

func (c *fakeBookCache) Set(ctx context.Context, b *book.Book) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.books[b.ISBN] = cloneBook(b)
	return nil
}

func (c *fakeBookCache) Delete(ctx context.Context, isbn string) error {
	delete(c.books, isbn)
	return nil
}

// recordingPublisher 记录发布过的事件
type recordingPublisher struct {
	created []string
	updated []string
	deleted []string
	orders  []messaging.OrderCreatedMessage
}

func (p *recordingPublisher) PublishBookCreated(ctx context.Context, b *book.Book) error {
	p.created = append(p.created, b.ISBN)
	return nil
}

func (p *recordingPublisher) PublishBookUpdated(ctx context.Context, b *book.Book) error {
	p.updated = append(p.updated, b.ISBN)
	return nil
}

func (p *recordingPublisher) PublishBookDeleted(ctx context.Context, isbn string) error {
	p.deleted = append(p.deleted, isbn)
	return nil
}

func (p *recordingPublisher) PublishOrderCreated(ctx context.Context, msg messaging.OrderCreatedMessage) error {
	p.orders = append(p.orders, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }
