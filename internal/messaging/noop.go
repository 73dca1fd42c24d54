package messaging

import (
	"context"

	"github.com/xiebiao/bookmarket/internal/domain/book"
)

// NoopPublisher 空实现,本地开发不起broker时使用,也是测试的默认替身
type NoopPublisher struct{}

// NewNoopPublisher 创建空发布器
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (*NoopPublisher) PublishBookCreated(ctx context.Context, b *book.Book) error { return nil }

func (*NoopPublisher) PublishBookUpdated(ctx context.Context, b *book.Book) error { return nil }

func (*NoopPublisher) PublishBookDeleted(ctx context.Context, isbn string) error { return nil }

func (*NoopPublisher) PublishOrderCreated(ctx context.Context, msg OrderCreatedMessage) error {
	return nil
}

func (*NoopPublisher) Close() error { return nil }
