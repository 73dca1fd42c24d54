package messaging

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookmarket/internal/domain/book"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
	"github.com/xiebiao/bookmarket/pkg/metrics"
	"github.com/xiebiao/bookmarket/pkg/mq"
)

// Publisher 事件发布接口
// 应用层依赖本接口而非具体broker实现,测试时可注入Noop或fake
type Publisher interface {
	// PublishBookCreated 图书创建事件(直达搜索队列 + 广播book-created主题)
	PublishBookCreated(ctx context.Context, b *book.Book) error

	// PublishBookUpdated 图书更新事件
	PublishBookUpdated(ctx context.Context, b *book.Book) error

	// PublishBookDeleted 图书删除事件,只携带ISBN
	PublishBookDeleted(ctx context.Context, isbn string) error

	// PublishOrderCreated 订单创建事件,投递到仓库扣减队列
	PublishOrderCreated(ctx context.Context, msg OrderCreatedMessage) error

	// Close 释放底层连接
	Close() error
}

// AMQPPublisher 基于RabbitMQ的事件发布实现
// 图书变更同时走两条路:
// 1. 点对点直达搜索服务的同步队列(保证索引同步不依赖绑定配置)
// 2. topic广播到events Exchange(books.modify等订阅方按主题接收)
type AMQPPublisher struct {
	pub    *mq.Publisher
	logger *zap.Logger
}

// NewAMQPPublisher 创建事件发布器
func NewAMQPPublisher(url string, logger *zap.Logger) (*AMQPPublisher, error) {
	pub, err := mq.NewPublisher(url, Exchange)
	if err != nil {
		return nil, apperrors.Wrap(err, "初始化消息发布器失败")
	}
	return &AMQPPublisher{pub: pub, logger: logger}, nil
}

func (p *AMQPPublisher) publishBook(ctx context.Context, topic, queue string, dto BookDTO) error {
	if err := p.pub.PublishQueue(ctx, queue, dto); err != nil {
		return apperrors.Wrap(err, "发布图书事件失败")
	}
	if err := p.pub.PublishTopic(ctx, topic, dto); err != nil {
		return apperrors.Wrap(err, "广播图书事件失败")
	}

	metrics.MessagesPublishedTotal.WithLabelValues(topic).Inc()
	p.logger.Debug("图书事件已发布",
		zap.String("topic", topic),
		zap.String("isbn", dto.ISBN))
	return nil
}

// PublishBookCreated 实现Publisher接口
func (p *AMQPPublisher) PublishBookCreated(ctx context.Context, b *book.Book) error {
	return p.publishBook(ctx, TopicBookCreated, QueueSearchBookCreate, NewBookDTO(b))
}

// PublishBookUpdated 实现Publisher接口
func (p *AMQPPublisher) PublishBookUpdated(ctx context.Context, b *book.Book) error {
	return p.publishBook(ctx, TopicBookUpdated, QueueSearchBookUpdate, NewBookDTO(b))
}

// PublishBookDeleted 实现Publisher接口
// 删除事件只有ISBN有意义,其余字段为零值
func (p *AMQPPublisher) PublishBookDeleted(ctx context.Context, isbn string) error {
	return p.publishBook(ctx, TopicBookDeleted, QueueSearchBookDelete, BookDTO{ISBN: isbn})
}

// PublishOrderCreated 实现Publisher接口
func (p *AMQPPublisher) PublishOrderCreated(ctx context.Context, msg OrderCreatedMessage) error {
	if err := p.pub.PublishQueue(ctx, QueueWarehouseOrderCreate, msg); err != nil {
		return apperrors.Wrap(err, "发布订单事件失败")
	}
	if err := p.pub.PublishTopic(ctx, TopicOrderCreated, msg); err != nil {
		return apperrors.Wrap(err, "广播订单事件失败")
	}

	metrics.MessagesPublishedTotal.WithLabelValues(TopicOrderCreated).Inc()
	p.logger.Debug("订单事件已发布",
		zap.String("orderId", msg.OrderID),
		zap.String("isbn", msg.ISBN))
	return nil
}

// Close 实现Publisher接口
func (p *AMQPPublisher) Close() error {
	return p.pub.Close()
}
