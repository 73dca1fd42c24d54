package warehouse

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/bookmarket/internal/domain/book"
	"github.com/xiebiao/bookmarket/internal/messaging"
)

// ApplyOrderUseCase 订单事件回放用例(warehouse.order.create队列的处理函数)
//
// 库存语义:消息里的Listing.Stock是购买后的剩余值(绝对值),
// 直接覆盖对应挂单的库存,不做增量加减——重复消费同一条消息是幂等的
//
// 消息级异常的处理原则:指向不存在数据的消息是过期事实(图书/挂单
// 已被删除),丢弃并确认,不能重新入队造成死循环
type ApplyOrderUseCase struct {
	repo      book.Repository
	cache     BookCache
	publisher messaging.Publisher
	logger    *zap.Logger
}

// NewApplyOrderUseCase 创建用例
func NewApplyOrderUseCase(repo book.Repository, cache BookCache, publisher messaging.Publisher, logger *zap.Logger) *ApplyOrderUseCase {
	return &ApplyOrderUseCase{repo: repo, cache: cache, publisher: publisher, logger: logger}
}

// Handle 消费一条订单创建消息(mq.HandlerFunc签名)
func (uc *ApplyOrderUseCase) Handle(ctx context.Context, body []byte) error {
	var msg messaging.OrderCreatedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		// 无法解析的消息重试也不会变好,丢弃
		uc.logger.Warn("订单消息解析失败,丢弃", zap.Error(err))
		return nil
	}
	if msg.ISBN == "" || msg.Listing.ID == "" {
		uc.logger.Warn("订单消息缺少定位字段,丢弃", zap.String("orderId", msg.OrderID))
		return nil
	}

	b, err := uc.repo.GetByISBN(ctx, msg.ISBN)
	if err != nil {
		if errors.Is(err, book.ErrBookNotFound) {
			uc.logger.Warn("订单指向的图书不存在,丢弃",
				zap.String("orderId", msg.OrderID),
				zap.String("isbn", msg.ISBN))
			return nil
		}
		// 数据库故障是瞬时错误,交给消费层重试
		return err
	}

	listing := b.FindListing(msg.Listing.ID)
	if listing == nil {
		uc.logger.Warn("订单指向的挂单不存在,丢弃",
			zap.String("orderId", msg.OrderID),
			zap.String("isbn", msg.ISBN),
			zap.String("listingId", msg.Listing.ID))
		return nil
	}

	// 绝对值覆盖,负数按0处理(随后被对账剪除)
	stock := msg.Listing.Stock
	if stock < 0 {
		stock = 0
	}
	listing.Stock = stock

	book.Reconcile(b)
	b.Touch()

	if err := uc.repo.Save(ctx, b); err != nil {
		return err
	}

	if err := uc.cache.Set(ctx, b); err != nil {
		uc.logger.Warn("图书缓存写入失败", zap.String("isbn", b.ISBN), zap.Error(err))
	}
	if err := uc.publisher.PublishBookUpdated(ctx, b); err != nil {
		uc.logger.Error("图书更新事件发布失败", zap.String("isbn", b.ISBN), zap.Error(err))
	}

	uc.logger.Info("订单库存已回放",
		zap.String("orderId", msg.OrderID),
		zap.String("isbn", b.ISBN),
		zap.String("listingId", msg.Listing.ID),
		zap.Int("stock", stock),
		zap.Int("totalStock", b.TotalStock))
	return nil
}
