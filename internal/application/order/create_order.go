// Package order 订单服务的应用层用例
//
// 订单创建跨三个存储(MySQL、Redis、RabbitMQ),用Saga编排:
// 持久化 → 写缓存 → 发布事件,任一步失败按逆序补偿已完成步骤。
// 库存扣减不在这里做:订单事件由仓库服务消费后回放到挂单上
package order

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookmarket/internal/domain/book"
	"github.com/xiebiao/bookmarket/internal/domain/order"
	"github.com/xiebiao/bookmarket/internal/messaging"
	"github.com/xiebiao/bookmarket/pkg/saga"
)

// BookReader 读图书聚合的入口(cache-aside读路径)
// warehouse.GetBookUseCase满足本接口
type BookReader interface {
	Execute(ctx context.Context, isbn string) (*book.Book, error)
}

// OrderCache 订单缓存接口,由persistence/redis.OrderCache实现
type OrderCache interface {
	// Get 未命中返回(nil, nil)
	Get(ctx context.Context, orderID string) (*order.Order, error)
	Set(ctx context.Context, o *order.Order) error
	Delete(ctx context.Context, orderID string) error
}

// sagaTimeout 订单创建Saga的整体超时
const sagaTimeout = 30 * time.Second

// CreateOrderUseCase 订单创建用例
type CreateOrderUseCase struct {
	books     BookReader
	orders    order.Repository
	cache     OrderCache
	publisher messaging.Publisher
	logger    *zap.Logger
}

// NewCreateOrderUseCase 创建用例
func NewCreateOrderUseCase(books BookReader, orders order.Repository, cache OrderCache, publisher messaging.Publisher, logger *zap.Logger) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		books:     books,
		orders:    orders,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateOrderRequest 下单请求DTO
type CreateOrderRequest struct {
	ISBN           string
	ListingID      string
	PurchaseAmount int
}

// Execute 执行下单用例
// 校验基于订单服务的本地视图(缓存/数据库),真正的库存扣减在仓库侧
// 消费事件时发生——这是最终一致模型,极端并发下允许超卖后由仓库对账剪除
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) (*order.Order, error) {
	if req.PurchaseAmount <= 0 {
		return nil, order.ErrInvalidPurchaseAmount
	}

	b, err := uc.books.Execute(ctx, req.ISBN)
	if err != nil {
		return nil, err
	}

	listing := b.FindListing(req.ListingID)
	if listing == nil {
		return nil, book.ErrListingNotFound
	}
	if listing.Stock < req.PurchaseAmount {
		return nil, order.ErrInsufficientStock
	}

	// 快照里的挂单库存是购买后的剩余值,仓库侧直接采用
	purchased := *listing
	purchased.Stock = listing.Stock - req.PurchaseAmount

	o := order.NewOrder(*b, purchased, req.PurchaseAmount)

	sg := saga.NewSaga(sagaTimeout, uc.logger)
	sg.AddStep("持久化订单",
		func(ctx context.Context) error {
			return uc.orders.Create(ctx, o)
		},
		func(ctx context.Context) error {
			return uc.orders.Delete(ctx, o.OrderID)
		},
	)
	sg.AddStep("写入缓存",
		func(ctx context.Context) error {
			return uc.cache.Set(ctx, o)
		},
		func(ctx context.Context) error {
			return uc.cache.Delete(ctx, o.OrderID)
		},
	)
	sg.AddStep("发布事件",
		func(ctx context.Context) error {
			return uc.publisher.PublishOrderCreated(ctx, messaging.NewOrderCreatedMessage(o.OrderID, o.Book))
		},
		nil,
	)

	if err := sg.Execute(ctx); err != nil {
		uc.logger.Error("订单创建失败,已补偿",
			zap.String("orderId", o.OrderID),
			zap.String("isbn", req.ISBN),
			zap.Error(err))
		return nil, err
	}

	uc.logger.Info("订单已创建",
		zap.String("orderId", o.OrderID),
		zap.String("isbn", req.ISBN),
		zap.Int("amount", req.PurchaseAmount),
		zap.Int64("totalPrice", o.TotalPrice))
	return o, nil
}
