package order

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/bookmarket/internal/domain/order"
)

// GetOrderUseCase 订单查询用例(cache-aside)
type GetOrderUseCase struct {
	orders order.Repository
	cache  OrderCache
	logger *zap.Logger
}

// NewGetOrderUseCase 创建用例
func NewGetOrderUseCase(orders order.Repository, cache OrderCache, logger *zap.Logger) *GetOrderUseCase {
	return &GetOrderUseCase{orders: orders, cache: cache, logger: logger}
}

// Execute 按订单ID查询
func (uc *GetOrderUseCase) Execute(ctx context.Context, orderID string) (*order.Order, error) {
	cached, err := uc.cache.Get(ctx, orderID)
	if err != nil {
		uc.logger.Warn("订单缓存读取失败,回源数据库", zap.String("orderId", orderID), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	o, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := uc.cache.Set(ctx, o); err != nil {
		uc.logger.Warn("订单缓存回填失败", zap.String("orderId", orderID), zap.Error(err))
	}
	return o, nil
}

// ExecuteBatch 批量查询,不存在的订单静默跳过
func (uc *GetOrderUseCase) ExecuteBatch(ctx context.Context, orderIDs []string) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		o, err := uc.Execute(ctx, id)
		if err != nil {
			if errors.Is(err, order.ErrOrderNotFound) {
				continue
			}
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// DeleteOrderUseCase 订单删除用例
type DeleteOrderUseCase struct {
	orders order.Repository
	cache  OrderCache
	logger *zap.Logger
}

// NewDeleteOrderUseCase 创建用例
func NewDeleteOrderUseCase(orders order.Repository, cache OrderCache, logger *zap.Logger) *DeleteOrderUseCase {
	return &DeleteOrderUseCase{orders: orders, cache: cache, logger: logger}
}

// Execute 删除订单记录及其缓存
func (uc *DeleteOrderUseCase) Execute(ctx context.Context, orderID string) error {
	if err := uc.orders.Delete(ctx, orderID); err != nil {
		return err
	}
	if err := uc.cache.Delete(ctx, orderID); err != nil {
		uc.logger.Warn("订单缓存删除失败", zap.String("orderId", orderID), zap.Error(err))
	}
	return nil
}
