package order

import "context"

// Repository 订单仓储接口
// 设计说明:订单作为JSON文档整体读写,OrderID为业务主键
type Repository interface {
	// GetByID 按订单ID查询,不存在返回ErrOrderNotFound
	GetByID(ctx context.Context, orderID string) (*Order, error)

	// Create 创建订单记录
	Create(ctx context.Context, o *Order) error

	// Delete 按订单ID删除(也用于创建流程的补偿回滚)
	Delete(ctx context.Context, orderID string) error
}
