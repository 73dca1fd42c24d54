package mysql

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookmarket/internal/domain/order"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL),与图书仓储同构:整体JSON文档读写
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// GetByID 按订单ID查询
func (r *orderRepository) GetByID(ctx context.Context, orderID string) (*order.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	var o order.Order
	if err := json.Unmarshal(model.Payload, &o); err != nil {
		return nil, apperrors.Wrap(err, "反序列化订单失败")
	}
	return &o, nil
}

// Create 创建订单记录
// upsert语义:订单ID相同重复写入是幂等的(saga重试时不报冲突)
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return apperrors.Wrap(err, "序列化订单失败")
	}

	model := &OrderModel{
		OrderID:   o.OrderID,
		Payload:   payload,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return apperrors.Wrap(err, "创建订单失败")
	}
	return nil
}

// Delete 按订单ID删除(创建流程失败时的补偿回滚也走这里)
func (r *orderRepository) Delete(ctx context.Context, orderID string) error {
	result := r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&OrderModel{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除订单失败")
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}
