package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookmarket/internal/domain/order"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
	"github.com/xiebiao/bookmarket/pkg/metrics"
)

const orderKeyFormat = "order:%s"

// OrderCache 订单读缓存,语义与BookCache一致
type OrderCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOrderCache 创建订单缓存
func NewOrderCache(client *redis.Client, ttl time.Duration) *OrderCache {
	return &OrderCache{client: client, ttl: ttl}
}

func orderKey(orderID string) string {
	return fmt.Sprintf(orderKeyFormat, orderID)
}

// Get 读取缓存,未命中返回(nil, nil)
func (c *OrderCache) Get(ctx context.Context, orderID string) (*order.Order, error) {
	data, err := c.client.Get(ctx, orderKey(orderID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheOpsTotal.WithLabelValues("order", "miss").Inc()
			return nil, nil
		}
		metrics.CacheOpsTotal.WithLabelValues("order", "error").Inc()
		return nil, apperrors.Wrap(err, "读取订单缓存失败")
	}

	var o order.Order
	if err := json.Unmarshal(data, &o); err != nil {
		c.client.Del(ctx, orderKey(orderID))
		metrics.CacheOpsTotal.WithLabelValues("order", "miss").Inc()
		return nil, nil
	}

	metrics.CacheOpsTotal.WithLabelValues("order", "hit").Inc()
	return &o, nil
}

// Set 写入缓存(带TTL)
func (c *OrderCache) Set(ctx context.Context, o *order.Order) error {
	data, err := json.Marshal(o)
	if err != nil {
		return apperrors.Wrap(err, "序列化订单缓存失败")
	}
	if err := c.client.Set(ctx, orderKey(o.OrderID), data, c.ttl).Err(); err != nil {
		return apperrors.Wrap(err, "写入订单缓存失败")
	}
	return nil
}

// Delete 删除缓存(订单删除或补偿回滚时)
func (c *OrderCache) Delete(ctx context.Context, orderID string) error {
	if err := c.client.Del(ctx, orderKey(orderID)).Err(); err != nil {
		return apperrors.Wrap(err, "删除订单缓存失败")
	}
	return nil
}
