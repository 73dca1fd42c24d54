package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookmarket/internal/domain/book"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
	"github.com/xiebiao/bookmarket/pkg/metrics"
)

// 缓存键格式
const bookKeyFormat = "book:%s"

// BookCache 图书读缓存(cache-aside)
// 设计说明:
// 1. 缓存未命中不是错误:Get返回(nil, nil),由调用方回源数据库
// 2. 所有键都设置TTL,缓存写失败不影响主流程(调用方自行决定是否忽略)
// 3. 值是聚合的完整JSON文档,与持久层同一份序列化形态
type BookCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBookCache 创建图书缓存
func NewBookCache(client *redis.Client, ttl time.Duration) *BookCache {
	return &BookCache{client: client, ttl: ttl}
}

func bookKey(isbn string) string {
	return fmt.Sprintf(bookKeyFormat, isbn)
}

// Get 读取缓存,未命中返回(nil, nil)
func (c *BookCache) Get(ctx context.Context, isbn string) (*book.Book, error) {
	data, err := c.client.Get(ctx, bookKey(isbn)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheOpsTotal.WithLabelValues("book", "miss").Inc()
			return nil, nil
		}
		metrics.CacheOpsTotal.WithLabelValues("book", "error").Inc()
		return nil, apperrors.Wrap(err, "读取图书缓存失败")
	}

	var b book.Book
	if err := json.Unmarshal(data, &b); err != nil {
		// 缓存内容损坏按未命中处理,删掉脏数据让调用方回源
		c.client.Del(ctx, bookKey(isbn))
		metrics.CacheOpsTotal.WithLabelValues("book", "miss").Inc()
		return nil, nil
	}

	metrics.CacheOpsTotal.WithLabelValues("book", "hit").Inc()
	return &b, nil
}

// Set 写入缓存(带TTL)
func (c *BookCache) Set(ctx context.Context, b *book.Book) error {
	data, err := json.Marshal(b)
	if err != nil {
		return apperrors.Wrap(err, "序列化图书缓存失败")
	}
	if err := c.client.Set(ctx, bookKey(b.ISBN), data, c.ttl).Err(); err != nil {
		return apperrors.Wrap(err, "写入图书缓存失败")
	}
	return nil
}

// Delete 删除缓存(图书删除或需要强制回源时)
func (c *BookCache) Delete(ctx context.Context, isbn string) error {
	if err := c.client.Del(ctx, bookKey(isbn)).Err(); err != nil {
		return apperrors.Wrap(err, "删除图书缓存失败")
	}
	return nil
}
