// Package warehouse 仓库服务的应用层用例
//
// 仓库服务持有图书聚合的权威数据:
// 1. HTTP侧提供图书/挂单的增删改查(写操作全部触发事件发布)
// 2. 消息侧消费订单创建事件,回放挂单库存并对账
// 读路径走cache-aside:先查Redis,未命中回源MySQL并回填
package warehouse

import (
	"context"

	"github.com/xiebiao/bookmarket/internal/domain/book"
)

// BookCache 图书缓存接口(应用层视角)
// 由infrastructure/persistence/redis.BookCache实现,测试时注入fake
type BookCache interface {
	// Get 未命中返回(nil, nil)
	Get(ctx context.Context, isbn string) (*book.Book, error)
	Set(ctx context.Context, b *book.Book) error
	Delete(ctx context.Context, isbn string) error
}
