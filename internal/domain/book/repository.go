package book

import "context"

// Repository 图书聚合仓储接口
// 设计说明:
// 1. 接口定义在领域层,实现在infrastructure层(依赖倒置)
// 2. 聚合整体读写(get/put/delete),没有按挂单的细粒度操作
// 3. Save是upsert语义:不存在则创建,存在则整体覆盖payload
type Repository interface {
	// GetByISBN 按ISBN查询聚合,不存在返回ErrBookNotFound
	GetByISBN(ctx context.Context, isbn string) (*Book, error)

	// Create 创建聚合,ISBN冲突返回ErrISBNDuplicate
	Create(ctx context.Context, b *Book) error

	// Save 整体保存聚合(upsert)
	Save(ctx context.Context, b *Book) error

	// Delete 按ISBN删除聚合,不存在返回ErrBookNotFound
	Delete(ctx context.Context, isbn string) error
}
