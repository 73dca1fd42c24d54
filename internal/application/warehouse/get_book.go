package warehouse

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/bookmarket/internal/domain/book"
)

// GetBookUseCase 图书查询用例(cache-aside)
// 读路径:缓存命中直接返回;未命中回源数据库并回填缓存
type GetBookUseCase struct {
	repo   book.Repository
	cache  BookCache
	logger *zap.Logger
}

// NewGetBookUseCase 创建用例
func NewGetBookUseCase(repo book.Repository, cache BookCache, logger *zap.Logger) *GetBookUseCase {
	return &GetBookUseCase{repo: repo, cache: cache, logger: logger}
}

// Execute 按ISBN查询单本图书
func (uc *GetBookUseCase) Execute(ctx context.Context, isbn string) (*book.Book, error) {
	if isbn == "" {
		return nil, book.ErrInvalidISBN
	}

	cached, err := uc.cache.Get(ctx, isbn)
	if err != nil {
		// 缓存故障降级为直接回源,不让读路径失败
		uc.logger.Warn("图书缓存读取失败,回源数据库", zap.String("isbn", isbn), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	b, err := uc.repo.GetByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}

	if err := uc.cache.Set(ctx, b); err != nil {
		uc.logger.Warn("图书缓存回填失败", zap.String("isbn", isbn), zap.Error(err))
	}
	return b, nil
}

// ExecuteBatch 批量查询
// 不存在的ISBN静默跳过,返回顺序与命中的请求顺序一致
func (uc *GetBookUseCase) ExecuteBatch(ctx context.Context, isbns []string) ([]*book.Book, error) {
	books := make([]*book.Book, 0, len(isbns))
	for _, isbn := range isbns {
		b, err := uc.Execute(ctx, isbn)
		if err != nil {
			if errors.Is(err, book.ErrBookNotFound) || errors.Is(err, book.ErrInvalidISBN) {
				continue
			}
			return nil, err
		}
		books = append(books, b)
	}
	return books, nil
}
