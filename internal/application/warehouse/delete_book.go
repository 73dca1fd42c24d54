package warehouse

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookmarket/internal/domain/book"
	"github.com/xiebiao/bookmarket/internal/messaging"
)

// DeleteBookUseCase 图书删除用例
// 删除顺序:数据库 → 缓存 → 事件,保证权威数据先消失
type DeleteBookUseCase struct {
	repo      book.Repository
	cache     BookCache
	publisher messaging.Publisher
	logger    *zap.Logger
}

// NewDeleteBookUseCase 创建用例
func NewDeleteBookUseCase(repo book.Repository, cache BookCache, publisher messaging.Publisher, logger *zap.Logger) *DeleteBookUseCase {
	return &DeleteBookUseCase{repo: repo, cache: cache, publisher: publisher, logger: logger}
}

// Execute 执行删除用例
func (uc *DeleteBookUseCase) Execute(ctx context.Context, isbn string) error {
	if isbn == "" {
		return book.ErrInvalidISBN
	}

	if err := uc.repo.Delete(ctx, isbn); err != nil {
		return err
	}

	if err := uc.cache.Delete(ctx, isbn); err != nil {
		uc.logger.Warn("图书缓存删除失败", zap.String("isbn", isbn), zap.Error(err))
	}
	if err := uc.publisher.PublishBookDeleted(ctx, isbn); err != nil {
		uc.logger.Error("图书删除事件发布失败", zap.String("isbn", isbn), zap.Error(err))
	}

	return nil
}
