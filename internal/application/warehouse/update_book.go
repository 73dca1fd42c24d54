package warehouse

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookmarket/internal/domain/book"
	"github.com/xiebiao/bookmarket/internal/messaging"
)

// UpdateBookUseCase 图书元数据更新用例
// 只更新描述性字段,挂单列表由AddListing和订单事件维护,不在这里覆盖
type UpdateBookUseCase struct {
	repo      book.Repository
	cache     BookCache
	publisher messaging.Publisher
	logger    *zap.Logger
}

// NewUpdateBookUseCase 创建用例
func NewUpdateBookUseCase(repo book.Repository, cache BookCache, publisher messaging.Publisher, logger *zap.Logger) *UpdateBookUseCase {
	return &UpdateBookUseCase{repo: repo, cache: cache, publisher: publisher, logger: logger}
}

// UpdateBookRequest 更新请求DTO,nil切片表示该字段不变
type UpdateBookRequest struct {
	ISBN          string
	Title         string
	Authors       []string
	Description   string
	Categories    []string
	PublishedDate string
	Tags          []string
}

// Execute 执行更新用例
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*book.Book, error) {
	if req.ISBN == "" {
		return nil, book.ErrInvalidISBN
	}

	b, err := uc.repo.GetByISBN(ctx, req.ISBN)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		b.Title = req.Title
	}
	if req.Authors != nil {
		b.Authors = req.Authors
	}
	if req.Description != "" {
		b.Description = req.Description
	}
	if req.Categories != nil {
		b.Categories = req.Categories
	}
	if req.PublishedDate != "" {
		b.PublishedDate = req.PublishedDate
	}
	if req.Tags != nil {
		b.Tags = req.Tags
	}

	book.Reconcile(b)
	b.Touch()

	if err := uc.repo.Save(ctx, b); err != nil {
		return nil, err
	}

	if err := uc.cache.Set(ctx, b); err != nil {
		uc.logger.Warn("图书缓存写入失败", zap.String("isbn", b.ISBN), zap.Error(err))
	}
	if err := uc.publisher.PublishBookUpdated(ctx, b); err != nil {
		uc.logger.Error("图书更新事件发布失败", zap.String("isbn", b.ISBN), zap.Error(err))
	}

	return b, nil
}
