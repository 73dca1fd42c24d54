package warehouse

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookmarket/internal/domain/book"
	"github.com/xiebiao/bookmarket/internal/messaging"
)

// CreateBookUseCase 图书创建用例
// 设计说明:
// 1. 应用层负责用例编排:校验 → 对账 → 持久化 → 缓存 → 发布事件
// 2. 缓存写失败和事件发布失败不回滚已落库的数据,只记日志
//    (搜索索引依赖事件,最终一致由补发/重建兜底)
type CreateBookUseCase struct {
	repo      book.Repository
	cache     BookCache
	publisher messaging.Publisher
	logger    *zap.Logger
}

// NewCreateBookUseCase 创建用例
func NewCreateBookUseCase(repo book.Repository, cache BookCache, publisher messaging.Publisher, logger *zap.Logger) *CreateBookUseCase {
	return &CreateBookUseCase{repo: repo, cache: cache, publisher: publisher, logger: logger}
}

// ListingRequest 创建/追加挂单的请求DTO
type ListingRequest struct {
	SellerID  string
	Price     int64 // 单位:分
	Stock     int
	Condition string
}

// CreateBookRequest 创建图书请求DTO
type CreateBookRequest struct {
	ISBN          string
	Title         string
	Authors       []string
	Description   string
	Categories    []string
	PublishedDate string
	Tags          []string
	Listings      []ListingRequest
}

// Execute 执行创建用例
func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (*book.Book, error) {
	if req.ISBN == "" {
		return nil, book.ErrInvalidISBN
	}

	b := book.NewBook(req.ISBN, req.Title, req.Authors)
	b.Description = req.Description
	b.PublishedDate = req.PublishedDate
	if req.Categories != nil {
		b.Categories = req.Categories
	}
	if req.Tags != nil {
		b.Tags = req.Tags
	}

	for _, l := range req.Listings {
		if err := b.AddListing(book.NewListing(l.SellerID, l.Price, l.Stock, l.Condition)); err != nil {
			return nil, err
		}
	}
	book.Reconcile(b)

	if err := uc.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	if err := uc.cache.Set(ctx, b); err != nil {
		uc.logger.Warn("图书缓存写入失败", zap.String("isbn", b.ISBN), zap.Error(err))
	}
	if err := uc.publisher.PublishBookCreated(ctx, b); err != nil {
		uc.logger.Error("图书创建事件发布失败", zap.String("isbn", b.ISBN), zap.Error(err))
	}

	return b, nil
}
