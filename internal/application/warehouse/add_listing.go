package warehouse

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookmarket/internal/domain/book"
	"github.com/xiebiao/bookmarket/internal/messaging"
)

// AddListingUseCase 挂单上架用例
type AddListingUseCase struct {
	repo      book.Repository
	cache     BookCache
	publisher messaging.Publisher
	logger    *zap.Logger
}

// NewAddListingUseCase 创建用例
func NewAddListingUseCase(repo book.Repository, cache BookCache, publisher messaging.Publisher, logger *zap.Logger) *AddListingUseCase {
	return &AddListingUseCase{repo: repo, cache: cache, publisher: publisher, logger: logger}
}

// Execute 在指定图书下追加挂单,返回更新后的聚合
func (uc *AddListingUseCase) Execute(ctx context.Context, isbn string, req ListingRequest) (*book.Book, error) {
	if isbn == "" {
		return nil, book.ErrInvalidISBN
	}

	b, err := uc.repo.GetByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}

	if err := b.AddListing(book.NewListing(req.SellerID, req.Price, req.Stock, req.Condition)); err != nil {
		return nil, err
	}
	book.Reconcile(b)
	b.Touch()

	if err := uc.repo.Save(ctx, b); err != nil {
		return nil, err
	}

	if err := uc.cache.Set(ctx, b); err != nil {
		uc.logger.Warn("图书缓存写入失败", zap.String("isbn", isbn), zap.Error(err))
	}
	if err := uc.publisher.PublishBookUpdated(ctx, b); err != nil {
		uc.logger.Error("图书更新事件发布失败", zap.String("isbn", isbn), zap.Error(err))
	}

	return b, nil
}
