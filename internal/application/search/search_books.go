package search

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookmarket/internal/infrastructure/persistence/search"
	"github.com/xiebiao/bookmarket/internal/messaging"
	"github.com/xiebiao/bookmarket/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
	"github.com/xiebiao/bookmarket/pkg/metrics"
)

// 分页默认值与上限
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// SearchBooksUseCase 图书检索用例
// Elasticsearch查询在熔断器保护下执行:索引节点故障时快速失败,
// 不把每个搜索请求都拖到超时
type SearchBooksUseCase struct {
	index   Indexer
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewSearchBooksUseCase 创建用例
func NewSearchBooksUseCase(index Indexer, logger *zap.Logger) *SearchBooksUseCase {
	cb := circuitbreaker.NewCircuitBreaker("elasticsearch", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.BreakerState) {
		logger.Warn("熔断器状态变化",
			zap.String("breaker", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()))
		metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
	})

	return &SearchBooksUseCase{index: index, breaker: cb, logger: logger}
}

// Execute 全文检索
func (uc *SearchBooksUseCase) Execute(ctx context.Context, q string, from, size int) (*search.SearchResult, error) {
	if from < 0 {
		from = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	var result *search.SearchResult
	err := uc.breaker.Execute(func() error {
		var searchErr error
		result, searchErr = uc.index.Search(ctx, q, from, size)
		return searchErr
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrOpenState) {
			return nil, apperrors.ErrSearchError
		}
		return nil, err
	}
	return result, nil
}

// ExecuteGet 按ISBN点查索引文档,不存在返回ErrBookNotFound
func (uc *SearchBooksUseCase) ExecuteGet(ctx context.Context, isbn string) (*messaging.BookDTO, error) {
	var doc *messaging.BookDTO
	err := uc.breaker.Execute(func() error {
		var getErr error
		doc, getErr = uc.index.Get(ctx, isbn)
		return getErr
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrOpenState) {
			return nil, apperrors.ErrSearchError
		}
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.ErrBookNotFound
	}
	return doc, nil
}
