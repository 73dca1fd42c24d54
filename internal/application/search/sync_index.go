// Package search 搜索服务的应用层:索引同步(消息侧)和检索(HTTP侧)
package search

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/xiebiao/bookmarket/internal/infrastructure/persistence/search"
	"github.com/xiebiao/bookmarket/internal/messaging"
)

// Indexer 索引写入接口,由persistence/search.BookIndex实现
type Indexer interface {
	Upsert(ctx context.Context, doc messaging.BookDTO) error
	Delete(ctx context.Context, isbn string) error
	Get(ctx context.Context, isbn string) (*messaging.BookDTO, error)
	Search(ctx context.Context, q string, from, size int) (*search.SearchResult, error)
}

// IndexSyncer 图书事件 → 索引的同步器
// 点对点同步队列(search.book.*)的处理函数返回的错误会让消息重新入队;
// books.modify广播队列走自愈消费者,错误会把消息送进死信队列。
// 两条路径共用同样的校验:缺少ISBN的消息是永久坏消息,必须报错而不是静默吞掉
type IndexSyncer struct {
	index  Indexer
	logger *zap.Logger
}

// NewIndexSyncer 创建同步器
func NewIndexSyncer(index Indexer, logger *zap.Logger) *IndexSyncer {
	return &IndexSyncer{index: index, logger: logger}
}

func (s *IndexSyncer) decode(body []byte) (messaging.BookDTO, error) {
	var dto messaging.BookDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return dto, fmt.Errorf("图书事件解析失败: %w", err)
	}
	if dto.ISBN == "" {
		return dto, fmt.Errorf("图书事件缺少ISBN")
	}
	return dto, nil
}

// HandleBookCreated 消费图书创建事件(mq.HandlerFunc签名)
func (s *IndexSyncer) HandleBookCreated(ctx context.Context, body []byte) error {
	dto, err := s.decode(body)
	if err != nil {
		return err
	}
	if err := s.index.Upsert(ctx, dto); err != nil {
		return err
	}
	s.logger.Info("索引文档已创建", zap.String("isbn", dto.ISBN))
	return nil
}

// HandleBookUpdated 消费图书更新事件
func (s *IndexSyncer) HandleBookUpdated(ctx context.Context, body []byte) error {
	dto, err := s.decode(body)
	if err != nil {
		return err
	}
	if err := s.index.Upsert(ctx, dto); err != nil {
		return err
	}
	s.logger.Info("索引文档已更新", zap.String("isbn", dto.ISBN))
	return nil
}

// HandleBookDeleted 消费图书删除事件,载荷只有ISBN有意义
func (s *IndexSyncer) HandleBookDeleted(ctx context.Context, body []byte) error {
	dto, err := s.decode(body)
	if err != nil {
		return err
	}
	if err := s.index.Delete(ctx, dto.ISBN); err != nil {
		return err
	}
	s.logger.Info("索引文档已删除", zap.String("isbn", dto.ISBN))
	return nil
}

// HandleBookModified books.modify广播队列的处理函数(订阅book-*全部主题)
// 广播路径上拿不到routing key,按载荷形态区分:
// 删除事件只携带ISBN(其余字段零值),其他一律按upsert处理
func (s *IndexSyncer) HandleBookModified(ctx context.Context, body []byte) error {
	dto, err := s.decode(body)
	if err != nil {
		return err
	}

	if isDeletionPayload(dto) {
		return s.index.Delete(ctx, dto.ISBN)
	}
	return s.index.Upsert(ctx, dto)
}

// isDeletionPayload 判断是否为删除事件的裸ISBN载荷
func isDeletionPayload(dto messaging.BookDTO) bool {
	return dto.Title == "" &&
		len(dto.Authors) == 0 &&
		len(dto.Categories) == 0 &&
		dto.QuantityAvailable == 0
}
