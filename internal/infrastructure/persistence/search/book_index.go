package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/xiebiao/bookmarket/internal/messaging"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

// BookIndex 图书索引的读写入口
// 文档ID使用ISBN:索引操作天然幂等,同一事件重复消费只是重复覆盖
type BookIndex struct {
	client *elasticsearch.Client
	index  string
}

// NewBookIndex 创建图书索引访问器
func NewBookIndex(client *elasticsearch.Client, index string) *BookIndex {
	return &BookIndex{client: client, index: index}
}

// Upsert 写入或覆盖文档
func (s *BookIndex) Upsert(ctx context.Context, doc messaging.BookDTO) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return apperrors.Wrap(err, "序列化索引文档失败")
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: doc.ISBN,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return apperrors.Wrap(err, "写入索引失败")
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.Wrap(fmt.Errorf("elasticsearch: %s", res.String()), "写入索引失败")
	}
	return nil
}

// Delete 删除文档,文档不存在视为成功(删除是幂等的)
func (s *BookIndex) Delete(ctx context.Context, isbn string) error {
	req := esapi.DeleteRequest{
		Index:      s.index,
		DocumentID: isbn,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return apperrors.Wrap(err, "删除索引文档失败")
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return apperrors.Wrap(fmt.Errorf("elasticsearch: %s", res.String()), "删除索引文档失败")
	}
	return nil
}

// Get 按ISBN点查文档,不存在返回(nil, nil)
func (s *BookIndex) Get(ctx context.Context, isbn string) (*messaging.BookDTO, error) {
	req := esapi.GetRequest{
		Index:      s.index,
		DocumentID: isbn,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, apperrors.Wrap(err, "查询索引文档失败")
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, nil
	}
	if res.IsError() {
		return nil, apperrors.Wrap(fmt.Errorf("elasticsearch: %s", res.String()), "查询索引文档失败")
	}

	var envelope struct {
		Source messaging.BookDTO `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, apperrors.Wrap(err, "解析索引文档失败")
	}
	return &envelope.Source, nil
}

// SearchResult 检索结果
type SearchResult struct {
	Total int64
	Books []messaging.BookDTO
}

// Search 全文检索
func (s *BookIndex) Search(ctx context.Context, q string, from, size int) (*SearchResult, error) {
	body, err := json.Marshal(buildSearchQuery(q, from, size))
	if err != nil {
		return nil, apperrors.Wrap(err, "序列化检索请求失败")
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "检索失败")
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, apperrors.Wrap(fmt.Errorf("elasticsearch: %s", string(raw)), "检索失败")
	}

	var envelope struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source messaging.BookDTO `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, apperrors.Wrap(err, "解析检索结果失败")
	}

	result := &SearchResult{
		Total: envelope.Hits.Total.Value,
		Books: make([]messaging.BookDTO, 0, len(envelope.Hits.Hits)),
	}
	for _, hit := range envelope.Hits.Hits {
		result.Books = append(result.Books, hit.Source)
	}
	return result, nil
}
