// Package search 基于Elasticsearch的图书检索层
//
// 索引里的文档是messaging.BookDTO(检索视图),文档ID即ISBN,
// 由消息消费方保证与仓库侧的权威数据最终一致
package search

import (
	"fmt"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"

	"github.com/xiebiao/bookmarket/internal/infrastructure/config"
)

// NewClient 创建Elasticsearch客户端
func NewClient(cfg *config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("创建Elasticsearch客户端失败: %w", err)
	}
	return client, nil
}
