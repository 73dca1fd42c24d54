package dto

import (
	"time"

	"github.com/xiebiao/bookmarket/internal/infrastructure/persistence/search"
	"github.com/xiebiao/bookmarket/internal/messaging"
)

// SearchBooksRequest HTTP检索请求(query string绑定)
type SearchBooksRequest struct {
	Q    string `form:"q" binding:"omitempty,max=200" example:"go"`
	From int    `form:"from" binding:"omitempty,min=0" example:"0"`
	Size int    `form:"size" binding:"omitempty,min=1,max=100" example:"20"`
}

// SearchBookItem HTTP检索结果项(索引文档的展示形态)
type SearchBookItem struct {
	ISBN              string   `json:"isbn"`
	Title             string   `json:"title"`
	Authors           []string `json:"authors"`
	Description       string   `json:"description,omitempty"`
	Categories        []string `json:"categories"`
	Tags              []string `json:"tags"`
	QuantityAvailable int      `json:"quantity_available"`
	UpdatedAt         string   `json:"updated_at"`
}

// SearchBooksResponse HTTP检索响应
type SearchBooksResponse struct {
	Total int64            `json:"total"`
	Books []SearchBookItem `json:"books"`
}

// ToSearchBookItem 索引文档 → HTTP响应项
func ToSearchBookItem(doc messaging.BookDTO) SearchBookItem {
	return SearchBookItem{
		ISBN:              doc.ISBN,
		Title:             doc.Title,
		Authors:           doc.Authors,
		Description:       doc.Description,
		Categories:        doc.Categories,
		Tags:              doc.Tags,
		QuantityAvailable: doc.QuantityAvailable,
		UpdatedAt:         doc.UpdatedAt.Format(time.RFC3339),
	}
}

// ToSearchBooksResponse 检索结果 → HTTP响应
func ToSearchBooksResponse(result *search.SearchResult) *SearchBooksResponse {
	books := make([]SearchBookItem, 0, len(result.Books))
	for _, doc := range result.Books {
		books = append(books, ToSearchBookItem(doc))
	}
	return &SearchBooksResponse{
		Total: result.Total,
		Books: books,
	}
}
