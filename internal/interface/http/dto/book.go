package dto

import (
	"fmt"
	"time"

	"github.com/xiebiao/bookmarket/internal/domain/book"
)

// CreateBookRequest HTTP创建图书请求
type CreateBookRequest struct {
	ISBN          string           `json:"isbn" binding:"required,max=20" example:"9787115428028"`
	Title         string           `json:"title" binding:"required,max=200" example:"Go语言实战"`
	Authors       []string         `json:"authors" binding:"required,min=1" example:"威廉·肯尼迪"`
	Description   string           `json:"description" binding:"max=5000"`
	Categories    []string         `json:"categories"`
	PublishedDate string           `json:"published_date" binding:"omitempty,max=20" example:"2017-03-01"`
	Tags          []string         `json:"tags"`
	Listings      []ListingRequest `json:"listings" binding:"omitempty,dive"`
}

// UpdateBookRequest HTTP更新图书请求(只更新元数据,不触碰挂单)
type UpdateBookRequest struct {
	Title         string   `json:"title" binding:"omitempty,max=200"`
	Authors       []string `json:"authors"`
	Description   string   `json:"description" binding:"max=5000"`
	Categories    []string `json:"categories"`
	PublishedDate string   `json:"published_date" binding:"omitempty,max=20"`
	Tags          []string `json:"tags"`
}

// ListingRequest HTTP挂单请求
type ListingRequest struct {
	SellerID  string `json:"seller_id" binding:"required,max=64" example:"seller-1001"`
	Price     int64  `json:"price" binding:"required,min=1,max=99999999" example:"5900"` // 价格(分)
	Stock     int    `json:"stock" binding:"required,min=1" example:"3"`
	Condition string `json:"condition" binding:"omitempty,max=32" example:"new"`
}

// BatchGetBooksRequest HTTP批量查询请求
type BatchGetBooksRequest struct {
	ISBNs []string `json:"isbns" binding:"required,min=1,max=100"`
}

// ListingResponse HTTP挂单响应
type ListingResponse struct {
	ID        string `json:"id"`
	SellerID  string `json:"seller_id"`
	Price     int64  `json:"price"`      // 价格(分)
	PriceYuan string `json:"price_yuan"` // 价格(元),方便前端显示
	Stock     int    `json:"stock"`
	Condition string `json:"condition"`
}

// BookResponse HTTP图书响应
type BookResponse struct {
	ISBN          string            `json:"isbn"`
	Title         string            `json:"title"`
	Authors       []string          `json:"authors"`
	Description   string            `json:"description,omitempty"`
	Categories    []string          `json:"categories"`
	PublishedDate string            `json:"published_date,omitempty"`
	Tags          []string          `json:"tags"`
	Listings      []ListingResponse `json:"listings"`
	TotalStock    int               `json:"total_stock"`
	UpdatedAt     string            `json:"updated_at"`
}

// FormatPriceYuan 分 → 元的显示格式
func FormatPriceYuan(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// ToBookResponse 领域实体 → HTTP响应
func ToBookResponse(b *book.Book) *BookResponse {
	listings := make([]ListingResponse, 0, len(b.Listings))
	for _, l := range b.Listings {
		listings = append(listings, ListingResponse{
			ID:        l.ID,
			SellerID:  l.SellerID,
			Price:     l.Price,
			PriceYuan: FormatPriceYuan(l.Price),
			Stock:     l.Stock,
			Condition: l.Condition,
		})
	}
	return &BookResponse{
		ISBN:          b.ISBN,
		Title:         b.Title,
		Authors:       b.Authors,
		Description:   b.Description,
		Categories:    b.Categories,
		PublishedDate: b.PublishedDate,
		Tags:          b.Tags,
		Listings:      listings,
		TotalStock:    b.TotalStock,
		UpdatedAt:     b.UpdatedAt.Format(time.RFC3339),
	}
}

// ToBookResponses 批量转换
func ToBookResponses(books []*book.Book) []*BookResponse {
	out := make([]*BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, ToBookResponse(b))
	}
	return out
}
