package dto

import (
	"time"

	"github.com/xiebiao/bookmarket/internal/domain/order"
)

// CreateOrderRequest HTTP下单请求
type CreateOrderRequest struct {
	ISBN           string `json:"isbn" binding:"required,max=20" example:"9787115428028"`
	ListingID      string `json:"listing_id" binding:"required,max=64"`
	PurchaseAmount int    `json:"purchase_amount" binding:"required,min=1" example:"1"`
}

// BatchGetOrdersRequest HTTP批量查询订单请求
type BatchGetOrdersRequest struct {
	OrderIDs []string `json:"order_ids" binding:"required,min=1,max=100"`
}

// OrderResponse HTTP订单响应
type OrderResponse struct {
	OrderID        string       `json:"order_id"`
	Book           BookResponse `json:"book"` // 下单时的图书快照(只含被购买的挂单)
	PurchaseAmount int          `json:"purchase_amount"`
	TotalPrice     int64        `json:"total_price"`      // 总金额(分)
	TotalPriceYuan string       `json:"total_price_yuan"` // 总金额(元)
	CreatedAt      string       `json:"created_at"`
}

// ToOrderResponse 领域实体 → HTTP响应
func ToOrderResponse(o *order.Order) *OrderResponse {
	return &OrderResponse{
		OrderID:        o.OrderID,
		Book:           *ToBookResponse(&o.Book),
		PurchaseAmount: o.PurchaseAmount,
		TotalPrice:     o.TotalPrice,
		TotalPriceYuan: FormatPriceYuan(o.TotalPrice),
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
	}
}

// ToOrderResponses 批量转换
func ToOrderResponses(orders []*order.Order) []*OrderResponse {
	out := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToOrderResponse(o))
	}
	return out
}
