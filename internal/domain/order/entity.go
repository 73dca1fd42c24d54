package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/bookmarket/internal/domain/book"
)

// Order 订单记录(订单服务的权威数据)
// 设计说明:
// 1. OrderID使用UUID字符串(跨服务传递,不暴露自增主键)
// 2. Book是下单时刻的图书快照,只含被购买的那一个挂单
// 3. 创建后不可变:仓库侧后续的库存变化不会回写订单快照
// 4. 金额字段单位为"分"
type Order struct {
	OrderID        string    `json:"OrderId"`
	Book           book.Book `json:"Book"` // 购买时的图书/挂单快照
	PurchaseAmount int       `json:"PurchaseAmount"`
	TotalPrice     int64     `json:"TotalPrice"`
	CreatedAt      time.Time `json:"CreatedAt"`
	UpdatedAt      time.Time `json:"UpdatedAt"`
}

// NewOrder 创建订单(工厂方法)
// snapshot只保留被购买的挂单,listing.Stock应已扣减为购买后的值
func NewOrder(snapshot book.Book, listing book.Listing, purchaseAmount int) *Order {
	now := time.Now().UTC()
	snapshot.Listings = []book.Listing{listing}
	return &Order{
		OrderID:        uuid.NewString(),
		Book:           snapshot,
		PurchaseAmount: purchaseAmount,
		TotalPrice:     listing.Price * int64(purchaseAmount),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
