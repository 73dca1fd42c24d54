// Package messaging 定义服务间的消息契约和事件发布接口
//
// 事件流转:
// 1. 订单服务下单成功 → order-created → 仓库服务扣减挂单库存
// 2. 仓库服务图书变更 → book-created/updated/deleted → 搜索服务同步索引
// 所有消息都是JSON文档,字段名沿用线上契约的PascalCase,
// 反序列化按大小写不敏感匹配(encoding/json默认行为)
package messaging

import (
	"time"

	"github.com/xiebiao/bookmarket/internal/domain/book"
)

// 事件主题(topic Exchange的routing key)
const (
	// TopicOrderCreated 订单已创建
	TopicOrderCreated = "order-created"

	// TopicBookCreated 图书已创建
	TopicBookCreated = "book-created"

	// TopicBookUpdated 图书已更新(含库存对账后的变化)
	TopicBookUpdated = "book-updated"

	// TopicBookDeleted 图书已删除
	TopicBookDeleted = "book-deleted"
)

// Exchange 事件Exchange名称(topic类型)
const Exchange = "events"

// 队列命名: <消费方>.<实体>.<动作>
const (
	// QueueWarehouseOrderCreate 仓库服务消费订单创建事件(扣减库存)
	QueueWarehouseOrderCreate = "warehouse.order.create"

	// QueueSearchBookCreate 搜索服务消费图书创建事件
	QueueSearchBookCreate = "search.book.create"

	// QueueSearchBookUpdate 搜索服务消费图书更新事件
	QueueSearchBookUpdate = "search.book.update"

	// QueueSearchBookDelete 搜索服务消费图书删除事件
	QueueSearchBookDelete = "search.book.delete"

	// QueueBooksModify 图书变更广播队列,由自愈消费者订阅book-*主题
	QueueBooksModify = "books.modify"

	// BindingBookEvents books.modify队列的绑定模式,匹配所有book-*主题
	BindingBookEvents = "book-*"
)

// ListingMessage 消息里的挂单快照
// Stock是购买后的剩余值(绝对值语义),仓库侧直接采用,不做增量运算
type ListingMessage struct {
	ID        string `json:"Id"`
	SellerID  string `json:"UserId"`
	Price     int64  `json:"Price"`
	Stock     int    `json:"Stock"`
	Condition string `json:"Condition"`
}

// OrderCreatedMessage 订单创建事件
// 只携带定位和回放库存所需的最小信息:哪本书、哪个挂单、剩余多少
type OrderCreatedMessage struct {
	OrderID string         `json:"OrderId"`
	ISBN    string         `json:"ISBN"`
	Listing ListingMessage `json:"Listing"`
}

// BookDTO 发往搜索服务的图书文档(也是索引里的文档形态)
// 只保留检索需要的字段,挂单明细不进索引
type BookDTO struct {
	ISBN              string    `json:"ISBN"`
	Title             string    `json:"Title"`
	Authors           []string  `json:"Authors"`
	Description       string    `json:"Description,omitempty"`
	Categories        []string  `json:"Categories"`
	Tags              []string  `json:"Tags"`
	QuantityAvailable int       `json:"QuantityAvailable"`
	UpdatedAt         time.Time `json:"UpdatedAt"`
}

// NewBookDTO 从图书聚合生成搜索文档
func NewBookDTO(b *book.Book) BookDTO {
	return BookDTO{
		ISBN:              b.ISBN,
		Title:             b.Title,
		Authors:           b.Authors,
		Description:       b.Description,
		Categories:        b.Categories,
		Tags:              b.Tags,
		QuantityAvailable: b.TotalStock,
		UpdatedAt:         b.UpdatedAt,
	}
}

// NewOrderCreatedMessage 从订单生成订单创建事件
// 订单快照里只有被购买的那一个挂单
func NewOrderCreatedMessage(orderID string, snapshot book.Book) OrderCreatedMessage {
	msg := OrderCreatedMessage{
		OrderID: orderID,
		ISBN:    snapshot.ISBN,
	}
	if len(snapshot.Listings) > 0 {
		l := snapshot.Listings[0]
		msg.Listing = ListingMessage{
			ID:        l.ID,
			SellerID:  l.SellerID,
			Price:     l.Price,
			Stock:     l.Stock,
			Condition: l.Condition,
		}
	}
	return msg
}
