package book

import (
	"time"

	"github.com/google/uuid"
)

// Book 图书聚合根(仓库服务的权威数据)
// DDD设计说明:
// 1. ISBN是业务主键,创建后不可变更
// 2. 聚合整体作为JSON文档持久化(仓储层不拆表),字段名与消息契约保持PascalCase
// 3. TotalStock是派生字段,只能由Reconcile重算,不允许外部直接赋值
// 4. 不变式: TotalStock == 所有Listing.Stock之和,且不存在Stock<=0的Listing
type Book struct {
	ISBN          string    `json:"ISBN"`
	Title         string    `json:"Title"`
	Authors       []string  `json:"Authors"`
	Description   string    `json:"Description,omitempty"`
	Categories    []string  `json:"Categories"`
	PublishedDate string    `json:"PublishedDate,omitempty"`
	Listings      []Listing `json:"Listing"` // 卖家挂单列表(字段名沿用线上契约Listing)
	TotalStock    int       `json:"TotalStock"`
	Tags          []string  `json:"Tags"`
	UpdatedAt     time.Time `json:"UpdatedAt"`
}

// Listing 卖家挂单
// 设计说明:
// 1. 只存在于Book聚合内部,没有独立生命周期
// 2. ID创建时生成一次,之后稳定不变(订单事件靠它定位挂单)
// 3. 价格使用int64存储"分"为单位(避免浮点数精度问题)
type Listing struct {
	ID        string `json:"Id"`
	SellerID  string `json:"UserId"` // 卖家用户ID(契约字段名UserId)
	Price     int64  `json:"Price"`
	Stock     int    `json:"Stock"`
	Condition string `json:"Condition"` // 品相标签(如 new / like-new / used)
}

// NewListing 创建挂单(工厂方法,生成稳定ID)
func NewListing(sellerID string, price int64, stock int, condition string) Listing {
	return Listing{
		ID:        uuid.NewString(),
		SellerID:  sellerID,
		Price:     price,
		Stock:     stock,
		Condition: condition,
	}
}

// NewBook 创建图书聚合(工厂方法)
func NewBook(isbn, title string, authors []string) *Book {
	return &Book{
		ISBN:       isbn,
		Title:      title,
		Authors:    authors,
		Categories: []string{},
		Listings:   []Listing{},
		Tags:       []string{},
		UpdatedAt:  time.Now().UTC(),
	}
}

// FindListing 按挂单ID查找,未找到返回nil
func (b *Book) FindListing(listingID string) *Listing {
	for i := range b.Listings {
		if b.Listings[i].ID == listingID {
			return &b.Listings[i]
		}
	}
	return nil
}

// AddListing 追加挂单(领域行为)
// 业务规则:库存必须>0,售罄的挂单不允许上架
func (b *Book) AddListing(l Listing) error {
	if l.Stock <= 0 {
		return ErrListingExhausted
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	b.Listings = append(b.Listings, l)
	return nil
}

// Touch 刷新聚合更新时间(持久化和发布事件前调用)
func (b *Book) Touch() {
	b.UpdatedAt = time.Now().UTC()
}
