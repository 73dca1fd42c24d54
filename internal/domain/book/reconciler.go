package book

// Reconcile 库存对账(纯领域变换)
// 规则:
// 1. 剔除所有Stock<=0的挂单(售罄挂单不允许被持久化)
// 2. 重算TotalStock = 剩余挂单库存之和
// 幂等:Reconcile(Reconcile(b))与Reconcile(b)结果相同
// 调用时机:任何挂单变更(新增挂单、订单扣减、显式改库存)之后、持久化之前
func Reconcile(b *Book) *Book {
	if b == nil {
		return nil
	}

	kept := b.Listings[:0]
	for _, l := range b.Listings {
		if l.Stock > 0 {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		// 保持空切片而非nil,序列化为[]而不是null
		kept = []Listing{}
	}
	b.Listings = kept

	total := 0
	for _, l := range b.Listings {
		total += l.Stock
	}
	b.TotalStock = total

	return b
}
