package order

import apperrors "github.com/xiebiao/bookmarket/pkg/errors"

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.ErrOrderNotFound

	// ErrInvalidPurchaseAmount 购买数量必须>0
	ErrInvalidPurchaseAmount = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")

	// ErrInsufficientStock 购买数量超过挂单库存
	ErrInsufficientStock = apperrors.ErrInsufficientStock
)
