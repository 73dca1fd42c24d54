package book

import apperrors "github.com/xiebiao/bookmarket/pkg/errors"

// 图书领域错误定义
// 设计说明:领域层只定义业务错误,基础设施错误由仓储层包装
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.ErrBookNotFound

	// ErrISBNDuplicate ISBN已存在(创建时唯一索引冲突)
	ErrISBNDuplicate = apperrors.ErrISBNDuplicate

	// ErrInvalidISBN ISBN为空或非法
	ErrInvalidISBN = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN不能为空")

	// ErrListingExhausted 挂单库存<=0,不允许上架
	ErrListingExhausted = apperrors.New(apperrors.ErrCodeListingExhausted, "挂单库存必须大于0")

	// ErrListingNotFound 挂单不存在
	ErrListingNotFound = apperrors.New(apperrors.ErrCodeListingNotFound, "挂单不存在")
)
