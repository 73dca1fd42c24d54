package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookmarket/internal/application/order"
	"github.com/xiebiao/bookmarket/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
	"github.com/xiebiao/bookmarket/pkg/response"
)

// OrderHandler 订单HTTP处理器(订单服务)
type OrderHandler struct {
	createOrder *apporder.CreateOrderUseCase
	getOrder    *apporder.GetOrderUseCase
	deleteOrder *apporder.DeleteOrderUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	createOrder *apporder.CreateOrderUseCase,
	getOrder *apporder.GetOrderUseCase,
	deleteOrder *apporder.DeleteOrderUseCase,
) *OrderHandler {
	return &OrderHandler{
		createOrder: createOrder,
		getOrder:    getOrder,
		deleteOrder: deleteOrder,
	}
}

// CreateOrder 下单
// @Summary      创建订单
// @Description  创建订单并发布order-created事件,库存扣减由仓库服务异步回放
// @Tags         订单
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateOrderRequest true "下单信息"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      200 {object} response.Response "图书/挂单不存在/库存不足"
// @Router       /api/v1/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	o, err := h.createOrder.Execute(c.Request.Context(), apporder.CreateOrderRequest{
		ISBN:           req.ISBN,
		ListingID:      req.ListingID,
		PurchaseAmount: req.PurchaseAmount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToOrderResponse(o))
}

// GetOrder 查询订单
// @Summary      查询订单
// @Description  按订单ID查询(cache-aside读路径)
// @Tags         订单
// @Produce      json
// @Param        id path string true "订单ID"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      200 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	o, err := h.getOrder.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToOrderResponse(o))
}

// BatchGetOrders 批量查询订单
// @Summary      批量查询订单
// @Description  按订单ID列表批量查询,不存在的订单静默跳过
// @Tags         订单
// @Accept       json
// @Produce      json
// @Param        request body dto.BatchGetOrdersRequest true "订单ID列表"
// @Success      200 {object} response.Response{data=[]dto.OrderResponse}
// @Router       /api/v1/orders/batch [post]
func (h *OrderHandler) BatchGetOrders(c *gin.Context) {
	var req dto.BatchGetOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	orders, err := h.getOrder.ExecuteBatch(c.Request.Context(), req.OrderIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToOrderResponses(orders))
}

// DeleteOrder 删除订单
// @Summary      删除订单
// @Description  删除订单记录及其缓存
// @Tags         订单
// @Produce      json
// @Param        id path string true "订单ID"
// @Success      200 {object} response.Response
// @Failure      200 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	if err := h.deleteOrder.Execute(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
