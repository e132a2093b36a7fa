package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appOrder "github.com/zeus1411/aquastore/internal/application/order"
	"github.com/zeus1411/aquastore/internal/interface/http/dto"
	"github.com/zeus1411/aquastore/internal/interface/http/middleware"
	apperrors "github.com/zeus1411/aquastore/pkg/errors"
	"github.com/zeus1411/aquastore/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	create  *appOrder.CreateOrderUseCase
	cancel  *appOrder.CancelOrderUseCase
	queries *appOrder.QueryUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(create *appOrder.CreateOrderUseCase, cancel *appOrder.CancelOrderUseCase, queries *appOrder.QueryUseCase) *OrderHandler {
	return &OrderHandler{create: create, cancel: cancel, queries: queries}
}

// Create 创建订单
// @Summary 创建订单
// @Description 从购物车创建订单。COD立即创建；VNPAY返回支付跳转链接，订单在支付确认后创建
// @Tags 订单
// @Accept json
// @Produce json
// @Param request body dto.CreateOrderRequest true "下单请求"
// @Success 200 {object} response.Response{data=order.CreateOrderResponse}
// @Security BearerAuth
// @Router /api/v1/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "请求参数格式错误")
		return
	}

	resp, err := h.create.Execute(c.Request.Context(), appOrder.CreateOrderRequest{
		UserID:         middleware.CurrentUserID(c),
		Address:        req.Address.ToDomain(),
		PaymentMethod:  req.PaymentMethod,
		PromotionCode:  req.PromotionCode,
		PromotionCodes: req.PromotionCodes,
		Notes:          req.Notes,
		ClientIP:       c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// Cancel 取消订单
// @Summary 取消订单
// @Description 取消PENDING/CONFIRMED/FAILED状态的订单，回补库存
// @Tags 订单
// @Accept json
// @Produce json
// @Param id path int true "订单ID"
// @Param request body dto.CancelOrderRequest false "取消原因"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的订单ID")
		return
	}

	var req dto.CancelOrderRequest
	_ = c.ShouldBindJSON(&req) // 取消原因可空

	o, err := h.cancel.Execute(c.Request.Context(), appOrder.CancelOrderRequest{
		OrderID: uint(orderID),
		UserID:  middleware.CurrentUserID(c),
		IsAdmin: middleware.IsAdmin(c),
		Reason:  req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, o)
}

// Get 订单详情
// @Summary 订单详情
// @Tags 订单
// @Produce json
// @Param id path int true "订单ID"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的订单ID")
		return
	}

	o, err := h.queries.Get(c.Request.Context(), uint(orderID), middleware.CurrentUserID(c), middleware.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, o)
}

// List 我的订单列表
// @Summary 我的订单列表
// @Tags 订单
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=response.PageData}
// @Security BearerAuth
// @Router /api/v1/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "分页参数格式错误")
		return
	}

	orders, total, err := h.queries.List(c.Request.Context(), middleware.CurrentUserID(c), q.Page, q.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, orders, total, q.Page, q.PageSize)
}
