package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	appOrder "github.com/zeus1411/aquastore/internal/application/order"
)

// PaymentHandler 支付回调HTTP处理器
type PaymentHandler struct {
	callback  *appOrder.PaymentCallbackUseCase
	resultURL string // 前端结果页
}

// NewPaymentHandler 创建支付处理器
func NewPaymentHandler(callback *appOrder.PaymentCallbackUseCase, resultURL string) *PaymentHandler {
	return &PaymentHandler{callback: callback, resultURL: resultURL}
}

// VNPayReturn VNPay支付结果回调
// 浏览器从网关跳回来的入口，响应必须是302跳转到前端结果页，
// 绝不能返回JSON（用户端是浏览器地址栏，不是API客户端）。
// @Summary VNPay支付结果回调
// @Tags 支付
// @Param vnp_TxnRef query string true "交易引用"
// @Param vnp_ResponseCode query string true "网关响应码"
// @Param vnp_SecureHash query string true "签名"
// @Success 302
// @Router /api/v1/payments/vnpay/return [get]
func (h *PaymentHandler) VNPayReturn(c *gin.Context) {
	result, err := h.callback.Execute(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		// 基础设施故障：跳到结果页报系统错误，网关稍后会重试回调
		c.Redirect(http.StatusFound, h.redirectURL("error", "", ""))
		return
	}

	var orderNo string
	if result.Order != nil {
		orderNo = result.Order.OrderNo
	}
	c.Redirect(http.StatusFound, h.redirectURL(string(result.Outcome), orderNo, result.ResponseCode))
}

// redirectURL 构造前端结果页地址，结果参数放query
func (h *PaymentHandler) redirectURL(status, orderNo, responseCode string) string {
	q := url.Values{}
	q.Set("status", status)
	if orderNo != "" {
		q.Set("orderNo", orderNo)
	}
	if responseCode != "" {
		q.Set("code", responseCode)
	}
	return fmt.Sprintf("%s?%s", h.resultURL, q.Encode())
}
