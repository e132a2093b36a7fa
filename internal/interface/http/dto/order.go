package dto

import (
	"github.com/zeus1411/aquastore/internal/domain/order"
)

// AddressRequest 收货地址
type AddressRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Street   string `json:"street" binding:"required"`
	Ward     string `json:"ward" binding:"required"`
	District string `json:"district" binding:"required"`
	City     string `json:"city" binding:"required"`
}

// ToDomain 转换为领域地址快照
func (a *AddressRequest) ToDomain() order.ShippingAddress {
	return order.ShippingAddress{
		FullName: a.FullName,
		Phone:    a.Phone,
		Street:   a.Street,
		Ward:     a.Ward,
		District: a.District,
		City:     a.City,
	}
}

// CreateOrderRequest 下单请求
// 金额一律不收：小计/运费/优惠/总价全部服务端重算。
type CreateOrderRequest struct {
	Address        AddressRequest `json:"address" binding:"required"`
	PaymentMethod  string         `json:"paymentMethod" binding:"required,oneof=COD VNPAY"`
	PromotionCode  string         `json:"promotionCode"`
	PromotionCodes []string       `json:"promotionCodes"`
	Notes          string         `json:"notes"`
}

// CancelOrderRequest 取消订单请求
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// ListQuery 分页查询参数
type ListQuery struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=10"`
}
