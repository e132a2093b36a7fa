package payment

import (
	"time"
)

// Method 支付方式
type Method string

const (
	MethodCOD   Method = "COD"   // 货到付款
	MethodVNPay Method = "VNPAY" // VNPay网关
)

// Status 支付单状态
type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT" // 待支付
	StatusProcessing     Status = "PROCESSING"      // 处理中（COD下单即处于此状态）
	StatusCompleted      Status = "COMPLETED"       // 已完成
	StatusFailed         Status = "FAILED"          // 已失败
	StatusCancelled      Status = "CANCELLED"       // 已取消
)

// GatewayDetail 网关相关明细（JSON存储）
type GatewayDetail struct {
	TransactionNo string `json:"transactionNo,omitempty"` // 网关侧交易号
	ResponseCode  string `json:"responseCode,omitempty"`  // 网关响应码
	BankCode      string `json:"bankCode,omitempty"`
	FailReason    string `json:"failReason,omitempty"`
}

// Payment 支付单实体
// 设计说明:
// 1. TransactionRef为业务主键（网关交易引用，COD也生成一个便于对账）
// 2. 支付单完成/失败必须同步联动订单状态（同一逻辑步骤内），
//    不走事后钩子：MarkCompleted/MarkFailed只改自身，
//    订单侧的ConfirmPayment/FailPayment由用例层在同一事务里调用
type Payment struct {
	ID             uint
	TransactionRef string
	OrderID        uint
	UserID         uint
	Method         Method
	Status         Status
	Amount         int64 // 应付金额(VND)
	Detail         GatewayDetail
	ProcessedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewPayment 创建支付单（工厂方法）
// COD初始状态为PROCESSING（下单即开始履约），网关支付为PENDING_PAYMENT。
func NewPayment(transactionRef string, orderID, userID uint, method Method, amount int64) *Payment {
	now := time.Now()
	status := StatusPendingPayment
	if method == MethodCOD {
		status = StatusProcessing
	}
	return &Payment{
		TransactionRef: transactionRef,
		OrderID:        orderID,
		UserID:         userID,
		Method:         method,
		Status:         status,
		Amount:         amount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// MarkCompleted 标记支付完成
// 调用方必须在同一逻辑步骤内对关联订单执行ConfirmPayment。
func (p *Payment) MarkCompleted(detail GatewayDetail) error {
	if p.Status == StatusCompleted {
		return ErrAlreadyCompleted
	}
	now := time.Now()
	p.Status = StatusCompleted
	p.Detail = detail
	p.ProcessedAt = &now
	p.UpdatedAt = now
	return nil
}

// MarkFailed 标记支付失败
// 调用方必须在同一逻辑步骤内对仍处于PENDING的关联订单执行FailPayment。
func (p *Payment) MarkFailed(reason string) error {
	if p.Status == StatusCompleted {
		return ErrAlreadyCompleted
	}
	p.Status = StatusFailed
	p.Detail.FailReason = reason
	p.UpdatedAt = time.Now()
	return nil
}

// MarkCancelled 标记支付取消（订单取消时联动）
// 已完成的支付单不可取消（需走退款）。
func (p *Payment) MarkCancelled() error {
	if p.Status == StatusCompleted {
		return ErrAlreadyCompleted
	}
	p.Status = StatusCancelled
	p.UpdatedAt = time.Now()
	return nil
}
