package payment

import (
	"context"
)

// Repository 支付单仓储接口
type Repository interface {
	// Create 创建支付单
	Create(ctx context.Context, payment *Payment) error

	// FindByID 根据ID查找支付单
	FindByID(ctx context.Context, id uint) (*Payment, error)

	// FindByOrderID 根据订单ID查找支付单，不存在返回nil, nil
	FindByOrderID(ctx context.Context, orderID uint) (*Payment, error)

	// FindByTransactionRef 根据交易引用查找支付单
	FindByTransactionRef(ctx context.Context, ref string) (*Payment, error)

	// Update 更新支付单（状态/网关明细）
	Update(ctx context.Context, payment *Payment) error
}
