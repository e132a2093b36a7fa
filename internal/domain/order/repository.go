package order

import (
	"context"
)

// Repository 订单仓储接口（依赖倒置：domain定义，infrastructure实现）
// 支持事务操作（通过context传递事务句柄）。
type Repository interface {
	// Create 创建订单（明细/历史/地址作为快照一并写入）
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindByOrderNo 根据订单号查找订单
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// Update 更新订单（状态/支付标记/取消元数据/历史）
	Update(ctx context.Context, order *Order) error

	// ListByUserID 分页查询用户订单列表（按创建时间倒序）
	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Order, int64, error)
}
