package cart

import (
	"context"
)

// Repository 购物车仓储接口
type Repository interface {
	// FindByUserID 查找用户购物车，不存在时返回空购物车（不是错误）
	FindByUserID(ctx context.Context, userID uint) (*Cart, error)

	// Clear 清空用户购物车（幂等）
	// 只在订单成功提交后调用。
	Clear(ctx context.Context, userID uint) error
}
