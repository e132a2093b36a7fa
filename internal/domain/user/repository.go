package user

import (
	"context"
)

// Repository 用户仓储接口
type Repository interface {
	// FindByID 根据ID查找用户
	FindByID(ctx context.Context, id uint) (*User, error)

	// ListAdmins 查询所有管理员（新订单通知广播用）
	ListAdmins(ctx context.Context) ([]*User, error)
}
