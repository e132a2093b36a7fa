package notification

import (
	"context"
)

// Repository 通知仓储接口
type Repository interface {
	// Create 写入一条通知
	Create(ctx context.Context, n *Notification) error

	// ListByUserID 分页查询用户通知（按创建时间倒序）
	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Notification, int64, error)

	// MarkRead 标记已读（幂等）
	MarkRead(ctx context.Context, id, userID uint) error
}
