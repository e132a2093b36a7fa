package notification

import (
	"context"

	"github.com/zeus1411/aquastore/internal/domain/notification"
)

// UseCase 站内通知用例（列表+标记已读）
type UseCase struct {
	repo notification.Repository
}

// NewUseCase 创建通知用例
func NewUseCase(repo notification.Repository) *UseCase {
	return &UseCase{repo: repo}
}

// List 分页查询当前用户的通知（按创建时间倒序）
func (uc *UseCase) List(ctx context.Context, userID uint, page, pageSize int) ([]*notification.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return uc.repo.ListByUserID(ctx, userID, page, pageSize)
}

// MarkRead 标记通知已读（幂等，带user_id归属保护）
func (uc *UseCase) MarkRead(ctx context.Context, id, userID uint) error {
	return uc.repo.MarkRead(ctx, id, userID)
}
