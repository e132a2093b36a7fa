package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/zeus1411/aquastore/internal/domain/notification"
	apperrors "github.com/zeus1411/aquastore/pkg/errors"
)

// notificationRepository 通知仓储实现(MySQL)
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓储
func NewNotificationRepository(db *gorm.DB) notification.Repository {
	return &notificationRepository{db: db}
}

// Create 写入一条通知
func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	model := &NotificationModel{
		UserID:    n.UserID,
		Type:      string(n.Type),
		OrderID:   n.OrderID,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建通知失败")
	}
	n.ID = model.ID
	return nil
}

// ListByUserID 分页查询用户通知（按创建时间倒序）
func (r *notificationRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*notification.Notification, int64, error) {
	var models []NotificationModel
	var total int64

	db := getDB(ctx, r.db)
	query := db.Model(&NotificationModel{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询通知总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询通知列表失败")
	}

	result := make([]*notification.Notification, len(models))
	for i, m := range models {
		result[i] = &notification.Notification{
			ID:        m.ID,
			UserID:    m.UserID,
			Type:      notification.Type(m.Type),
			OrderID:   m.OrderID,
			Title:     m.Title,
			Message:   m.Message,
			IsRead:    m.IsRead,
			CreatedAt: m.CreatedAt,
		}
	}

	return result, total, nil
}

// MarkRead 标记已读（幂等；user_id条件防止标记他人通知）
func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uint) error {
	err := getDB(ctx, r.db).Model(&NotificationModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true).Error
	if err != nil {
		return apperrors.Wrap(err, "标记通知已读失败")
	}
	return nil
}
