package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/zeus1411/aquastore/internal/domain/cart"
	apperrors "github.com/zeus1411/aquastore/pkg/errors"
)

// cartRepository 购物车仓储实现(MySQL)
// 购物车行整体存JSON：读写总是整车操作，无需行级索引。
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepository{db: db}
}

// FindByUserID 查找用户购物车，不存在返回空购物车（不是错误）
func (r *cartRepository) FindByUserID(ctx context.Context, userID uint) (*cart.Cart, error) {
	var model CartModel
	err := getDB(ctx, r.db).Where("user_id = ?", userID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &cart.Cart{UserID: userID}, nil
		}
		return nil, apperrors.Wrap(err, "查询购物车失败")
	}

	var items []cart.Item
	if err := fromJSON(model.Items, &items); err != nil {
		return nil, apperrors.Wrap(err, "解析购物车数据失败")
	}

	return &cart.Cart{
		ID:        model.ID,
		UserID:    model.UserID,
		Items:     items,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

// Clear 清空用户购物车（幂等，购物车不存在时也成功）
func (r *cartRepository) Clear(ctx context.Context, userID uint) error {
	err := getDB(ctx, r.db).Model(&CartModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"items":      []byte("[]"),
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return apperrors.Wrap(err, "清空购物车失败")
	}
	return nil
}
