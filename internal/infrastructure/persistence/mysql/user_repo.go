package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/zeus1411/aquastore/internal/domain/user"
	apperrors "github.com/zeus1411/aquastore/pkg/errors"
)

// userRepository 用户仓储实现(MySQL)
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

// FindByID 根据ID查找用户
func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	err := getDB(ctx, r.db).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

// ListAdmins 查询所有管理员（新订单通知广播用）
func (r *userRepository) ListAdmins(ctx context.Context) ([]*user.User, error) {
	var models []UserModel
	err := getDB(ctx, r.db).Where("role = ?", string(user.RoleAdmin)).Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询管理员列表失败")
	}

	admins := make([]*user.User, len(models))
	for i := range models {
		admins[i] = toUserEntity(&models[i])
	}
	return admins, nil
}

// toUserEntity GORM模型 → 领域实体
func toUserEntity(model *UserModel) *user.User {
	return &user.User{
		ID:        model.ID,
		Email:     model.Email,
		Nickname:  model.Nickname,
		Role:      user.Role(model.Role),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
