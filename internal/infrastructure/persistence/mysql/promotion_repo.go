package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/zeus1411/aquastore/internal/domain/promotion"
	apperrors "github.com/zeus1411/aquastore/pkg/errors"
)

// promotionRepository 优惠券仓储实现(MySQL)
type promotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository 创建优惠券仓储
func NewPromotionRepository(db *gorm.DB) promotion.Repository {
	return &promotionRepository{db: db}
}

// FindByCode 根据优惠码查找，不存在返回nil, nil
// 有效期/状态过滤由Evaluator做，仓储只负责取数。
func (r *promotionRepository) FindByCode(ctx context.Context, code string) (*promotion.Promotion, error) {
	var model PromotionModel
	err := getDB(ctx, r.db).Where("code = ?", code).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "查询优惠券失败")
	}
	return toPromotionEntity(&model)
}

// RecordUsage 记录一次使用
// usageCount递增是原子条件UPDATE：WHERE里校验总量未耗尽，
// RowsAffected=0说明并发下最后一张被别人用掉了。
// usedBy JSON的读改写跑在行锁事务里（SELECT FOR UPDATE）。
func (r *promotionRepository) RecordUsage(ctx context.Context, promotionID, userID uint) error {
	db := getDB(ctx, r.db)

	return db.Transaction(func(tx *gorm.DB) error {
		// 原子递增usageCount，总量耗尽时拒绝
		query := tx.Model(&PromotionModel{}).Where("id = ?", promotionID).
			Where("usage_limit_total = 0 OR usage_count < usage_limit_total")
		result := query.Update("usage_count", gorm.Expr("usage_count + 1"))
		if result.Error != nil {
			return apperrors.Wrap(result.Error, "更新优惠券使用量失败")
		}
		if result.RowsAffected == 0 {
			return promotion.ErrPromotionExhausted
		}

		// 行锁内更新usedBy
		var model PromotionModel
		if err := tx.Clauses(forUpdate()).First(&model, promotionID).Error; err != nil {
			return apperrors.Wrap(err, "锁定优惠券失败")
		}

		var usedBy []promotion.Usage
		if err := fromJSON(model.UsedBy, &usedBy); err != nil {
			return apperrors.Wrap(err, "解析优惠券使用记录失败")
		}

		now := time.Now()
		found := false
		for i := range usedBy {
			if usedBy[i].UserID == userID {
				usedBy[i].UsedCount++
				usedBy[i].LastUsedAt = now
				found = true
				break
			}
		}
		if !found {
			usedBy = append(usedBy, promotion.Usage{UserID: userID, UsedCount: 1, LastUsedAt: now})
		}

		err := tx.Model(&PromotionModel{}).Where("id = ?", promotionID).
			Updates(map[string]interface{}{
				"used_by":    mustJSON(usedBy),
				"updated_at": now,
			}).Error
		if err != nil {
			return apperrors.Wrap(err, "更新优惠券使用记录失败")
		}
		return nil
	})
}

// toPromotionEntity GORM模型 → 领域实体
func toPromotionEntity(model *PromotionModel) (*promotion.Promotion, error) {
	var usedBy []promotion.Usage
	if err := fromJSON(model.UsedBy, &usedBy); err != nil {
		return nil, apperrors.Wrap(err, "解析优惠券使用记录失败")
	}

	return &promotion.Promotion{
		ID:              model.ID,
		Code:            model.Code,
		Name:            model.Name,
		IsActive:        model.IsActive,
		StartDate:       model.StartDate,
		EndDate:         model.EndDate,
		DiscountType:    promotion.DiscountType(model.DiscountType),
		DiscountValue:   model.DiscountValue,
		MinOrderValue:   model.MinOrderValue,
		MaxDiscount:     model.MaxDiscount,
		UsageLimitTotal: model.UsageLimitTotal,
		UsageLimitUser:  model.UsageLimitUser,
		UsageCount:      model.UsageCount,
		UsedBy:          usedBy,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}, nil
}
