package promotion

import (
	"context"
)

// Repository 优惠券仓储接口
type Repository interface {
	// FindByCode 根据优惠码查找（不做有效期/状态过滤，由Evaluator判断）
	// 不存在时返回nil, nil。
	FindByCode(ctx context.Context, code string) (*Promotion, error)

	// RecordUsage 记录一次使用：usageCount+1，更新usedBy中该用户的计数
	// 只在订单真正落库后调用（COD立即，网关订单在回调验签成功后）。
	// 原子条件更新：总量已耗尽时返回ErrPromotionExhausted。
	RecordUsage(ctx context.Context, promotionID, userID uint) error
}
