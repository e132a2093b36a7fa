package promotion

import (
	apperrors "github.com/zeus1411/aquastore/pkg/errors"
)

// 优惠券领域错误定义
var (
	// ErrPromotionNotFound 优惠码无效或不在有效期内
	ErrPromotionNotFound = apperrors.New(apperrors.ErrCodePromotionNotFound, "优惠码无效或已过期")

	// ErrPromotionExhausted 优惠券使用次数已达上限
	ErrPromotionExhausted = apperrors.New(apperrors.ErrCodePromotionExhausted, "优惠券已被领完")

	// ErrPromotionExhaustedForUser 用户使用次数已达上限
	ErrPromotionExhaustedForUser = apperrors.New(apperrors.ErrCodePromotionExhausted, "您已达到该优惠券的使用次数上限")

	// ErrMinOrderNotMet 未满足最低订单金额
	ErrMinOrderNotMet = apperrors.New(apperrors.ErrCodePromotionIneligible, "订单金额未达到优惠券使用门槛")
)
