package payment

import (
	apperrors "github.com/zeus1411/aquastore/pkg/errors"
)

// 支付领域错误定义
var (
	// ErrPaymentNotFound 支付单不存在
	ErrPaymentNotFound = apperrors.New(apperrors.ErrCodePaymentNotFound, "支付单不存在")

	// ErrAlreadyCompleted 支付单已完成，不允许再变更状态
	ErrAlreadyCompleted = apperrors.New(apperrors.ErrCodeInvalidPayment, "支付单已完成")
)
