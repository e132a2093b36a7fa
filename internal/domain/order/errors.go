package order

import (
	apperrors "github.com/zeus1411/aquastore/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrInvalidStatusTransition 非法的状态转换
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "订单状态不允许此操作")

	// ErrNotOrderOwner 订单不属于当前用户
	ErrNotOrderOwner = apperrors.New(apperrors.ErrCodeForbidden, "无权操作该订单")
)

// ErrNotCancellable 当前状态不可取消（错误信息带具体状态）
func ErrNotCancellable(status Status) *apperrors.AppError {
	return apperrors.Newf(apperrors.ErrCodeInvalidOrderStatus, "订单当前状态(%s)不可取消", status)
}

// ErrMissingAddressFields 收货地址缺少必填字段
func ErrMissingAddressFields(fields []string) *apperrors.AppError {
	return apperrors.Newf(apperrors.ErrCodeInvalidParams, "收货地址缺少必填字段: %v", fields)
}
