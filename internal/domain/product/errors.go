package product

import (
	apperrors "github.com/zeus1411/aquastore/pkg/errors"
)

// 商品领域错误定义
var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = apperrors.New(apperrors.ErrCodeProductNotFound, "商品不存在")

	// ErrProductInactive 商品已下架
	ErrProductInactive = apperrors.New(apperrors.ErrCodeProductInactive, "商品已下架")

	// ErrVariantNotFound 商品规格不存在
	ErrVariantNotFound = apperrors.New(apperrors.ErrCodeVariantNotFound, "商品规格不存在")

	// ErrVariantInactive 商品规格已停用
	ErrVariantInactive = apperrors.New(apperrors.ErrCodeVariantInactive, "商品规格已停用")

	// ErrInsufficientStock 库存不足（通用，带商品名的版本由调用方Newf构造）
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")
)
