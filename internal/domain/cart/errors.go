package cart

import (
	apperrors "github.com/zeus1411/aquastore/pkg/errors"
)

// 购物车领域错误定义
var (
	// ErrEmptyCart 购物车为空，无法下单
	ErrEmptyCart = apperrors.New(apperrors.ErrCodeEmptyCart, "购物车为空")
)
