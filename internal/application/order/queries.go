package order

import (
	"context"

	"github.com/zeus1411/aquastore/internal/domain/order"
)

// QueryUseCase 订单查询用例（详情+分页列表）
type QueryUseCase struct {
	orderRepo order.Repository
}

// NewQueryUseCase 创建查询用例
func NewQueryUseCase(orderRepo order.Repository) *QueryUseCase {
	return &QueryUseCase{orderRepo: orderRepo}
}

// Get 查询订单详情
// 买家只能看自己的订单，管理员不受限。
func (uc *QueryUseCase) Get(ctx context.Context, orderID, userID uint, isAdmin bool) (*order.Order, error) {
	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !o.IsOwnedBy(userID) {
		return nil, order.ErrNotOrderOwner
	}
	return o, nil
}

// GetByOrderNo 按订单号查询详情
func (uc *QueryUseCase) GetByOrderNo(ctx context.Context, orderNo string, userID uint, isAdmin bool) (*order.Order, error) {
	o, err := uc.orderRepo.FindByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !o.IsOwnedBy(userID) {
		return nil, order.ErrNotOrderOwner
	}
	return o, nil
}

// List 分页查询用户自己的订单（按创建时间倒序）
func (uc *QueryUseCase) List(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return uc.orderRepo.ListByUserID(ctx, userID, page, pageSize)
}
