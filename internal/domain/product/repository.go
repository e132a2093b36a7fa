package product

import (
	"context"
)

// Repository 商品仓储接口（依赖倒置：domain定义，infrastructure实现）
type Repository interface {
	// FindByID 根据ID查找商品（含规格列表）
	FindByID(ctx context.Context, id uint) (*Product, error)

	// UpdateStock 原子更新商品库存和销量
	// stockDelta为负表示扣减。扣减时SQL层校验stock >= -stockDelta，
	// 不足返回ErrInsufficientStock（单条原子UPDATE，防止并发超卖）。
	// soldDelta为负时销量在0处截断。
	UpdateStock(ctx context.Context, id uint, stockDelta, soldDelta int) error

	// UpdateVariantStock 原子更新规格库存和销量，语义同UpdateStock
	UpdateVariantStock(ctx context.Context, variantID uint, stockDelta, soldDelta int) error
}

// Cache 商品缓存接口
// 库存变更后必须同步失效缓存，避免并发读取到旧库存。
type Cache interface {
	// Get 读取缓存的商品，未命中返回nil（不是错误）
	Get(ctx context.Context, id uint) (*Product, error)

	// Set 写入缓存
	Set(ctx context.Context, p *Product) error

	// Invalidate 删除缓存（幂等）
	Invalidate(ctx context.Context, id uint) error
}
