package order

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/zeus1411/aquastore/internal/domain/cart"
	"github.com/zeus1411/aquastore/internal/domain/order"
	"github.com/zeus1411/aquastore/internal/domain/product"
	apperrors "github.com/zeus1411/aquastore/pkg/errors"
	"github.com/zeus1411/aquastore/pkg/saga"
)

// StockEngine 库存校验与扣减引擎
// 设计说明:
// 1. 校验与扣减严格分离：所有行先通过只读校验，才允许第一笔扣减——
//    绝不能扣了一半才发现后面的行校验失败
// 2. 扣减是逐行原子UPDATE（仓储层SQL表达式），行与行之间没有
//    跨行事务；扣减序列跑在Saga里，某行失败时已扣的行走补偿回补
// 3. 每次库存变更后同步失效商品缓存
type StockEngine struct {
	productRepo product.Repository
	cache       product.Cache
}

// NewStockEngine 创建库存引擎
func NewStockEngine(productRepo product.Repository, cache product.Cache) *StockEngine {
	return &StockEngine{productRepo: productRepo, cache: cache}
}

// Validate 只读校验购物车行并构建订单明细快照
// 逐行检查：商品存在且在售、规格有效且启用、库存充足。
// 返回明细快照和服务端重算的小计，任何一行不满足立即报错，不产生任何变更。
func (e *StockEngine) Validate(ctx context.Context, lines []cart.Item) ([]order.Item, int64, error) {
	items := make([]order.Item, 0, len(lines))
	var subtotal int64

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, 0, apperrors.Newf(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")
		}

		p, err := e.loadProduct(ctx, line.ProductID)
		if err != nil {
			return nil, 0, err
		}
		if !p.IsActive() {
			return nil, 0, apperrors.Newf(apperrors.ErrCodeProductInactive, "商品《%s》已下架", p.Name)
		}

		var variant *product.Variant
		if p.HasVariants() {
			if line.VariantID == 0 {
				return nil, 0, apperrors.Newf(apperrors.ErrCodeVariantNotFound, "商品《%s》需要选择规格", p.Name)
			}
			variant = p.FindVariant(line.VariantID)
			if variant == nil {
				return nil, 0, apperrors.Newf(apperrors.ErrCodeVariantNotFound, "商品《%s》的规格不存在", p.Name)
			}
			if !variant.IsActive {
				return nil, 0, apperrors.Newf(apperrors.ErrCodeVariantInactive, "商品《%s》的规格已停用", p.Name)
			}
		}

		available := p.AvailableStock(variant)
		if available < line.Quantity {
			return nil, 0, apperrors.Newf(apperrors.ErrCodeInsufficientStock,
				"商品《%s》库存不足，当前库存:%d，需要:%d", p.Name, available, line.Quantity)
		}

		unitPrice := p.UnitPrice(variant)
		item := order.Item{
			ProductID:       p.ID,
			ProductName:     p.Name,
			Image:           p.Image,
			SKU:             p.SKU,
			Quantity:        line.Quantity,
			UnitPrice:       unitPrice,
			DiscountPercent: p.Discount,
			LineSubtotal:    order.LineSubtotal(unitPrice, line.Quantity, p.Discount),
		}
		if variant != nil {
			item.SKU = variant.SKU
			item.Variant = &order.VariantSnapshot{
				VariantID:    variant.ID,
				SKU:          variant.SKU,
				OptionValues: variant.OptionValues,
			}
		}

		items = append(items, item)
		subtotal += item.LineSubtotal
	}

	return items, subtotal, nil
}

// loadProduct 缓存优先读商品，未命中回源并回填
// 缓存里的库存可能略旧，最终防线是Commit阶段的条件UPDATE。
func (e *StockEngine) loadProduct(ctx context.Context, id uint) (*product.Product, error) {
	if e.cache != nil {
		if cached, err := e.cache.Get(ctx, id); err != nil {
			log.Printf("[stock] 读商品缓存失败(回源) product=%d: %v", id, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	p, err := e.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		if err := e.cache.Set(ctx, p); err != nil {
			log.Printf("[stock] 写商品缓存失败 product=%d: %v", id, err)
		}
	}
	return p, nil
}

// Commit 逐行扣减库存并递增销量，跑在Saga里
// 第N行失败时前N-1行的扣减走补偿回补——这是对"逐行独立扣减、
// 失败留下半提交状态"这一既有行为的改进，行内扣减依然是单条原子UPDATE。
func (e *StockEngine) Commit(ctx context.Context, items []order.Item) error {
	s := saga.NewSaga(30 * time.Second)

	for _, item := range items {
		item := item
		s.AddStep(fmt.Sprintf("扣减库存:%s", item.ProductName),
			func(ctx context.Context) error {
				return e.apply(ctx, item, -item.Quantity, item.Quantity)
			},
			func(ctx context.Context) error {
				return e.apply(ctx, item, item.Quantity, -item.Quantity)
			})
	}

	return s.Execute(ctx)
}

// Rollback 回补库存（订单取消）
// 逐行容错：商品/规格已被删除时跳过该行并记日志，绝不让取消失败——
// 取消必须总能完成状态流转，哪怕个别商品的库存账补不回去。
func (e *StockEngine) Rollback(ctx context.Context, items []order.Item) {
	for _, item := range items {
		if err := e.apply(ctx, item, item.Quantity, -item.Quantity); err != nil {
			log.Printf("[stock] 回补库存失败(跳过) product=%d qty=%d: %v",
				item.ProductID, item.Quantity, err)
		}
	}
}

// apply 应用单行库存变更并同步失效商品缓存
// 按明细快照记录的形态选择商品行或规格行。
func (e *StockEngine) apply(ctx context.Context, item order.Item, stockDelta, soldDelta int) error {
	var err error
	if item.Variant != nil {
		err = e.productRepo.UpdateVariantStock(ctx, item.Variant.VariantID, stockDelta, soldDelta)
	} else {
		err = e.productRepo.UpdateStock(ctx, item.ProductID, stockDelta, soldDelta)
	}
	if err != nil {
		return err
	}

	// 缓存失效必须与库存变更同一逻辑步骤，失败只记日志（下次读会回源）
	if e.cache != nil {
		if cacheErr := e.cache.Invalidate(ctx, item.ProductID); cacheErr != nil {
			log.Printf("[stock] 商品缓存失效失败 product=%d: %v", item.ProductID, cacheErr)
		}
	}
	return nil
}
