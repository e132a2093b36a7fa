package product

import (
	"time"
)

// Status 商品状态
type Status string

const (
	StatusActive   Status = "ACTIVE"   // 在售
	StatusInactive Status = "INACTIVE" // 下架
	StatusDraft    Status = "DRAFT"    // 草稿
)

// Variant 商品规格（如水草品种、鱼缸尺寸）
// 有规格的商品，库存和价格以规格为准；购物车行必须带VariantID。
type Variant struct {
	ID           uint
	ProductID    uint
	SKU          string
	OptionValues string // 规格描述，如"60cm / 超白玻璃"
	Price        int64  // 规格价格(VND)，覆盖商品价格
	Stock        int
	SoldCount    int
	IsActive     bool
}

// Product 商品实体（聚合根）
// 设计说明:
// 1. 价格使用int64存储VND（越南盾无小数位，避免浮点精度问题）
// 2. Discount为行级折扣百分比(0-100)，下单时固化到订单快照
// 3. HasVariants()为真时，库存校验和扣减走Variant，商品级Stock不参与
type Product struct {
	ID          uint
	Name        string
	SKU         string
	Price       int64  // 价格(VND)
	Stock       int    // 库存（无规格商品）
	SoldCount   int    // 累计销量
	Discount    int    // 行级折扣百分比(0-100)
	Status      Status // 商品状态
	Image       string // 主图URL
	Description string
	Variants    []Variant // 规格列表（可为空）
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasVariants 商品是否有规格
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// IsActive 商品是否在售
func (p *Product) IsActive() bool {
	return p.Status == StatusActive
}

// FindVariant 按ID查找规格，未找到返回nil
func (p *Product) FindVariant(variantID uint) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return &p.Variants[i]
		}
	}
	return nil
}

// UnitPrice 计算购买单价：有规格取规格价，否则取商品价
func (p *Product) UnitPrice(variant *Variant) int64 {
	if variant != nil {
		return variant.Price
	}
	return p.Price
}

// AvailableStock 计算可售库存：有规格取规格库存，否则取商品库存
func (p *Product) AvailableStock(variant *Variant) int {
	if variant != nil {
		return variant.Stock
	}
	return p.Stock
}
