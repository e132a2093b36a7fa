package cart

import (
	"time"
)

// Item 购物车行：商品+可选规格+数量
type Item struct {
	ProductID uint
	VariantID uint // 0表示无规格
	Quantity  int
}

// Cart 购物车实体（每个用户一个）
// 下单时只读消费，订单提交成功后清空。
type Cart struct {
	ID        uint
	UserID    uint
	Items     []Item
	UpdatedAt time.Time
}

// IsEmpty 购物车是否为空
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}
