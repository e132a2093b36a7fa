package order

import (
	"context"
	"time"
)

// StagingTTL 暂存订单有效期，与网关支付链接的过期时间一致
const StagingTTL = 15 * time.Minute

// StagedPayload 等待网关支付确认的完整下单载荷
// 网关分支下单时不落任何持久化记录、不动库存、不记优惠券用量，
// 全部计算结果暂存在这里，回调验签成功后才执行COD式提交序列。
type StagedPayload struct {
	UserID      uint            `json:"userId"`
	Items       []Item          `json:"items"`
	Subtotal    int64           `json:"subtotal"`
	ShippingFee int64           `json:"shippingFee"`
	Discount    int64           `json:"discount"`
	TotalPrice  int64           `json:"totalPrice"`
	Address     ShippingAddress `json:"address"`
	Promotions  []PromotionRef  `json:"promotions"`
	Notes       string          `json:"notes"`
}

// StagedOrder 暂存条目
type StagedOrder struct {
	TransactionRef string        `json:"transactionRef"`
	Payload        StagedPayload `json:"payload"`
	CreatedAt      time.Time     `json:"createdAt"`
	ExpiresAt      time.Time     `json:"expiresAt"`
}

// IsExpired 是否已过期
func (s *StagedOrder) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Staging 暂存订单存储接口
//
// 契约：
// 1. Put写入后ExpiresAt = CreatedAt + StagingTTL
// 2. Get在条目不存在或已过期时返回nil（过期条目作为读的副作用被删除）
// 3. Remove幂等，返回条目是否存在——回调处理必须把"不存在"当作
//    幂等空操作（网关会重复回调），绝不能当作错误
//
// 默认实现是进程内存储（单实例部署）；多实例部署用Redis实现，
// 否则回调可能落到没有暂存条目的实例上。
type Staging interface {
	Put(ctx context.Context, ref string, payload StagedPayload) (*StagedOrder, error)
	Get(ctx context.Context, ref string) (*StagedOrder, error)
	Remove(ctx context.Context, ref string) (bool, error)
}
