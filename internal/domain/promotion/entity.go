package promotion

import (
	"time"
)

// DiscountType 优惠类型
type DiscountType string

const (
	DiscountPercentage  DiscountType = "PERCENTAGE"    // 按小计百分比，受MaxDiscount封顶
	DiscountFixedAmount DiscountType = "FIXED_AMOUNT"  // 固定金额
	DiscountFreeShip    DiscountType = "FREE_SHIPPING" // 免运费：min(运费, MaxDiscount)
)

// Usage 单个用户的使用记录
type Usage struct {
	UserID     uint      `json:"userId"`
	UsedCount  int       `json:"usedCount"`
	LastUsedAt time.Time `json:"lastUsedAt"`
}

// Promotion 优惠券实体（聚合根）
// 设计说明:
// 1. UsageLimitTotal/PerUser为0表示不限制
// 2. MaxDiscount为0表示不封顶
// 3. 使用量只在订单真正落库后记账，暂存中的网关订单不消耗额度
type Promotion struct {
	ID              uint
	Code            string
	Name            string
	IsActive        bool
	StartDate       time.Time
	EndDate         time.Time
	DiscountType    DiscountType
	DiscountValue   int64 // PERCENTAGE时为百分比(0-100)，FIXED_AMOUNT时为金额(VND)
	MinOrderValue   int64 // 最低订单金额，0表示无门槛
	MaxDiscount     int64 // 最大优惠金额，0表示不封顶
	UsageLimitTotal int   // 总使用次数上限，0表示不限
	UsageLimitUser  int   // 每用户使用次数上限，0表示不限
	UsageCount      int   // 已使用总次数
	UsedBy          []Usage
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsWithinPeriod 当前时间是否在有效期内
func (p *Promotion) IsWithinPeriod(now time.Time) bool {
	return !now.Before(p.StartDate) && !now.After(p.EndDate)
}

// IsExhausted 总使用次数是否已耗尽
func (p *Promotion) IsExhausted() bool {
	return p.UsageLimitTotal > 0 && p.UsageCount >= p.UsageLimitTotal
}

// IsExhaustedForUser 指定用户的使用次数是否已耗尽
func (p *Promotion) IsExhaustedForUser(userID uint) bool {
	if p.UsageLimitUser <= 0 {
		return false
	}
	for _, u := range p.UsedBy {
		if u.UserID == userID {
			return u.UsedCount >= p.UsageLimitUser
		}
	}
	return false
}

// MeetsMinOrder 小计是否满足最低订单金额
func (p *Promotion) MeetsMinOrder(subtotal int64) bool {
	return p.MinOrderValue <= 0 || subtotal >= p.MinOrderValue
}

// Discount 计算优惠金额
// shippingFee仅FREE_SHIPPING类型使用，调用前运费必须已算出。
func (p *Promotion) Discount(subtotal, shippingFee int64) int64 {
	switch p.DiscountType {
	case DiscountPercentage:
		d := subtotal * p.DiscountValue / 100
		if p.MaxDiscount > 0 && d > p.MaxDiscount {
			d = p.MaxDiscount
		}
		return d
	case DiscountFixedAmount:
		return p.DiscountValue
	case DiscountFreeShip:
		if p.MaxDiscount > 0 && shippingFee > p.MaxDiscount {
			return p.MaxDiscount
		}
		return shippingFee
	default:
		return 0
	}
}
