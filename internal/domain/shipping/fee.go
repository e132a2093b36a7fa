// Package shipping 运费计算
//
// 运费按订单小计的分段比例计算，金额单位为VND（越南盾，无小数位）。
// 小计越大费率越低，鼓励凑单。
package shipping

import "math"

// 费率分段（小计区间 -> 费率）
// 设计说明:
// 1. 区间边界左闭右开: [0,100k) 14%, [100k,300k) 8%, [300k,600k) 5%,
//    [600k,1M) 3%, [1M,∞) 1.8%
// 2. 必须传入服务端重算的小计，绝不能用客户端提交的金额
const (
	tier1Upper = 100_000   // 14%
	tier2Upper = 300_000   // 8%
	tier3Upper = 600_000   // 5%
	tier4Upper = 1_000_000 // 3%
)

// Fee 根据订单小计计算运费（纯函数，无副作用，无错误）
// 结果四舍五入到整数VND。
func Fee(subtotal int64) int64 {
	var rate float64
	switch {
	case subtotal < tier1Upper:
		rate = 0.14
	case subtotal < tier2Upper:
		rate = 0.08
	case subtotal < tier3Upper:
		rate = 0.05
	case subtotal < tier4Upper:
		rate = 0.03
	default:
		rate = 0.018
	}
	return int64(math.Round(float64(subtotal) * rate))
}
