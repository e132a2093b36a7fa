package order

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateOrderNo 生成人类可读订单号
//
// 格式：ORD + yyyyMMdd + 6位随机数
// 示例：ORD20260831473920
//
// 日期前缀便于客服沟通和按天归档；随机后缀防止遍历。
// 唯一性由数据库唯一索引兜底，冲突概率足够低（每天百万分之一量级）。
func GenerateOrderNo() string {
	return fmt.Sprintf("ORD%s%06d", time.Now().Format("20060102"), rand.Intn(1_000_000))
}
