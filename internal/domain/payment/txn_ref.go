package payment

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateTransactionRef 生成交易引用
//
// 格式：TXN + 时间戳(秒) + 6位随机数
// 网关分支用它作为暂存订单的键和vnp_TxnRef；COD分支也生成一个便于对账。
func GenerateTransactionRef() string {
	return fmt.Sprintf("TXN%d%06d", time.Now().Unix(), rand.Intn(1_000_000))
}
