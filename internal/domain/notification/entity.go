package notification

import (
	"fmt"
	"time"
)

// Type 通知类型
type Type string

const (
	TypeOrderCreated Type = "ORDER_CREATED" // 买家：订单创建成功
	TypeNewOrder     Type = "NEW_ORDER"     // 管理员：有新订单待确认
	TypeOrderStatus  Type = "ORDER_STATUS"  // 订单状态变更
)

// Notification 站内通知实体
// 投递是尽力而为：写入失败只记日志，绝不影响下单主流程。
type Notification struct {
	ID        uint
	UserID    uint
	Type      Type
	OrderID   uint
	Title     string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}

// NewOrderCreated 买家通知："您的订单#N已创建"
func NewOrderCreated(userID, orderID uint, orderNo string) *Notification {
	return &Notification{
		UserID:    userID,
		Type:      TypeOrderCreated,
		OrderID:   orderID,
		Title:     "订单创建成功",
		Message:   fmt.Sprintf("您的订单 %s 已创建", orderNo),
		CreatedAt: time.Now(),
	}
}

// NewOrderForAdmin 管理员通知："新订单#N待确认"，带格式化金额
func NewOrderForAdmin(adminID, orderID uint, orderNo, customerName, formattedTotal string) *Notification {
	return &Notification{
		UserID:    adminID,
		Type:      TypeNewOrder,
		OrderID:   orderID,
		Title:     "新订单待确认",
		Message:   fmt.Sprintf("客户 %s 的新订单 %s 待确认，金额 %s", customerName, orderNo, formattedTotal),
		CreatedAt: time.Now(),
	}
}

// MarkRead 标记已读
func (n *Notification) MarkRead() {
	n.IsRead = true
}
