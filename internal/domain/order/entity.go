package order

import (
	"fmt"
	"strings"
	"time"
)

// Status 订单状态
// 主线：PENDING → CONFIRMED → PROCESSING → SHIPPING → COMPLETED
// 分支：CANCELLED（仅从PENDING/CONFIRMED/FAILED）、
//
//	FAILED（从PENDING，支付失败）、REFUNDED（仅从COMPLETED）
type Status string

const (
	StatusPending    Status = "PENDING"    // 待确认
	StatusConfirmed  Status = "CONFIRMED"  // 已确认
	StatusProcessing Status = "PROCESSING" // 备货中
	StatusShipping   Status = "SHIPPING"   // 配送中
	StatusCompleted  Status = "COMPLETED"  // 已完成
	StatusCancelled  Status = "CANCELLED"  // 已取消
	StatusFailed     Status = "FAILED"     // 支付失败
	StatusRefunded   Status = "REFUNDED"   // 已退款
)

// transitions 合法状态转换表
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled, StatusFailed},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipping},
	StatusShipping:   {StatusCompleted},
	StatusCompleted:  {StatusRefunded},
	StatusFailed:     {StatusCancelled},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// ShippingAddress 收货地址快照
// 快照而非引用：用户改地址不影响历史订单。
type ShippingAddress struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Street   string `json:"street"`
	Ward     string `json:"ward"`
	District string `json:"district"`
	City     string `json:"city"`
}

// Validate 校验必填字段，返回缺失字段名列表（全部齐备时为nil）
func (a *ShippingAddress) Validate() []string {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check("fullName", a.FullName)
	check("phone", a.Phone)
	check("street", a.Street)
	check("ward", a.Ward)
	check("district", a.District)
	check("city", a.City)
	return missing
}

// VariantSnapshot 下单时的规格快照
type VariantSnapshot struct {
	VariantID    uint   `json:"variantId"`
	SKU          string `json:"sku"`
	OptionValues string `json:"optionValues"`
}

// Item 订单明细快照
// 下单时刻的价格/名称/折扣固化在此，商家后续改价不影响历史订单。
// LineSubtotal = UnitPrice * Quantity * (1 - DiscountPercent/100)
type Item struct {
	ProductID       uint             `json:"productId"`
	ProductName     string           `json:"productName"`
	Image           string           `json:"image"`
	SKU             string           `json:"sku"`
	Quantity        int              `json:"quantity"`
	UnitPrice       int64            `json:"unitPrice"`
	DiscountPercent int              `json:"discountPercent"`
	LineSubtotal    int64            `json:"lineSubtotal"`
	Variant         *VariantSnapshot `json:"variant,omitempty"`
}

// LineSubtotal 计算单行小计（服务端重算，绝不信任客户端金额）
func LineSubtotal(unitPrice int64, quantity, discountPercent int) int64 {
	return unitPrice * int64(quantity) * int64(100-discountPercent) / 100
}

// HistoryEntry 状态流转记录（只追加）
type HistoryEntry struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note"`
	UpdatedBy uint      `json:"updatedBy"` // 0表示系统
}

// PromotionRef 订单应用的优惠券引用
type PromotionRef struct {
	PromotionID uint   `json:"promotionId"`
	Code        string `json:"code"`
}

// Order 订单实体（聚合根）
// 设计说明:
// 1. OrderNo为业务主键：ORD+日期+随机序号，人类可读
// 2. 金额恒等式：TotalPrice = Subtotal + ShippingFee + Tax - Discount
// 3. StatusHistory只追加，包含初始状态在内的每次流转都要记录
type Order struct {
	ID           uint
	OrderNo      string
	UserID       uint
	Items        []Item
	Subtotal     int64 // 各行小计之和（服务端重算）
	ShippingFee  int64
	Discount     int64
	Tax          int64
	TotalPrice   int64
	Status       Status
	Address      ShippingAddress
	Promotions   []PromotionRef
	PaymentID    uint // 0表示尚未创建支付单
	Notes        string
	IsPaid       bool
	PaidAt       *time.Time
	CancelReason string
	CancelledAt  *time.Time
	CancelledBy  uint
	History      []HistoryEntry
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewOrder 创建新订单（工厂方法）
// 金额由调用方按服务端重算结果传入；初始状态也写入History。
func NewOrder(orderNo string, userID uint, items []Item, addr ShippingAddress, subtotal, shippingFee, discount int64, promotions []PromotionRef, notes string) *Order {
	now := time.Now()
	o := &Order{
		OrderNo:     orderNo,
		UserID:      userID,
		Items:       items,
		Subtotal:    subtotal,
		ShippingFee: shippingFee,
		Discount:    discount,
		Tax:         0,
		TotalPrice:  subtotal + shippingFee - discount,
		Status:      StatusPending,
		Address:     addr,
		Promotions:  promotions,
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	o.History = append(o.History, HistoryEntry{
		Status:    StatusPending,
		Timestamp: now,
		Note:      "订单创建",
	})
	return o
}

// CanTransitionTo 检查是否可以转换到目标状态
func (o *Order) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[o.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换并追加流转记录
func (o *Order) TransitionTo(target Status, note string, updatedBy uint) error {
	if !o.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	now := time.Now()
	o.Status = target
	o.UpdatedAt = now
	o.History = append(o.History, HistoryEntry{
		Status:    target,
		Timestamp: now,
		Note:      note,
		UpdatedBy: updatedBy,
	})
	return nil
}

// ConfirmPayment 支付确认（领域行为）
// 设置已支付标记；仍在PENDING时推进到CONFIRMED。
func (o *Order) ConfirmPayment() error {
	now := time.Now()
	o.IsPaid = true
	o.PaidAt = &now
	if o.Status == StatusPending {
		return o.TransitionTo(StatusConfirmed, "支付成功", 0)
	}
	o.UpdatedAt = now
	return nil
}

// FailPayment 支付失败（领域行为）：仍在PENDING时推进到FAILED
func (o *Order) FailPayment(reason string) error {
	if o.Status != StatusPending {
		return nil
	}
	return o.TransitionTo(StatusFailed, reason, 0)
}

// CanCancel 当前状态是否允许取消
// 只有PENDING/CONFIRMED/FAILED可取消。
func (o *Order) CanCancel() bool {
	switch o.Status {
	case StatusPending, StatusConfirmed, StatusFailed:
		return true
	default:
		return false
	}
}

// Cancel 取消订单（领域行为）
func (o *Order) Cancel(reason string, cancelledBy uint) error {
	if !o.CanCancel() {
		return ErrNotCancellable(o.Status)
	}
	if err := o.TransitionTo(StatusCancelled, reason, cancelledBy); err != nil {
		return err
	}
	now := time.Now()
	o.CancelReason = reason
	o.CancelledAt = &now
	o.CancelledBy = cancelledBy
	return nil
}

// CalculateSubtotal 按明细重算小计（用于校验金额恒等式）
func (o *Order) CalculateSubtotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.LineSubtotal
	}
	return total
}

// IsOwnedBy 检查订单是否属于指定用户
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}

// FormattedTotal 格式化金额（通知文案用），如"485,000₫"
func (o *Order) FormattedTotal() string {
	return FormatVND(o.TotalPrice)
}

// FormatVND 千分位格式化VND金额
func FormatVND(amount int64) string {
	s := fmt.Sprintf("%d", amount)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",") + "₫"
	if neg {
		return "-" + out
	}
	return out
}
