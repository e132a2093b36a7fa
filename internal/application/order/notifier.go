package order

import (
	"context"
	"log"
	"time"

	"github.com/zeus1411/aquastore/internal/domain/notification"
	"github.com/zeus1411/aquastore/internal/domain/order"
	"github.com/zeus1411/aquastore/internal/domain/user"
	"github.com/zeus1411/aquastore/pkg/circuitbreaker"
	"github.com/zeus1411/aquastore/pkg/metrics"
)

// EventPublisher 订单事件发布接口（pkg/mq.Publisher实现）
type EventPublisher interface {
	Publish(routingKey string, message interface{}) error
}

// OrderCreatedEvent 订单创建事件（发往消息队列）
type OrderCreatedEvent struct {
	OrderID    uint   `json:"orderId"`
	OrderNo    string `json:"orderNo"`
	UserID     uint   `json:"userId"`
	TotalPrice int64  `json:"totalPrice"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
}

// Notifier 订单通知旁路
// 只在订单真正落库后触发（COD立即，网关订单回调确认后），
// 暂存订单绝不发通知。整个旁路尽力而为：任何失败只记日志，
// 既不回滚订单也不影响下单响应。
type Notifier struct {
	notificationRepo notification.Repository
	userRepo         user.Repository
	publisher        EventPublisher
	breaker          *circuitbreaker.CircuitBreaker
}

// NewNotifier 创建通知旁路
// publisher可为nil（MQ未配置时只落站内通知）。
func NewNotifier(notificationRepo notification.Repository, userRepo user.Repository, publisher EventPublisher) *Notifier {
	breaker := circuitbreaker.NewCircuitBreaker("notification-mq", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	breaker.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Printf("[notifier] 熔断器%s状态变化: %s -> %s", name, from, to)
		metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(to))
	})

	return &Notifier{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		publisher:        publisher,
		breaker:          breaker,
	}
}

// NotifyOrderCreated 订单创建后的通知扇出
// 调用方在响应返回后用goroutine调用（go notifier.NotifyOrderCreated(...)），
// 这里不再另起goroutine。
func (n *Notifier) NotifyOrderCreated(ctx context.Context, o *order.Order) {
	// 买家通知
	buyer := notification.NewOrderCreated(o.UserID, o.ID, o.OrderNo)
	if err := n.notificationRepo.Create(ctx, buyer); err != nil {
		log.Printf("[notifier] 买家通知写入失败 order=%s: %v", o.OrderNo, err)
	}

	// 管理员广播
	customerName := n.customerName(ctx, o.UserID)
	admins, err := n.userRepo.ListAdmins(ctx)
	if err != nil {
		log.Printf("[notifier] 查询管理员失败 order=%s: %v", o.OrderNo, err)
	}
	for _, admin := range admins {
		adminNotify := notification.NewOrderForAdmin(admin.ID, o.ID, o.OrderNo, customerName, o.FormattedTotal())
		if err := n.notificationRepo.Create(ctx, adminNotify); err != nil {
			log.Printf("[notifier] 管理员通知写入失败 order=%s admin=%d: %v", o.OrderNo, admin.ID, err)
		}
	}

	// MQ事件（熔断保护：broker不可用时快速失败，不拖慢goroutine堆积）
	n.publishEvent(o)
}

// publishEvent 发布order.created事件
func (n *Notifier) publishEvent(o *order.Order) {
	if n.publisher == nil {
		return
	}

	event := OrderCreatedEvent{
		OrderID:    o.ID,
		OrderNo:    o.OrderNo,
		UserID:     o.UserID,
		TotalPrice: o.TotalPrice,
		Status:     string(o.Status),
		CreatedAt:  o.CreatedAt.Format(time.RFC3339),
	}

	err := n.breaker.Execute(func() error {
		return n.publisher.Publish("order.created", event)
	})
	if err != nil {
		log.Printf("[notifier] 订单事件发布失败 order=%s: %v", o.OrderNo, err)
		return
	}
}

// customerName 取买家昵称（失败时退化为空串，不阻断通知）
func (n *Notifier) customerName(ctx context.Context, userID uint) string {
	u, err := n.userRepo.FindByID(ctx, userID)
	if err != nil {
		log.Printf("[notifier] 查询买家失败 user=%d: %v", userID, err)
		return ""
	}
	return u.Nickname
}
