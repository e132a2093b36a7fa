package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeus1411/aquastore/internal/domain/notification"
	"github.com/zeus1411/aquastore/internal/domain/order"
	"github.com/zeus1411/aquastore/internal/domain/user"
)

type capturingPublisher struct {
	routingKeys []string
	events      []interface{}
	err         error
}

func (p *capturingPublisher) Publish(routingKey string, message interface{}) error {
	if p.err != nil {
		return p.err
	}
	p.routingKeys = append(p.routingKeys, routingKey)
	p.events = append(p.events, message)
	return nil
}

func sampleOrder() *order.Order {
	return &order.Order{
		ID:         7,
		OrderNo:    "ORD20260831000123",
		UserID:     100,
		TotalPrice: 485000,
		Status:     order.StatusPending,
		CreatedAt:  time.Now(),
	}
}

// 买家1条 + 每个管理员1条 + 1条MQ事件
func TestNotifier_Fanout(t *testing.T) {
	notifRepo := &fakeNotificationRepo{}
	userRepo := newFakeUserRepo()
	userRepo.users[100] = &user.User{ID: 100, Nickname: "阿强", Role: user.RoleCustomer}
	userRepo.users[1] = &user.User{ID: 1, Nickname: "admin1", Role: user.RoleAdmin}
	userRepo.users[2] = &user.User{ID: 2, Nickname: "admin2", Role: user.RoleAdmin}
	pub := &capturingPublisher{}

	n := NewNotifier(notifRepo, userRepo, pub)
	n.NotifyOrderCreated(context.Background(), sampleOrder())

	require.Len(t, notifRepo.created, 3)
	assert.Equal(t, notification.TypeOrderCreated, notifRepo.created[0].Type)
	assert.Equal(t, uint(100), notifRepo.created[0].UserID)
	// 管理员通知带客户昵称和格式化金额
	assert.Equal(t, notification.TypeNewOrder, notifRepo.created[1].Type)
	assert.Contains(t, notifRepo.created[1].Message, "阿强")
	assert.Contains(t, notifRepo.created[1].Message, "485,000₫")

	require.Len(t, pub.routingKeys, 1)
	assert.Equal(t, "order.created", pub.routingKeys[0])
	event, ok := pub.events[0].(OrderCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, "ORD20260831000123", event.OrderNo)
	assert.Equal(t, int64(485000), event.TotalPrice)
}

// MQ发布失败被吞掉，站内通知不受影响
func TestNotifier_SwallowsPublishFailure(t *testing.T) {
	notifRepo := &fakeNotificationRepo{}
	userRepo := newFakeUserRepo()
	userRepo.users[100] = &user.User{ID: 100, Nickname: "阿强", Role: user.RoleCustomer}
	pub := &capturingPublisher{err: errors.New("broker down")}

	n := NewNotifier(notifRepo, userRepo, pub)
	n.NotifyOrderCreated(context.Background(), sampleOrder())

	// 不panic、不返回错误，买家通知照常写入
	require.Len(t, notifRepo.created, 1)
}

// publisher为nil时只落站内通知
func TestNotifier_NilPublisher(t *testing.T) {
	notifRepo := &fakeNotificationRepo{}
	userRepo := newFakeUserRepo()
	userRepo.users[100] = &user.User{ID: 100, Nickname: "阿强", Role: user.RoleCustomer}

	n := NewNotifier(notifRepo, userRepo, nil)
	n.NotifyOrderCreated(context.Background(), sampleOrder())

	require.Len(t, notifRepo.created, 1)
}
