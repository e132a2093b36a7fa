// Package saga 实现带补偿的顺序事务框架
//
// 核心思想：
// 1. 将长流程拆分为多个本地短步骤（扣库存、落订单、建支付单……）
// 2. 每个步骤有对应的补偿操作（回补库存、删除订单……）
// 3. 某步失败时，按逆序执行已完成步骤的补偿操作
//
// 要点：
// - 补偿操作必须幂等（网络故障可能导致重试）
// - Saga保证"最终一致性"，而非"强一致性"
// - 补偿本身可能失败，此时记录日志等待人工介入
package saga

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Step 表示Saga中的一个步骤
// Action是正向操作，Compensate是补偿操作；二者都可以为nil
// （如最后一步通常无需补偿）
type Step struct {
	Name       string                          // 步骤名称（用于日志和调试）
	Action     func(ctx context.Context) error // 正向操作
	Compensate func(ctx context.Context) error // 补偿操作
}

// Saga 表示一个Saga事务
type Saga struct {
	steps    []Step        // 所有步骤
	executed []Step        // 已执行的步骤（用于补偿）
	timeout  time.Duration // 整体超时时间
}

// NewSaga 创建一个新的Saga事务
//
// 示例：
//
//	s := saga.NewSaga(30 * time.Second)
//	s.AddStep("扣减库存", commitStock, rollbackStock)
//	s.AddStep("创建订单", createOrder, deleteOrder)
//	err := s.Execute(ctx)
func NewSaga(timeout time.Duration) *Saga {
	return &Saga{
		steps:   make([]Step, 0),
		timeout: timeout,
	}
}

// AddStep 添加一个Saga步骤
// 步骤顺序很重要：按添加顺序执行，按逆序补偿。
// 补偿操作必须完全独立，不能依赖后续步骤的结果。
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// Execute 执行Saga事务
//
// 执行流程：
// 1. 按顺序执行每个步骤的Action
// 2. 某步失败时，逆序执行已完成步骤的Compensate
// 3. 返回首个失败步骤的错误
//
// 超时会立即触发补偿流程（补偿使用新Context，避免补偿也超时）。
func (s *Saga) Execute(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		select {
		case <-ctx.Done():
			s.compensate(context.Background())
			return fmt.Errorf("saga超时: %w", ctx.Err())
		default:
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				s.compensate(context.Background())
				return fmt.Errorf("步骤[%d:%s]执行失败: %w", i, step.Name, err)
			}
		}

		s.executed = append(s.executed, step)
	}

	return nil
}

// compensate 逆序执行已完成步骤的补偿操作
// 即使某个补偿失败，也继续执行后续补偿（尽最大努力）。
// 为什么逆序？后执行的步骤可能依赖先执行的步骤：
// 先"扣减库存"后"创建订单"，补偿时应先"删除订单"再"回补库存"。
func (s *Saga) compensate(ctx context.Context) {
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]

		if step.Compensate != nil {
			if err := step.Compensate(ctx); err != nil {
				// 补偿失败：记录日志，继续执行后续补偿
				// 生产环境还应发送告警、写入补偿失败表供重试
				log.Printf("saga补偿失败[步骤:%s]: %v", step.Name, err)
			}
		}
	}

	s.executed = nil
}
