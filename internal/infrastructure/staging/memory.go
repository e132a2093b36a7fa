// Package staging 暂存订单的进程内实现
//
// 网关支付分支下单后、回调确认前，完整的下单载荷保存在这里。
// 进程内存储不持久、不跨实例：重启丢失所有暂存条目，重启前的
// 交易回调会命中"不存在"，按幂等空操作处理（不是故障）。
// 多实例部署应改用Redis实现（persistence/redis.StagingStore）。
package staging

import (
	"context"
	"sync"
	"time"

	"github.com/zeus1411/aquastore/internal/domain/order"
	"github.com/zeus1411/aquastore/pkg/metrics"
)

// MemoryStore 进程内暂存存储
// 双重过期保障：AfterFunc定时清除 + 读时过期检查（定时器在进程
// 繁忙时可能延迟触发，读路径必须自己兜底）。
// 在途暂存数指标由存储自己维护：弃单到期清除是常态路径，
// 指标必须跟着清除走，不能只依赖显式Remove。
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	ttl     time.Duration
}

type memoryEntry struct {
	staged *order.StagedOrder
	timer  *time.Timer
}

// NewMemoryStore 创建进程内暂存存储
// ttl<=0时使用order.StagingTTL（15分钟）。
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = order.StagingTTL
	}
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
	}
}

// Put 写入暂存条目，到期后自动清除
// 同一ref重复Put时旧定时器被取消，条目被覆盖。
func (s *MemoryStore) Put(ctx context.Context, ref string, payload order.StagedPayload) (*order.StagedOrder, error) {
	now := time.Now()
	staged := &order.StagedOrder{
		TransactionRef: ref,
		Payload:        payload,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[ref]; ok {
		old.timer.Stop()
	}

	timer := time.AfterFunc(s.ttl, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.entries, ref)
		s.syncGaugeLocked()
	})
	s.entries[ref] = &memoryEntry{staged: staged, timer: timer}
	s.syncGaugeLocked()

	return staged, nil
}

// Get 读取暂存条目
// 不存在或已过期返回nil（过期条目作为读的副作用被删除）。
func (s *MemoryStore) Get(ctx context.Context, ref string) (*order.StagedOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[ref]
	if !ok {
		return nil, nil
	}
	if entry.staged.IsExpired(time.Now()) {
		entry.timer.Stop()
		delete(s.entries, ref)
		s.syncGaugeLocked()
		return nil, nil
	}
	return entry.staged, nil
}

// Remove 删除暂存条目（幂等），返回条目是否存在
func (s *MemoryStore) Remove(ctx context.Context, ref string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[ref]
	if !ok {
		return false, nil
	}
	entry.timer.Stop()
	delete(s.entries, ref)
	s.syncGaugeLocked()
	return true, nil
}

// Len 当前暂存条目数（监控指标用）
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// syncGaugeLocked 以条目数刷新在途暂存指标（调用方持锁）
func (s *MemoryStore) syncGaugeLocked() {
	metrics.SetGauge(metrics.StagedOrdersInFlight, float64(len(s.entries)))
}
