package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zeus1411/aquastore/internal/domain/order"
	apperrors "github.com/zeus1411/aquastore/pkg/errors"
	"github.com/zeus1411/aquastore/pkg/metrics"
)

// StagingStore 暂存订单的Redis实现（实现order.Staging）
// 多实例部署用这个替换进程内存储：网关回调可能落到任意实例，
// 暂存条目必须跨实例可见。TTL由Redis原生过期承担。
// Key设计：staged_order:{transactionRef}
type StagingStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStagingStore 创建Redis暂存存储
// ttl<=0时使用order.StagingTTL（15分钟）。
func NewStagingStore(client *redis.Client, ttl time.Duration) *StagingStore {
	if ttl <= 0 {
		ttl = order.StagingTTL
	}
	return &StagingStore{client: client, ttl: ttl}
}

func stagingKey(ref string) string {
	return fmt.Sprintf("staged_order:%s", ref)
}

// Put 写入暂存条目，Redis TTL负责到期清除
func (s *StagingStore) Put(ctx context.Context, ref string, payload order.StagedPayload) (*order.StagedOrder, error) {
	now := time.Now()
	staged := &order.StagedOrder{
		TransactionRef: ref,
		Payload:        payload,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ttl),
	}

	data, err := json.Marshal(staged)
	if err != nil {
		return nil, apperrors.Wrap(err, "序列化暂存订单失败")
	}
	if err := s.client.Set(ctx, stagingKey(ref), data, s.ttl).Err(); err != nil {
		return nil, apperrors.Wrap(err, "写入暂存订单失败")
	}
	s.syncGauge(ctx)
	return staged, nil
}

// Get 读取暂存条目，不存在或已过期返回nil
// Redis TTL通常先行清除，ExpiresAt检查是时钟漂移下的兜底。
func (s *StagingStore) Get(ctx context.Context, ref string) (*order.StagedOrder, error) {
	data, err := s.client.Get(ctx, stagingKey(ref)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "读取暂存订单失败")
	}

	var staged order.StagedOrder
	if err := json.Unmarshal(data, &staged); err != nil {
		return nil, apperrors.Wrap(err, "解析暂存订单失败")
	}
	if staged.IsExpired(time.Now()) {
		s.client.Del(ctx, stagingKey(ref))
		s.syncGauge(ctx)
		return nil, nil
	}
	return &staged, nil
}

// Remove 删除暂存条目（幂等），返回条目是否存在
func (s *StagingStore) Remove(ctx context.Context, ref string) (bool, error) {
	deleted, err := s.client.Del(ctx, stagingKey(ref)).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "删除暂存订单失败")
	}
	s.syncGauge(ctx)
	return deleted > 0, nil
}

// syncGauge 以实际key数刷新在途暂存指标
// Redis原生TTL清除弃单时没有回调，指标在每次变更时按SCAN计数
// 重算，上一轮被TTL清掉的条目在下一次变更时得到纠正。
// 计数失败只记日志，不影响暂存读写。
func (s *StagingStore) syncGauge(ctx context.Context) {
	var count int64
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, stagingKey("*"), 100).Result()
		if err != nil {
			log.Printf("[staging] 统计暂存条目失败: %v", err)
			return
		}
		count += int64(len(keys))
		cursor = next
		if cursor == 0 {
			break
		}
	}
	metrics.SetGauge(metrics.StagedOrdersInFlight, float64(count))
}
