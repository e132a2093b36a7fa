package staging

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeus1411/aquastore/internal/domain/order"
	"github.com/zeus1411/aquastore/pkg/metrics"
)

func TestMain(m *testing.M) {
	metrics.InitMetrics()
	os.Exit(m.Run())
}

func testPayload() order.StagedPayload {
	return order.StagedPayload{
		UserID:     7,
		Subtotal:   250_000,
		TotalPrice: 270_000,
	}
}

// TestPutGet 写入后可读取，ExpiresAt = CreatedAt + TTL
func TestPutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	staged, err := s.Put(ctx, "TXN1", testPayload())
	require.NoError(t, err)
	assert.Equal(t, staged.CreatedAt.Add(time.Minute), staged.ExpiresAt)

	got, err := s.Get(ctx, "TXN1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint(7), got.Payload.UserID)
	assert.Equal(t, int64(270_000), got.Payload.TotalPrice)
}

// TestGet_Missing 不存在的ref返回nil而非错误
func TestGet_Missing(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	got, err := s.Get(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// TestGet_ExpiredOnRead 过期条目在读时被删除并返回nil
// 定时器延迟触发时读路径必须自己兜底。
func TestGet_ExpiredOnRead(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	_, err := s.Put(ctx, "TXN1", testPayload())
	require.NoError(t, err)

	// 手动把过期时间拨到过去（不等真实TTL）
	s.mu.Lock()
	s.entries["TXN1"].staged.ExpiresAt = time.Now().Add(-time.Second)
	s.mu.Unlock()

	got, err := s.Get(ctx, "TXN1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, s.Len(), "过期条目应作为读的副作用被删除")
}

// TestTimerEviction 定时器到期自动清除
func TestTimerEviction(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(50 * time.Millisecond)

	_, err := s.Put(ctx, "TXN1", testPayload())
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	got, err := s.Get(ctx, "TXN1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, s.Len())
}

// TestGauge_FollowsEviction 在途暂存指标跟随定时清除回落
// 弃单（到期无回调）是常态路径，指标不能只在显式Remove时回落。
func TestGauge_FollowsEviction(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(50 * time.Millisecond)

	_, err := s.Put(ctx, "TXN1", testPayload())
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.StagedOrdersInFlight))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.StagedOrdersInFlight),
		"定时清除后指标应回落")
}

// TestGauge_FollowsRemoveAndExpiredRead 显式删除与读时过期同样回落
func TestGauge_FollowsRemoveAndExpiredRead(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	_, err := s.Put(ctx, "TXN1", testPayload())
	require.NoError(t, err)
	_, err = s.Put(ctx, "TXN2", testPayload())
	require.NoError(t, err)
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.StagedOrdersInFlight))

	_, err = s.Remove(ctx, "TXN1")
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.StagedOrdersInFlight))

	s.mu.Lock()
	s.entries["TXN2"].staged.ExpiresAt = time.Now().Add(-time.Second)
	s.mu.Unlock()
	_, err = s.Get(ctx, "TXN2")
	require.NoError(t, err)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.StagedOrdersInFlight))
}

// TestRemove_Idempotent 删除幂等：第一次返回true，之后返回false
// 回调处理靠这个语义实现消费一次（consume-once）。
func TestRemove_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	_, err := s.Put(ctx, "TXN1", testPayload())
	require.NoError(t, err)

	existed, err := s.Remove(ctx, "TXN1")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = s.Remove(ctx, "TXN1")
	require.NoError(t, err)
	assert.False(t, existed, "重复删除应返回false而非错误")
}

// TestPut_Overwrite 同一ref重复Put覆盖旧条目
func TestPut_Overwrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	_, err := s.Put(ctx, "TXN1", testPayload())
	require.NoError(t, err)

	p2 := testPayload()
	p2.TotalPrice = 999_000
	_, err = s.Put(ctx, "TXN1", p2)
	require.NoError(t, err)

	got, err := s.Get(ctx, "TXN1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(999_000), got.Payload.TotalPrice)
	assert.Equal(t, 1, s.Len())
}
