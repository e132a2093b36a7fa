package promotion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo 内存假仓储，按Code索引
type fakeRepo struct {
	promos map[string]*Promotion
	err    error
}

func (f *fakeRepo) FindByCode(ctx context.Context, code string) (*Promotion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.promos[code], nil
}

func (f *fakeRepo) RecordUsage(ctx context.Context, promotionID, userID uint) error {
	return nil
}

func activePromo(code string, dt DiscountType, value int64) *Promotion {
	now := time.Now()
	return &Promotion{
		ID:            1,
		Code:          code,
		IsActive:      true,
		StartDate:     now.Add(-time.Hour),
		EndDate:       now.Add(time.Hour),
		DiscountType:  dt,
		DiscountValue: value,
	}
}

// TestEvaluateSingle_Percentage 百分比券，MaxDiscount封顶
// 小计500000，10%券封顶40000：原始优惠50000被封顶到40000
func TestEvaluateSingle_Percentage(t *testing.T) {
	p := activePromo("SALE10", DiscountPercentage, 10)
	p.MaxDiscount = 40_000
	repo := &fakeRepo{promos: map[string]*Promotion{"SALE10": p}}
	e := NewEvaluator(repo)

	result, err := e.EvaluateSingle(context.Background(), "SALE10", 7, 500_000, 25_000, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(40_000), result.TotalDiscount)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, "SALE10", result.Applied[0].Code)
}

// TestEvaluateSingle_FreeShipping 免运费券 = min(运费, MaxDiscount)
func TestEvaluateSingle_FreeShipping(t *testing.T) {
	t.Run("不封顶时等于全额运费", func(t *testing.T) {
		p := activePromo("FREESHIP", DiscountFreeShip, 0)
		repo := &fakeRepo{promos: map[string]*Promotion{"FREESHIP": p}}
		e := NewEvaluator(repo)

		result, err := e.EvaluateSingle(context.Background(), "FREESHIP", 7, 150_000, 12_000, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(12_000), result.TotalDiscount)
	})

	t.Run("封顶时取较小值", func(t *testing.T) {
		p := activePromo("FREESHIP", DiscountFreeShip, 0)
		p.MaxDiscount = 10_000
		repo := &fakeRepo{promos: map[string]*Promotion{"FREESHIP": p}}
		e := NewEvaluator(repo)

		result, err := e.EvaluateSingle(context.Background(), "FREESHIP", 7, 150_000, 12_000, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(10_000), result.TotalDiscount)
	})
}

// TestEvaluateSingle_Errors 单码模式下各种不满足条件都报错
func TestEvaluateSingle_Errors(t *testing.T) {
	now := time.Now()

	t.Run("码不存在", func(t *testing.T) {
		e := NewEvaluator(&fakeRepo{promos: map[string]*Promotion{}})
		_, err := e.EvaluateSingle(context.Background(), "NOPE", 7, 100_000, 8_000, now)
		assert.ErrorIs(t, err, ErrPromotionNotFound)
	})

	t.Run("已过期", func(t *testing.T) {
		p := activePromo("OLD", DiscountFixedAmount, 10_000)
		p.EndDate = now.Add(-time.Minute)
		e := NewEvaluator(&fakeRepo{promos: map[string]*Promotion{"OLD": p}})
		_, err := e.EvaluateSingle(context.Background(), "OLD", 7, 100_000, 8_000, now)
		assert.ErrorIs(t, err, ErrPromotionNotFound)
	})

	t.Run("总额度耗尽", func(t *testing.T) {
		p := activePromo("GONE", DiscountFixedAmount, 10_000)
		p.UsageLimitTotal = 5
		p.UsageCount = 5
		e := NewEvaluator(&fakeRepo{promos: map[string]*Promotion{"GONE": p}})
		_, err := e.EvaluateSingle(context.Background(), "GONE", 7, 100_000, 8_000, now)
		assert.ErrorIs(t, err, ErrPromotionExhausted)
	})

	t.Run("用户额度耗尽", func(t *testing.T) {
		p := activePromo("ONCE", DiscountFixedAmount, 10_000)
		p.UsageLimitUser = 1
		p.UsedBy = []Usage{{UserID: 7, UsedCount: 1}}
		e := NewEvaluator(&fakeRepo{promos: map[string]*Promotion{"ONCE": p}})
		_, err := e.EvaluateSingle(context.Background(), "ONCE", 7, 100_000, 8_000, now)
		assert.ErrorIs(t, err, ErrPromotionExhaustedForUser)

		// 别的用户不受影响
		_, err = e.EvaluateSingle(context.Background(), "ONCE", 8, 100_000, 8_000, now)
		assert.NoError(t, err)
	})

	t.Run("未达最低金额", func(t *testing.T) {
		p := activePromo("MIN", DiscountFixedAmount, 10_000)
		p.MinOrderValue = 200_000
		e := NewEvaluator(&fakeRepo{promos: map[string]*Promotion{"MIN": p}})
		_, err := e.EvaluateSingle(context.Background(), "MIN", 7, 100_000, 8_000, now)
		assert.ErrorIs(t, err, ErrMinOrderNotMet)
	})
}

// TestEvaluateList_SkipsInvalid 列表模式静默跳过无效码，有效券叠加
func TestEvaluateList_SkipsInvalid(t *testing.T) {
	now := time.Now()

	good := activePromo("GOOD", DiscountFixedAmount, 20_000)
	good.ID = 1
	exhausted := activePromo("GONE", DiscountFixedAmount, 10_000)
	exhausted.ID = 2
	exhausted.UsageLimitTotal = 1
	exhausted.UsageCount = 1
	ship := activePromo("FREESHIP", DiscountFreeShip, 0)
	ship.ID = 3

	repo := &fakeRepo{promos: map[string]*Promotion{
		"GOOD": good, "GONE": exhausted, "FREESHIP": ship,
	}}
	e := NewEvaluator(repo)

	result, err := e.EvaluateList(context.Background(),
		[]string{"GOOD", "NOPE", "GONE", "FREESHIP"}, 7, 300_000, 15_000, now)
	require.NoError(t, err)

	// GOOD(20000) + FREESHIP(15000)，NOPE和GONE被跳过
	assert.Equal(t, int64(35_000), result.TotalDiscount)
	require.Len(t, result.Applied, 2)
	assert.Equal(t, "GOOD", result.Applied[0].Code)
	assert.Equal(t, "FREESHIP", result.Applied[1].Code)
}

// TestEvaluateList_RepoErrorPropagates 仓储错误不能当作码无效吞掉
func TestEvaluateList_RepoErrorPropagates(t *testing.T) {
	dbErr := errors.New("connection refused")
	e := NewEvaluator(&fakeRepo{err: dbErr})

	_, err := e.EvaluateList(context.Background(), []string{"ANY"}, 7, 100_000, 8_000, time.Now())
	assert.ErrorIs(t, err, dbErr)
}
