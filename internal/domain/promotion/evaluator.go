package promotion

import (
	"context"
	"time"
)

// AppliedPromotion 实际生效的优惠券引用（用于订单落库后记账）
type AppliedPromotion struct {
	PromotionID uint
	Code        string
}

// Result 优惠计算结果
// 只是计算，不产生副作用；使用量在订单提交成功后由调用方记账。
type Result struct {
	TotalDiscount int64
	Applied       []AppliedPromotion
}

// Evaluator 优惠券计算器（领域服务）
//
// 两种模式，错误语义不同:
// 1. 单码模式（EvaluateSingle）：码无效/过期/不满足门槛/额度耗尽 -> 返回错误
// 2. 列表模式（EvaluateList）：同样的问题 -> 静默跳过该码，继续算下一个
//
// 这种不对称是刻意保留的：批量应用宽容（购物车页自动试多张券），
// 单码显式输入严格（用户手输的码失败要给出原因）。
type Evaluator struct {
	repo Repository
}

// NewEvaluator 创建优惠券计算器
func NewEvaluator(repo Repository) *Evaluator {
	return &Evaluator{repo: repo}
}

// EvaluateSingle 严格计算单个优惠码，任何不满足条件的情况都返回错误
func (e *Evaluator) EvaluateSingle(ctx context.Context, code string, userID uint, subtotal, shippingFee int64, now time.Time) (*Result, error) {
	p, err := e.lookup(ctx, code, now)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPromotionNotFound
	}

	if p.IsExhausted() {
		return nil, ErrPromotionExhausted
	}
	if p.IsExhaustedForUser(userID) {
		return nil, ErrPromotionExhaustedForUser
	}
	if !p.MeetsMinOrder(subtotal) {
		return nil, ErrMinOrderNotMet
	}

	return &Result{
		TotalDiscount: p.Discount(subtotal, shippingFee),
		Applied:       []AppliedPromotion{{PromotionID: p.ID, Code: p.Code}},
	}, nil
}

// EvaluateList 宽容计算优惠码列表，无效/不满足条件的码静默跳过
// 多张有效券的优惠金额叠加。
func (e *Evaluator) EvaluateList(ctx context.Context, codes []string, userID uint, subtotal, shippingFee int64, now time.Time) (*Result, error) {
	result := &Result{}

	for _, code := range codes {
		p, err := e.lookup(ctx, code, now)
		if err != nil {
			// 仓储错误不能吞掉（数据库故障不等于码无效）
			return nil, err
		}
		if p == nil {
			continue
		}
		if p.IsExhausted() || p.IsExhaustedForUser(userID) || !p.MeetsMinOrder(subtotal) {
			continue
		}

		result.TotalDiscount += p.Discount(subtotal, shippingFee)
		result.Applied = append(result.Applied, AppliedPromotion{PromotionID: p.ID, Code: p.Code})
	}

	return result, nil
}

// lookup 查找优惠码并过滤未激活/不在有效期的券（返回nil表示不可用）
func (e *Evaluator) lookup(ctx context.Context, code string, now time.Time) (*Promotion, error) {
	p, err := e.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive || !p.IsWithinPeriod(now) {
		return nil, nil
	}
	return p, nil
}
