package order

import (
	"context"
	"log"
	"net/url"

	"github.com/zeus1411/aquastore/internal/domain/order"
	"github.com/zeus1411/aquastore/internal/domain/payment"
	"github.com/zeus1411/aquastore/pkg/metrics"
	"github.com/zeus1411/aquastore/pkg/tracing"
)

// CallbackOutcome 网关回调的处理结果分类
// 用作gateway_callbacks_total指标的result标签，也决定跳转页文案。
type CallbackOutcome string

const (
	// OutcomeSuccess 支付成功，订单已创建
	OutcomeSuccess CallbackOutcome = "success"
	// OutcomeFailure 网关返回失败/取消，暂存已丢弃
	OutcomeFailure CallbackOutcome = "failure"
	// OutcomeInvalidSignature 签名校验不通过，回调被忽略
	OutcomeInvalidSignature CallbackOutcome = "invalid_signature"
	// OutcomeStale 暂存不存在或已被消费（过期/重复回调），幂等空操作
	OutcomeStale CallbackOutcome = "stale"
)

// CallbackResult 回调处理结果（交给handler构造跳转）
type CallbackResult struct {
	Outcome      CallbackOutcome
	Order        *order.Order
	TxnRef       string
	ResponseCode string
}

// PaymentCallbackUseCase 支付网关回调用例
//
// 回调是网关分支里唯一的提交入口，语义上必须满足：
// 1. 先验签：签名不过的请求一律忽略，不读暂存
// 2. 暂存条目是一次性令牌：Remove返回"确实删掉了"才允许提交，
//    并发重复回调最多只有一个能走到提交序列（幂等）
// 3. 过期/陌生的回调是无害空操作，返回stale而不是错误
// 4. 失败码回调丢弃暂存即可，不产生任何持久化记录
type PaymentCallbackUseCase struct {
	creator *CreateOrderUseCase
	staging order.Staging
	gateway Gateway
}

// NewPaymentCallbackUseCase 创建回调用例
// 提交序列与COD分支共用（creator.commitOrder）。
func NewPaymentCallbackUseCase(creator *CreateOrderUseCase, staging order.Staging, gateway Gateway) *PaymentCallbackUseCase {
	return &PaymentCallbackUseCase{creator: creator, staging: staging, gateway: gateway}
}

// Execute 处理网关回调
// 业务上的失败（验签不过、暂存缺失、网关失败码）通过Outcome表达，
// error只留给基础设施故障（存储/数据库不可用）。
func (uc *PaymentCallbackUseCase) Execute(ctx context.Context, query url.Values) (*CallbackResult, error) {
	ctx, span := tracing.StartSpan(ctx, "order", "PaymentCallback")
	defer span.End()

	// 1. 验签
	verified := uc.gateway.VerifyCallback(query)
	if !verified.IsVerified {
		metrics.IncCounterVec(metrics.GatewayCallbacksTotal, map[string]string{"result": string(OutcomeInvalidSignature)})
		log.Printf("[callback] 签名校验失败 ref=%s", verified.TxnRef)
		return &CallbackResult{Outcome: OutcomeInvalidSignature, TxnRef: verified.TxnRef}, nil
	}

	// 2. 读暂存：缺失即过期或已消费，幂等返回
	staged, err := uc.staging.Get(ctx, verified.TxnRef)
	if err != nil {
		return nil, err
	}
	if staged == nil {
		metrics.IncCounterVec(metrics.GatewayCallbacksTotal, map[string]string{"result": string(OutcomeStale)})
		return &CallbackResult{Outcome: OutcomeStale, TxnRef: verified.TxnRef, ResponseCode: verified.ResponseCode}, nil
	}

	// 3. 网关失败码：丢弃暂存，不落任何记录
	if !verified.IsSuccess() {
		if _, err := uc.staging.Remove(ctx, verified.TxnRef); err != nil {
			return nil, err
		}
		metrics.IncCounterVec(metrics.GatewayCallbacksTotal, map[string]string{"result": string(OutcomeFailure)})
		log.Printf("[callback] 支付失败 ref=%s code=%s", verified.TxnRef, verified.ResponseCode)
		return &CallbackResult{Outcome: OutcomeFailure, TxnRef: verified.TxnRef, ResponseCode: verified.ResponseCode}, nil
	}

	// 4. 金额核对：回调金额必须等于暂存时服务端算出的总价
	if verified.Amount != staged.Payload.TotalPrice {
		if _, err := uc.staging.Remove(ctx, verified.TxnRef); err != nil {
			return nil, err
		}
		metrics.IncCounterVec(metrics.GatewayCallbacksTotal, map[string]string{"result": string(OutcomeFailure)})
		log.Printf("[callback] 金额不一致 ref=%s 回调=%d 暂存=%d", verified.TxnRef, verified.Amount, staged.Payload.TotalPrice)
		return &CallbackResult{Outcome: OutcomeFailure, TxnRef: verified.TxnRef, ResponseCode: verified.ResponseCode}, nil
	}

	// 5. 消费一次性令牌：Remove返回false说明并发回调已抢先，让位
	existed, err := uc.staging.Remove(ctx, verified.TxnRef)
	if err != nil {
		return nil, err
	}
	if !existed {
		metrics.IncCounterVec(metrics.GatewayCallbacksTotal, map[string]string{"result": string(OutcomeStale)})
		return &CallbackResult{Outcome: OutcomeStale, TxnRef: verified.TxnRef, ResponseCode: verified.ResponseCode}, nil
	}

	// 6. 提交：订单直接CONFIRMED+已支付，支付单COMPLETED带网关明细
	detail := &payment.GatewayDetail{
		TransactionNo: verified.TransactionNo,
		ResponseCode:  verified.ResponseCode,
		BankCode:      verified.BankCode,
	}
	o, _, err := uc.creator.commitOrder(ctx, staged.Payload, payment.MethodVNPay, verified.TxnRef, detail)
	if err != nil {
		// 令牌已消费但提交失败：库存已由commitOrder回补，
		// 买家侧表现为支付成功但订单缺失，靠对账兜底
		log.Printf("[callback] 提交订单失败 ref=%s: %v", verified.TxnRef, err)
		return nil, err
	}

	metrics.IncCounterVec(metrics.OrdersCreatedTotal, map[string]string{"method": string(payment.MethodVNPay)})
	metrics.IncCounterVec(metrics.GatewayCallbacksTotal, map[string]string{"result": string(OutcomeSuccess)})
	return &CallbackResult{
		Outcome:      OutcomeSuccess,
		Order:        o,
		TxnRef:       verified.TxnRef,
		ResponseCode: verified.ResponseCode,
	}, nil
}
