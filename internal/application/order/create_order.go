package order

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/zeus1411/aquastore/internal/domain/cart"
	"github.com/zeus1411/aquastore/internal/domain/order"
	"github.com/zeus1411/aquastore/internal/domain/payment"
	"github.com/zeus1411/aquastore/internal/domain/promotion"
	"github.com/zeus1411/aquastore/internal/domain/shipping"
	"github.com/zeus1411/aquastore/internal/infrastructure/gateway/vnpay"
	apperrors "github.com/zeus1411/aquastore/pkg/errors"
	"github.com/zeus1411/aquastore/pkg/metrics"
	"github.com/zeus1411/aquastore/pkg/tracing"
)

// TxManager 事务边界接口（mysql.TxManager实现）
// 订单+支付单的创建/联动更新跑在同一事务里。
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Gateway 支付网关接口（vnpay.Client实现）
type Gateway interface {
	BuildPaymentURL(req vnpay.PaymentRequest) (string, error)
	VerifyCallback(query url.Values) *vnpay.CallbackResult
}

// CreateOrderUseCase 创建订单用例
// 整个项目最核心的用例：购物车校验 → 库存校验 → 优惠计算 →
// 运费计算 → 按支付方式分支（COD立即提交 / 网关暂存跳转）。
//
// 关键不变量：
// 1. 所有校验先于第一笔变更——绝不能扣了库存才发现校验失败
// 2. 金额全部服务端重算，客户端提交的金额一概不信
// 3. 网关分支在回调确认前不落任何持久化记录、不消耗优惠额度
type CreateOrderUseCase struct {
	cartRepo      cart.Repository
	stock         *StockEngine
	evaluator     *promotion.Evaluator
	promotionRepo promotion.Repository
	orderRepo     order.Repository
	paymentRepo   payment.Repository
	txManager     TxManager
	staging       order.Staging
	gateway       Gateway
	notifier      *Notifier
}

// NewCreateOrderUseCase 创建下单用例
func NewCreateOrderUseCase(
	cartRepo cart.Repository,
	stock *StockEngine,
	evaluator *promotion.Evaluator,
	promotionRepo promotion.Repository,
	orderRepo order.Repository,
	paymentRepo payment.Repository,
	txManager TxManager,
	staging order.Staging,
	gateway Gateway,
	notifier *Notifier,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		cartRepo:      cartRepo,
		stock:         stock,
		evaluator:     evaluator,
		promotionRepo: promotionRepo,
		orderRepo:     orderRepo,
		paymentRepo:   paymentRepo,
		txManager:     txManager,
		staging:       staging,
		gateway:       gateway,
		notifier:      notifier,
	}
}

// CreateOrderRequest 下单请求DTO
// PromotionCodes非空时优先于PromotionCode（列表宽容模式 vs 单码严格模式）。
type CreateOrderRequest struct {
	UserID         uint
	Address        order.ShippingAddress
	PaymentMethod  string // COD | VNPAY
	PromotionCode  string
	PromotionCodes []string
	Notes          string
	ClientIP       string
}

// CreateOrderResponse 下单响应DTO
// 网关分支只有PaymentURL和TransactionRef（订单尚未存在）。
type CreateOrderResponse struct {
	Order          *order.Order     `json:"order,omitempty"`
	Payment        *payment.Payment `json:"payment,omitempty"`
	PaymentURL     string           `json:"paymentUrl,omitempty"`
	TransactionRef string           `json:"transactionRef,omitempty"`
}

// Execute 执行下单用例
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "order", "CreateOrder")
	defer span.End()

	start := time.Now()
	resp, err := uc.execute(ctx, req)
	if err != nil {
		metrics.IncCounter(metrics.OrdersFailedTotal)
		return nil, err
	}
	metrics.ObserveHistogram(metrics.OrderCreationDuration, time.Since(start).Seconds())
	return resp, nil
}

func (uc *CreateOrderUseCase) execute(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	// 1. 地址校验（列出所有缺失字段，一次反馈）
	if missing := req.Address.Validate(); len(missing) > 0 {
		return nil, order.ErrMissingAddressFields(missing)
	}

	method := payment.Method(req.PaymentMethod)
	if method != payment.MethodCOD && method != payment.MethodVNPay {
		return nil, apperrors.Newf(apperrors.ErrCodeInvalidParams, "不支持的支付方式: %s", req.PaymentMethod)
	}

	// 2. 加载购物车
	c, err := uc.cartRepo.FindByUserID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, cart.ErrEmptyCart
	}

	// 3. 库存校验（只读）+ 明细快照 + 服务端重算小计
	items, subtotal, err := uc.stock.Validate(ctx, c.Items)
	if err != nil {
		return nil, err
	}

	// 4. 运费
	shippingFee := shipping.Fee(subtotal)

	// 5. 优惠计算（运费已算出，FREE_SHIPPING类型依赖它）
	promoResult, err := uc.evaluatePromotions(ctx, req, subtotal, shippingFee)
	if err != nil {
		return nil, err
	}

	// 6. 总价
	payload := order.StagedPayload{
		UserID:      req.UserID,
		Items:       items,
		Subtotal:    subtotal,
		ShippingFee: shippingFee,
		Discount:    promoResult.TotalDiscount,
		TotalPrice:  subtotal + shippingFee - promoResult.TotalDiscount,
		Address:     req.Address,
		Promotions:  toPromotionRefs(promoResult.Applied),
		Notes:       req.Notes,
	}

	// 7. 按支付方式分支
	if method == payment.MethodVNPay {
		return uc.stageForGateway(ctx, payload, req.ClientIP)
	}
	return uc.commitCOD(ctx, payload)
}

// commitCOD COD分支：立即执行提交序列，订单PENDING未支付，支付单PROCESSING
func (uc *CreateOrderUseCase) commitCOD(ctx context.Context, payload order.StagedPayload) (*CreateOrderResponse, error) {
	o, p, err := uc.commitOrder(ctx, payload, payment.MethodCOD, payment.GenerateTransactionRef(), nil)
	if err != nil {
		return nil, err
	}
	metrics.IncCounterVec(metrics.OrdersCreatedTotal, map[string]string{"method": string(payment.MethodCOD)})
	return &CreateOrderResponse{Order: o, Payment: p}, nil
}

// stageForGateway 网关分支：暂存载荷 + 构造跳转URL
// 不落订单、不落支付单、不动库存、不记优惠券用量。
func (uc *CreateOrderUseCase) stageForGateway(ctx context.Context, payload order.StagedPayload, clientIP string) (*CreateOrderResponse, error) {
	ref := payment.GenerateTransactionRef()

	if _, err := uc.staging.Put(ctx, ref, payload); err != nil {
		return nil, err
	}

	payURL, err := uc.gateway.BuildPaymentURL(vnpay.PaymentRequest{
		Amount:    payload.TotalPrice,
		TxnRef:    ref,
		OrderInfo: fmt.Sprintf("Thanh toan don hang %s", ref),
		ClientIP:  clientIP,
	})
	if err != nil {
		// URL都建不出来，暂存条目没有存在意义
		_, _ = uc.staging.Remove(ctx, ref)
		return nil, apperrors.Wrap(err, "构造支付跳转链接失败")
	}

	return &CreateOrderResponse{PaymentURL: payURL, TransactionRef: ref}, nil
}

// commitOrder 提交序列（COD与网关回调成功共用）
//
// 顺序：扣库存 → [事务]建订单+建支付单 → 记优惠券用量 → 清购物车。
// 扣库存在事务外（逐行原子UPDATE，见StockEngine），事务失败时
// 显式回补；库存与订单之间没有跨步事务，这是既有设计的已知局限。
// detail非nil表示网关已确认支付：订单直接CONFIRMED+已支付，
// 支付单COMPLETED——支付与订单的状态耦合在同一事务内完成。
func (uc *CreateOrderUseCase) commitOrder(ctx context.Context, payload order.StagedPayload, method payment.Method, txnRef string, detail *payment.GatewayDetail) (*order.Order, *payment.Payment, error) {
	// 1. 扣减库存（Saga内部处理行间补偿）
	if err := uc.stock.Commit(ctx, payload.Items); err != nil {
		return nil, nil, err
	}

	// 2. 订单+支付单，同一事务
	o := order.NewOrder(order.GenerateOrderNo(), payload.UserID, payload.Items,
		payload.Address, payload.Subtotal, payload.ShippingFee, payload.Discount,
		payload.Promotions, payload.Notes)

	var p *payment.Payment
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if detail != nil {
			if err := o.ConfirmPayment(); err != nil {
				return err
			}
		}
		if err := uc.orderRepo.Create(txCtx, o); err != nil {
			return err
		}

		p = payment.NewPayment(txnRef, o.ID, payload.UserID, method, payload.TotalPrice)
		if detail != nil {
			if err := p.MarkCompleted(*detail); err != nil {
				return err
			}
		}
		if err := uc.paymentRepo.Create(txCtx, p); err != nil {
			return err
		}

		o.PaymentID = p.ID
		return uc.orderRepo.Update(txCtx, o)
	})
	if err != nil {
		// 事务回滚后库存已扣，显式回补
		uc.stock.Rollback(ctx, payload.Items)
		return nil, nil, err
	}

	// 3. 优惠券用量记账（订单已落库，失败只记日志，不能再撤单）
	for _, ref := range payload.Promotions {
		if err := uc.promotionRepo.RecordUsage(ctx, ref.PromotionID, payload.UserID); err != nil {
			log.Printf("[order] 优惠券用量记账失败 order=%s promotion=%d: %v", o.OrderNo, ref.PromotionID, err)
		}
	}

	// 4. 清空购物车
	if err := uc.cartRepo.Clear(ctx, payload.UserID); err != nil {
		log.Printf("[order] 清空购物车失败 user=%d: %v", payload.UserID, err)
	}

	// 5. 通知扇出（响应返回后异步执行，失败不影响下单）
	if uc.notifier != nil {
		go uc.notifier.NotifyOrderCreated(context.Background(), o)
	}

	return o, p, nil
}

// evaluatePromotions 按模式计算优惠：列表优先于单码，都为空返回零优惠
func (uc *CreateOrderUseCase) evaluatePromotions(ctx context.Context, req CreateOrderRequest, subtotal, shippingFee int64) (*promotion.Result, error) {
	now := time.Now()
	if len(req.PromotionCodes) > 0 {
		return uc.evaluator.EvaluateList(ctx, req.PromotionCodes, req.UserID, subtotal, shippingFee, now)
	}
	if req.PromotionCode != "" {
		return uc.evaluator.EvaluateSingle(ctx, req.PromotionCode, req.UserID, subtotal, shippingFee, now)
	}
	return &promotion.Result{}, nil
}

// toPromotionRefs 优惠计算结果 → 订单优惠引用
func toPromotionRefs(applied []promotion.AppliedPromotion) []order.PromotionRef {
	if len(applied) == 0 {
		return nil
	}
	refs := make([]order.PromotionRef, len(applied))
	for i, a := range applied {
		refs[i] = order.PromotionRef{PromotionID: a.PromotionID, Code: a.Code}
	}
	return refs
}
