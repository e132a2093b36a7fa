package order

import (
	"context"

	"github.com/zeus1411/aquastore/internal/domain/order"
	"github.com/zeus1411/aquastore/internal/domain/payment"
	"github.com/zeus1411/aquastore/pkg/metrics"
	"github.com/zeus1411/aquastore/pkg/tracing"
)

// CancelOrderUseCase 取消订单用例
//
// 取消顺序：状态流转+支付单联动（同一事务）→ 事务外回补库存。
// 库存回补逐行容错（商品可能已被删除），个别行补不回去
// 只记日志，取消本身总能完成。
type CancelOrderUseCase struct {
	orderRepo   order.Repository
	paymentRepo payment.Repository
	txManager   TxManager
	stock       *StockEngine
}

// NewCancelOrderUseCase 创建取消订单用例
func NewCancelOrderUseCase(orderRepo order.Repository, paymentRepo payment.Repository, txManager TxManager, stock *StockEngine) *CancelOrderUseCase {
	return &CancelOrderUseCase{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		txManager:   txManager,
		stock:       stock,
	}
}

// CancelOrderRequest 取消订单请求
type CancelOrderRequest struct {
	OrderID uint
	UserID  uint
	IsAdmin bool
	Reason  string
}

// Execute 取消订单
// 只有PENDING/CONFIRMED/FAILED可取消；买家只能取消自己的订单，
// 管理员可取消任意订单。
func (uc *CancelOrderUseCase) Execute(ctx context.Context, req CancelOrderRequest) (*order.Order, error) {
	ctx, span := tracing.StartSpan(ctx, "order", "CancelOrder")
	defer span.End()

	o, err := uc.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !req.IsAdmin && !o.IsOwnedBy(req.UserID) {
		return nil, order.ErrNotOrderOwner
	}

	if err := o.Cancel(req.Reason, req.UserID); err != nil {
		return nil, err
	}

	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.orderRepo.Update(txCtx, o); err != nil {
			return err
		}

		// 支付单联动：未完成的支付单标记取消；已完成的（COD送达前取消等
		// 退款场景）保持原状，退款流程另行处理
		p, err := uc.paymentRepo.FindByOrderID(txCtx, o.ID)
		if err != nil {
			return err
		}
		if p != nil && p.Status != payment.StatusCompleted {
			if err := p.MarkCancelled(); err != nil {
				return err
			}
			return uc.paymentRepo.Update(txCtx, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 事务提交后回补库存（逐行容错，见StockEngine.Rollback）
	uc.stock.Rollback(ctx, o.Items)

	metrics.IncCounter(metrics.OrdersCancelledTotal)
	return o, nil
}
