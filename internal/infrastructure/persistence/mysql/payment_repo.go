package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/zeus1411/aquastore/internal/domain/payment"
	apperrors "github.com/zeus1411/aquastore/pkg/errors"
)

// paymentRepository 支付单仓储实现(MySQL)
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付单仓储
func NewPaymentRepository(db *gorm.DB) payment.Repository {
	return &paymentRepository{db: db}
}

// Create 创建支付单
func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	model := toPaymentModel(p)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.New(apperrors.ErrCodeDuplicateEntry, "交易引用冲突，请重试")
		}
		return apperrors.Wrap(err, "创建支付单失败")
	}

	p.ID = model.ID
	return nil
}

// FindByID 根据ID查找支付单
func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*payment.Payment, error) {
	var model PaymentModel
	err := getDB(ctx, r.db).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, apperrors.Wrap(err, "查询支付单失败")
	}
	return toPaymentEntity(&model)
}

// FindByOrderID 根据订单ID查找支付单，不存在返回nil, nil
func (r *paymentRepository) FindByOrderID(ctx context.Context, orderID uint) (*payment.Payment, error) {
	var model PaymentModel
	err := getDB(ctx, r.db).Where("order_id = ?", orderID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "查询支付单失败")
	}
	return toPaymentEntity(&model)
}

// FindByTransactionRef 根据交易引用查找支付单
func (r *paymentRepository) FindByTransactionRef(ctx context.Context, ref string) (*payment.Payment, error) {
	var model PaymentModel
	err := getDB(ctx, r.db).Where("transaction_ref = ?", ref).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, apperrors.Wrap(err, "查询支付单失败")
	}
	return toPaymentEntity(&model)
}

// Update 更新支付单（状态/网关明细）
func (r *paymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	result := getDB(ctx, r.db).Model(&PaymentModel{}).Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"order_id":     p.OrderID,
			"status":       string(p.Status),
			"detail":       mustJSON(p.Detail),
			"processed_at": p.ProcessedAt,
			"updated_at":   p.UpdatedAt,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新支付单失败")
	}
	if result.RowsAffected == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}

// toPaymentModel 领域实体 → GORM模型
func toPaymentModel(p *payment.Payment) *PaymentModel {
	return &PaymentModel{
		ID:             p.ID,
		TransactionRef: p.TransactionRef,
		OrderID:        p.OrderID,
		UserID:         p.UserID,
		Method:         string(p.Method),
		Status:         string(p.Status),
		Amount:         p.Amount,
		Detail:         mustJSON(p.Detail),
		ProcessedAt:    p.ProcessedAt,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// toPaymentEntity GORM模型 → 领域实体
func toPaymentEntity(model *PaymentModel) (*payment.Payment, error) {
	p := &payment.Payment{
		ID:             model.ID,
		TransactionRef: model.TransactionRef,
		OrderID:        model.OrderID,
		UserID:         model.UserID,
		Method:         payment.Method(model.Method),
		Status:         payment.Status(model.Status),
		Amount:         model.Amount,
		ProcessedAt:    model.ProcessedAt,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
	if err := fromJSON(model.Detail, &p.Detail); err != nil {
		return nil, apperrors.Wrap(err, "解析支付明细失败")
	}
	return p, nil
}
