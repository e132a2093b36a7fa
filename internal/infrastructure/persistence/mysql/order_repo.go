package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/zeus1411/aquastore/internal/domain/order"
	apperrors "github.com/zeus1411/aquastore/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL)
// 设计说明:
// 1. 明细/地址/优惠引用/历史作为JSON快照随订单一行写入
// 2. 事务通过context传递（订单+支付单创建跑在TxManager里）
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.New(apperrors.ErrCodeDuplicateEntry, "订单号冲突，请重试")
		}
		return apperrors.Wrap(err, "创建订单失败")
	}

	o.ID = model.ID
	return nil
}

// FindByID 根据ID查找订单
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	err := getDB(ctx, r.db).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}
	return toOrderEntity(&model)
}

// FindByOrderNo 根据订单号查找订单
func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	var model OrderModel
	err := getDB(ctx, r.db).Where("order_no = ?", orderNo).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}
	return toOrderEntity(&model)
}

// Update 更新订单（状态/支付标记/取消元数据/历史）
// 明细和地址是不可变快照，不参与更新。
func (r *orderRepository) Update(ctx context.Context, o *order.Order) error {
	result := getDB(ctx, r.db).Model(&OrderModel{}).Where("id = ?", o.ID).
		Updates(map[string]interface{}{
			"status":        string(o.Status),
			"payment_id":    o.PaymentID,
			"is_paid":       o.IsPaid,
			"paid_at":       o.PaidAt,
			"cancel_reason": o.CancelReason,
			"cancelled_at":  o.CancelledAt,
			"cancelled_by":  o.CancelledBy,
			"history":       mustJSON(o.History),
			"updated_at":    o.UpdatedAt,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单失败")
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// ListByUserID 分页查询用户订单列表（按创建时间倒序）
func (r *orderRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	var models []OrderModel
	var total int64

	db := getDB(ctx, r.db)
	query := db.Model(&OrderModel{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		o, err := toOrderEntity(&models[i])
		if err != nil {
			return nil, 0, err
		}
		orders[i] = o
	}

	return orders, total, nil
}

// toOrderModel 领域实体 → GORM模型
func toOrderModel(o *order.Order) *OrderModel {
	return &OrderModel{
		ID:           o.ID,
		OrderNo:      o.OrderNo,
		UserID:       o.UserID,
		Items:        mustJSON(o.Items),
		Subtotal:     o.Subtotal,
		ShippingFee:  o.ShippingFee,
		Discount:     o.Discount,
		Tax:          o.Tax,
		TotalPrice:   o.TotalPrice,
		Status:       string(o.Status),
		Address:      mustJSON(o.Address),
		Promotions:   mustJSON(o.Promotions),
		PaymentID:    o.PaymentID,
		Notes:        o.Notes,
		IsPaid:       o.IsPaid,
		PaidAt:       o.PaidAt,
		CancelReason: o.CancelReason,
		CancelledAt:  o.CancelledAt,
		CancelledBy:  o.CancelledBy,
		History:      mustJSON(o.History),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(model *OrderModel) (*order.Order, error) {
	o := &order.Order{
		ID:           model.ID,
		OrderNo:      model.OrderNo,
		UserID:       model.UserID,
		Subtotal:     model.Subtotal,
		ShippingFee:  model.ShippingFee,
		Discount:     model.Discount,
		Tax:          model.Tax,
		TotalPrice:   model.TotalPrice,
		Status:       order.Status(model.Status),
		PaymentID:    model.PaymentID,
		Notes:        model.Notes,
		IsPaid:       model.IsPaid,
		PaidAt:       model.PaidAt,
		CancelReason: model.CancelReason,
		CancelledAt:  model.CancelledAt,
		CancelledBy:  model.CancelledBy,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}

	if err := fromJSON(model.Items, &o.Items); err != nil {
		return nil, apperrors.Wrap(err, "解析订单明细失败")
	}
	if err := fromJSON(model.Address, &o.Address); err != nil {
		return nil, apperrors.Wrap(err, "解析收货地址失败")
	}
	if err := fromJSON(model.Promotions, &o.Promotions); err != nil {
		return nil, apperrors.Wrap(err, "解析优惠券引用失败")
	}
	if err := fromJSON(model.History, &o.History); err != nil {
		return nil, apperrors.Wrap(err, "解析状态历史失败")
	}

	return o, nil
}
