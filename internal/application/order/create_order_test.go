package order

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeus1411/aquastore/internal/domain/cart"
	"github.com/zeus1411/aquastore/internal/domain/order"
	"github.com/zeus1411/aquastore/internal/domain/payment"
	"github.com/zeus1411/aquastore/internal/domain/promotion"
	apperrors "github.com/zeus1411/aquastore/pkg/errors"
)

// COD下单：125000×2=250000，运费档8%→20000，总价270000
func TestCreateOrder_COD(t *testing.T) {
	f := newFixture()
	f.cartRepo.items[100] = []cart.Item{{ProductID: 1, Quantity: 2}}

	resp, err := f.create.Execute(context.Background(), CreateOrderRequest{
		UserID:        100,
		Address:       validAddress(),
		PaymentMethod: "COD",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Order)
	require.NotNil(t, resp.Payment)

	o := resp.Order
	assert.Equal(t, order.StatusPending, o.Status)
	assert.False(t, o.IsPaid)
	assert.Equal(t, int64(250000), o.Subtotal)
	assert.Equal(t, int64(20000), o.ShippingFee)
	assert.Equal(t, int64(0), o.Discount)
	assert.Equal(t, int64(270000), o.TotalPrice)
	assert.Len(t, o.Items, 1)
	assert.Equal(t, "黑木蕨水草", o.Items[0].ProductName)
	assert.Equal(t, int64(125000), o.Items[0].UnitPrice)

	// 支付单：COD直接PROCESSING，金额等于订单总价
	p := resp.Payment
	assert.Equal(t, payment.MethodCOD, p.Method)
	assert.Equal(t, payment.StatusProcessing, p.Status)
	assert.Equal(t, int64(270000), p.Amount)
	assert.Equal(t, o.ID, p.OrderID)
	assert.Equal(t, p.ID, o.PaymentID)

	// 副作用：库存扣减+销量递增+购物车清空
	assert.Equal(t, 8, f.productRepo.products[1].Stock)
	assert.Equal(t, 2, f.productRepo.products[1].SoldCount)
	assert.True(t, f.cartRepo.cleared[100])
	assert.Empty(t, f.staging.entries)
}

// 百分比券封顶：500000小计，10%=50000封顶到40000，总价485000
func TestCreateOrder_PercentageCapped(t *testing.T) {
	f := newFixture()
	f.cartRepo.items[100] = []cart.Item{{ProductID: 2, Quantity: 1}}

	resp, err := f.create.Execute(context.Background(), CreateOrderRequest{
		UserID:        100,
		Address:       validAddress(),
		PaymentMethod: "COD",
		PromotionCode: "PERCENT10",
	})
	require.NoError(t, err)

	o := resp.Order
	assert.Equal(t, int64(500000), o.Subtotal)
	assert.Equal(t, int64(25000), o.ShippingFee) // 300k-599k档5%
	assert.Equal(t, int64(40000), o.Discount)
	assert.Equal(t, int64(485000), o.TotalPrice)
	require.Len(t, o.Promotions, 1)
	assert.Equal(t, "PERCENT10", o.Promotions[0].Code)

	// 用量只记一次
	require.Len(t, f.promotionRepo.usages, 1)
	assert.Equal(t, uint(1), f.promotionRepo.usages[0].promotionID)
	assert.Equal(t, uint(100), f.promotionRepo.usages[0].userID)
}

// 免运费券：150000小计，运费8%→12000，优惠=运费，总价等于小计
func TestCreateOrder_FreeShipping(t *testing.T) {
	f := newFixture()
	f.cartRepo.items[100] = []cart.Item{{ProductID: 3, Quantity: 1}}

	resp, err := f.create.Execute(context.Background(), CreateOrderRequest{
		UserID:        100,
		Address:       validAddress(),
		PaymentMethod: "COD",
		PromotionCode: "FREESHIP",
	})
	require.NoError(t, err)

	o := resp.Order
	assert.Equal(t, int64(150000), o.Subtotal)
	assert.Equal(t, int64(12000), o.ShippingFee)
	assert.Equal(t, int64(12000), o.Discount)
	assert.Equal(t, int64(150000), o.TotalPrice)
}

// 规格商品：走规格价/规格库存，快照SKU取规格SKU
func TestCreateOrder_VariantLine(t *testing.T) {
	f := newFixture()
	f.cartRepo.items[100] = []cart.Item{{ProductID: 4, VariantID: 41, Quantity: 2}}

	resp, err := f.create.Execute(context.Background(), CreateOrderRequest{
		UserID:        100,
		Address:       validAddress(),
		PaymentMethod: "COD",
	})
	require.NoError(t, err)

	o := resp.Order
	assert.Equal(t, int64(700000), o.Subtotal)
	require.NotNil(t, o.Items[0].Variant)
	assert.Equal(t, uint(41), o.Items[0].Variant.VariantID)
	assert.Equal(t, "AQ-CO2-1L", o.Items[0].SKU)
	assert.Equal(t, 6, f.productRepo.products[4].Variants[0].Stock)
}

// 网关分支：只暂存+返回跳转URL，不落任何持久化记录
func TestCreateOrder_VNPayStaged(t *testing.T) {
	f := newFixture()
	f.cartRepo.items[100] = []cart.Item{{ProductID: 1, Quantity: 2}}

	resp, err := f.create.Execute(context.Background(), CreateOrderRequest{
		UserID:        100,
		Address:       validAddress(),
		PaymentMethod: "VNPAY",
		PromotionCode: "PERCENT10",
		ClientIP:      "203.0.113.5",
	})
	require.NoError(t, err)

	assert.Nil(t, resp.Order)
	assert.Nil(t, resp.Payment)
	assert.NotEmpty(t, resp.PaymentURL)
	assert.NotEmpty(t, resp.TransactionRef)

	// 暂存条目带服务端算好的全部金额
	staged := f.staging.entries[resp.TransactionRef]
	require.NotNil(t, staged)
	assert.Equal(t, int64(250000), staged.Payload.Subtotal)
	assert.Equal(t, int64(20000), staged.Payload.ShippingFee)
	assert.Equal(t, int64(25000), staged.Payload.Discount) // 10%未触顶
	assert.Equal(t, int64(245000), staged.Payload.TotalPrice)

	// 确认前零副作用
	assert.Empty(t, f.orderRepo.orders)
	assert.Empty(t, f.paymentRepo.payments)
	assert.Equal(t, 10, f.productRepo.products[1].Stock)
	assert.False(t, f.cartRepo.cleared[100])
	assert.Empty(t, f.promotionRepo.usages)
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	f := newFixture()

	_, err := f.create.Execute(context.Background(), CreateOrderRequest{
		UserID:        100,
		Address:       validAddress(),
		PaymentMethod: "COD",
	})
	assert.ErrorIs(t, err, cart.ErrEmptyCart)
}

func TestCreateOrder_MissingAddressFields(t *testing.T) {
	f := newFixture()
	f.cartRepo.items[100] = []cart.Item{{ProductID: 1, Quantity: 1}}

	addr := validAddress()
	addr.Phone = ""
	addr.City = "  "
	_, err := f.create.Execute(context.Background(), CreateOrderRequest{
		UserID:        100,
		Address:       addr,
		PaymentMethod: "COD",
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrCodeInvalidParams, appErr.Code)
	assert.Contains(t, appErr.Message, "phone")
	assert.Contains(t, appErr.Message, "city")
}

func TestCreateOrder_UnsupportedMethod(t *testing.T) {
	f := newFixture()
	f.cartRepo.items[100] = []cart.Item{{ProductID: 1, Quantity: 1}}

	_, err := f.create.Execute(context.Background(), CreateOrderRequest{
		UserID:        100,
		Address:       validAddress(),
		PaymentMethod: "BITCOIN",
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrCodeInvalidParams, appErr.Code)
}

// 第二行库存不足时整单失败，第一行绝不能已被扣减
func TestCreateOrder_ValidationBeforeMutation(t *testing.T) {
	f := newFixture()
	f.cartRepo.items[100] = []cart.Item{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 99},
	}

	_, err := f.create.Execute(context.Background(), CreateOrderRequest{
		UserID:        100,
		Address:       validAddress(),
		PaymentMethod: "COD",
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrCodeInsufficientStock, appErr.Code)
	assert.Contains(t, appErr.Message, "超白玻璃鱼缸")

	assert.Equal(t, 10, f.productRepo.products[1].Stock)
	assert.Equal(t, 5, f.productRepo.products[2].Stock)
	assert.Empty(t, f.orderRepo.orders)
	assert.False(t, f.cartRepo.cleared[100])
}

// 订单落库失败时已扣的库存必须回补
func TestCreateOrder_TxFailureRestoresStock(t *testing.T) {
	f := newFixture()
	f.cartRepo.items[100] = []cart.Item{{ProductID: 1, Quantity: 3}}
	f.orderRepo.createErr = errors.New("db down")

	_, err := f.create.Execute(context.Background(), CreateOrderRequest{
		UserID:        100,
		Address:       validAddress(),
		PaymentMethod: "COD",
	})
	require.Error(t, err)

	assert.Equal(t, 10, f.productRepo.products[1].Stock)
	assert.Equal(t, 0, f.productRepo.products[1].SoldCount)
	assert.Empty(t, f.paymentRepo.payments)
	assert.False(t, f.cartRepo.cleared[100])
	assert.Empty(t, f.promotionRepo.usages)
}

// 第二行扣减失败时第一行的扣减走补偿回补，订单不落库
func TestCreateOrder_PartialStockFailureCompensates(t *testing.T) {
	f := newFixture()
	f.cartRepo.items[100] = []cart.Item{
		{ProductID: 1, Quantity: 2},
		{ProductID: 3, Quantity: 1},
	}
	f.productRepo.failStockUpdate = 3

	_, err := f.create.Execute(context.Background(), CreateOrderRequest{
		UserID:        100,
		Address:       validAddress(),
		PaymentMethod: "COD",
	})
	require.Error(t, err)

	assert.Equal(t, 10, f.productRepo.products[1].Stock, "已扣的第一行应被补偿回补")
	assert.Equal(t, 0, f.productRepo.products[1].SoldCount)
	assert.Equal(t, 20, f.productRepo.products[3].Stock)
	assert.Empty(t, f.orderRepo.orders)
	assert.Empty(t, f.paymentRepo.payments)
	assert.False(t, f.cartRepo.cleared[100])
}

// 单码严格模式：过期券直接拒单
func TestCreateOrder_SingleCodeStrict(t *testing.T) {
	f := newFixture()
	f.cartRepo.items[100] = []cart.Item{{ProductID: 1, Quantity: 1}}

	_, err := f.create.Execute(context.Background(), CreateOrderRequest{
		UserID:        100,
		Address:       validAddress(),
		PaymentMethod: "COD",
		PromotionCode: "EXPIRED",
	})
	require.Error(t, err)
	assert.Empty(t, f.orderRepo.orders)
}

// 每用户限用1次：第二单同码被拒，换用户不受影响
func TestCreateOrder_PerUserUsageLimit(t *testing.T) {
	f := newFixture()
	f.promotionRepo.promos["PERCENT10"].UsageLimitUser = 1

	order1 := CreateOrderRequest{
		UserID:        100,
		Address:       validAddress(),
		PaymentMethod: "COD",
		PromotionCode: "PERCENT10",
	}
	f.cartRepo.items[100] = []cart.Item{{ProductID: 3, Quantity: 1}}
	_, err := f.create.Execute(context.Background(), order1)
	require.NoError(t, err)

	// 记账写回usedBy，第二次校验失败
	f.promotionRepo.promos["PERCENT10"].UsedBy = []promotion.Usage{{UserID: 100, UsedCount: 1}}
	f.cartRepo.items[100] = []cart.Item{{ProductID: 3, Quantity: 1}}
	_, err = f.create.Execute(context.Background(), order1)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodePromotionExhausted, appErr.Code)

	// 其他用户不受影响
	f.cartRepo.items[200] = []cart.Item{{ProductID: 3, Quantity: 1}}
	order2 := order1
	order2.UserID = 200
	_, err = f.create.Execute(context.Background(), order2)
	assert.NoError(t, err)
}

// 列表宽容模式：无效码跳过，有效码继续叠加
func TestCreateOrder_ListModeSkipsInvalid(t *testing.T) {
	f := newFixture()
	f.cartRepo.items[100] = []cart.Item{{ProductID: 3, Quantity: 1}}

	resp, err := f.create.Execute(context.Background(), CreateOrderRequest{
		UserID:         100,
		Address:        validAddress(),
		PaymentMethod:  "COD",
		PromotionCodes: []string{"EXPIRED", "NOSUCHCODE", "FREESHIP"},
	})
	require.NoError(t, err)

	o := resp.Order
	assert.Equal(t, int64(12000), o.Discount)
	require.Len(t, o.Promotions, 1)
	assert.Equal(t, "FREESHIP", o.Promotions[0].Code)
	require.Len(t, f.promotionRepo.usages, 1)
}
