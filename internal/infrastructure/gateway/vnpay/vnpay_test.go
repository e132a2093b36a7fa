package vnpay

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeus1411/aquastore/internal/infrastructure/config"
)

func testClient() *Client {
	return NewClient(config.VNPayConfig{
		TmnCode:    "DEMOV210",
		HashSecret: "RAOEXHYVSDDIIENYWSLDIIZTANXUXZFJ",
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "http://localhost:8080/api/v1/payments/vnpay/return",
	})
}

// TestBuildPaymentURL_AmountMultipliedOnce vnp_Amount = VND×100，只乘一次
// 这是网关集成最易翻车的点，必须显式测试。
func TestBuildPaymentURL_AmountMultipliedOnce(t *testing.T) {
	c := testClient()

	rawURL, err := c.BuildPaymentURL(PaymentRequest{
		Amount:    485_000,
		TxnRef:    "TXN1756600000123456",
		OrderInfo: "Thanh toan don hang",
		ClientIP:  "203.0.113.7",
		CreatedAt: time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)
	query := parsed.Query()

	assert.Equal(t, "48500000", query.Get("vnp_Amount"), "485000 VND应编码为48500000")
	assert.Equal(t, "VND", query.Get("vnp_CurrCode"))
	assert.Equal(t, "2.1.0", query.Get("vnp_Version"))
	assert.Equal(t, "TXN1756600000123456", query.Get("vnp_TxnRef"))
	assert.NotEmpty(t, query.Get("vnp_SecureHash"))
}

// TestBuildPaymentURL_ExpireWindow 有效期 = 创建时间 + 15分钟（GMT+7表示）
func TestBuildPaymentURL_ExpireWindow(t *testing.T) {
	c := testClient()

	createdAt := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC) // = 17:00 ICT
	rawURL, err := c.BuildPaymentURL(PaymentRequest{
		Amount:    100_000,
		TxnRef:    "TXN1",
		OrderInfo: "test",
		CreatedAt: createdAt,
	})
	require.NoError(t, err)

	parsed, _ := url.Parse(rawURL)
	query := parsed.Query()
	assert.Equal(t, "20260831170000", query.Get("vnp_CreateDate"))
	assert.Equal(t, "20260831171500", query.Get("vnp_ExpireDate"))
}

// TestBuildPaymentURL_Validation 非法入参直接拒绝
func TestBuildPaymentURL_Validation(t *testing.T) {
	c := testClient()

	_, err := c.BuildPaymentURL(PaymentRequest{Amount: 0, TxnRef: "TXN1"})
	assert.Error(t, err)

	_, err = c.BuildPaymentURL(PaymentRequest{Amount: 100_000, TxnRef: ""})
	assert.Error(t, err)
}

// TestVerifyCallback_RoundTrip 自己签的回调能通过验签，金额还原为VND
func TestVerifyCallback_RoundTrip(t *testing.T) {
	c := testClient()

	params := url.Values{}
	params.Set("vnp_Amount", "48500000")
	params.Set("vnp_BankCode", "NCB")
	params.Set("vnp_ResponseCode", "00")
	params.Set("vnp_TmnCode", "DEMOV210")
	params.Set("vnp_TransactionNo", "14012345")
	params.Set("vnp_TxnRef", "TXN1756600000123456")

	signature := c.sign(signedQuery(params))
	params.Set("vnp_SecureHash", signature)
	// 网关会附带vnp_SecureHashType，验签时必须排除
	params.Set("vnp_SecureHashType", "HmacSHA512")

	result := c.VerifyCallback(params)
	assert.True(t, result.IsVerified)
	assert.True(t, result.IsSuccess())
	assert.Equal(t, "00", result.ResponseCode)
	assert.Equal(t, "TXN1756600000123456", result.TxnRef)
	assert.Equal(t, "14012345", result.TransactionNo)
	assert.Equal(t, int64(485_000), result.Amount, "回调金额应还原为VND")
}

// TestVerifyCallback_Tampered 篡改任何参数验签失败
func TestVerifyCallback_Tampered(t *testing.T) {
	c := testClient()

	params := url.Values{}
	params.Set("vnp_Amount", "48500000")
	params.Set("vnp_ResponseCode", "00")
	params.Set("vnp_TxnRef", "TXN1")
	params.Set("vnp_SecureHash", c.sign(signedQuery(params)))

	// 篡改金额
	params.Set("vnp_Amount", "100")

	result := c.VerifyCallback(params)
	assert.False(t, result.IsVerified)
	assert.False(t, result.IsSuccess())
}

// TestVerifyCallback_MissingSignature 无签名直接判未验证
func TestVerifyCallback_MissingSignature(t *testing.T) {
	c := testClient()

	params := url.Values{}
	params.Set("vnp_ResponseCode", "00")
	params.Set("vnp_TxnRef", "TXN1")

	result := c.VerifyCallback(params)
	assert.False(t, result.IsVerified)
	assert.False(t, result.IsSuccess())
}

// TestVerifyCallback_FailureCode 验签通过但响应码非00不算成功
func TestVerifyCallback_FailureCode(t *testing.T) {
	c := testClient()

	params := url.Values{}
	params.Set("vnp_Amount", "10000000")
	params.Set("vnp_ResponseCode", "24") // 用户取消
	params.Set("vnp_TxnRef", "TXN1")
	params.Set("vnp_SecureHash", c.sign(signedQuery(params)))

	result := c.VerifyCallback(params)
	assert.True(t, result.IsVerified)
	assert.False(t, result.IsSuccess())
	assert.Equal(t, "24", result.ResponseCode)
}

// TestSignedQuery_Sorted 签名串按键名排序
func TestSignedQuery_Sorted(t *testing.T) {
	params := url.Values{}
	params.Set("vnp_TxnRef", "b")
	params.Set("vnp_Amount", "a")

	query := signedQuery(params)
	assert.True(t, strings.Index(query, "vnp_Amount") < strings.Index(query, "vnp_TxnRef"))
}
