// Package vnpay VNPay支付网关桥接
//
// 协议要点（VNPay v2.1.0）：
// 1. 出站：参数按键名排序后URL编码拼接，HMAC-SHA512签名附在vnp_SecureHash
// 2. vnp_Amount为金额×100（网关以最小单位的1/100计），只乘一次——
//    重复乘100是集成中最常见的事故点，有专门的测试盯住
// 3. 入站：去掉vnp_SecureHash/vnp_SecureHashType后重算签名比对，
//    未验签的载荷一个字段都不能信
// 4. vnp_ResponseCode == "00" 表示支付成功
package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/zeus1411/aquastore/internal/infrastructure/config"
)

// ResponseCodeSuccess 网关成功响应码
const ResponseCodeSuccess = "00"

// expireWindow 支付链接有效期，与暂存订单TTL一致
const expireWindow = 15 * time.Minute

// ictZone VNPay要求的时间参数时区（GMT+7）
var ictZone = time.FixedZone("ICT", 7*3600)

// PaymentRequest 出站支付请求参数
type PaymentRequest struct {
	Amount    int64  // 应付金额(VND)，函数内×100，调用方不要预乘
	TxnRef    string // 交易引用（暂存订单的键）
	OrderInfo string // 订单描述
	ClientIP  string
	Locale    string    // vn | en，空取vn
	CreatedAt time.Time // 零值取当前时间（测试时可固定）
}

// CallbackResult 入站回调验签结果
type CallbackResult struct {
	IsVerified    bool
	ResponseCode  string
	TxnRef        string
	TransactionNo string // 网关侧交易号
	BankCode      string
	Amount        int64 // 已还原为VND（÷100）
	Raw           url.Values
}

// IsSuccess 验签通过且响应码为成功
func (r *CallbackResult) IsSuccess() bool {
	return r.IsVerified && r.ResponseCode == ResponseCodeSuccess
}

// Client VNPay网关客户端
type Client struct {
	tmnCode    string
	hashSecret string
	payURL     string
	returnURL  string
}

// NewClient 创建网关客户端
func NewClient(cfg config.VNPayConfig) *Client {
	return &Client{
		tmnCode:    cfg.TmnCode,
		hashSecret: cfg.HashSecret,
		payURL:     cfg.PayURL,
		returnURL:  cfg.ReturnURL,
	}
}

// BuildPaymentURL 构造网关跳转URL
func (c *Client) BuildPaymentURL(req PaymentRequest) (string, error) {
	if req.Amount <= 0 {
		return "", fmt.Errorf("无效的支付金额: %d", req.Amount)
	}
	if req.TxnRef == "" {
		return "", fmt.Errorf("交易引用不能为空")
	}

	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	createdAt = createdAt.In(ictZone)

	locale := req.Locale
	if locale == "" {
		locale = "vn"
	}

	params := url.Values{}
	params.Set("vnp_Version", "2.1.0")
	params.Set("vnp_Command", "pay")
	params.Set("vnp_TmnCode", c.tmnCode)
	// 金额×100，仅此一处
	params.Set("vnp_Amount", fmt.Sprintf("%d", req.Amount*100))
	params.Set("vnp_CurrCode", "VND")
	params.Set("vnp_TxnRef", req.TxnRef)
	params.Set("vnp_OrderInfo", req.OrderInfo)
	params.Set("vnp_OrderType", "other")
	params.Set("vnp_Locale", locale)
	params.Set("vnp_ReturnUrl", c.returnURL)
	params.Set("vnp_IpAddr", req.ClientIP)
	params.Set("vnp_CreateDate", createdAt.Format("20060102150405"))
	params.Set("vnp_ExpireDate", createdAt.Add(expireWindow).Format("20060102150405"))

	query := signedQuery(params)
	signature := c.sign(query)

	return fmt.Sprintf("%s?%s&vnp_SecureHash=%s", c.payURL, query, signature), nil
}

// VerifyCallback 验证网关回调
// 重算签名时排除vnp_SecureHash和vnp_SecureHashType本身。
func (c *Client) VerifyCallback(query url.Values) *CallbackResult {
	result := &CallbackResult{
		ResponseCode:  query.Get("vnp_ResponseCode"),
		TxnRef:        query.Get("vnp_TxnRef"),
		TransactionNo: query.Get("vnp_TransactionNo"),
		BankCode:      query.Get("vnp_BankCode"),
		Raw:           query,
	}

	received := query.Get("vnp_SecureHash")
	if received == "" {
		return result
	}

	filtered := url.Values{}
	for key, values := range query {
		if key == "vnp_SecureHash" || key == "vnp_SecureHashType" {
			continue
		}
		for _, v := range values {
			filtered.Add(key, v)
		}
	}

	expected := c.sign(signedQuery(filtered))
	result.IsVerified = hmac.Equal([]byte(strings.ToLower(received)), []byte(expected))

	if result.IsVerified {
		// 还原金额（网关回传的是×100后的值）
		var raw int64
		fmt.Sscanf(query.Get("vnp_Amount"), "%d", &raw)
		result.Amount = raw / 100
	}

	return result
}

// sign 对编码后的查询串做HMAC-SHA512，输出小写十六进制
func (c *Client) sign(query string) string {
	mac := hmac.New(sha512.New, []byte(c.hashSecret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

// signedQuery 按键名排序构造URL编码的查询串（签名与跳转共用同一串）
func signedQuery(params url.Values) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params.Get(key)))
	}
	return b.String()
}
