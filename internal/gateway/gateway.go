package gateway

import (
	"context"
	"errors"
)

var (
	// ErrGateway 下单失败或超时，可重试
	ErrGateway = errors.New("payment gateway unavailable")
	// ErrSignature 回调签名校验失败
	ErrSignature = errors.New("payment signature verification failed")
)

// Order 网关订单
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// Gateway 支付网关
type Gateway interface {
	// CreateOrder 按最小货币单位下单，失败时返回包裹 ErrGateway 的错误
	CreateOrder(ctx context.Context, amountMinor int64, currency string, capture bool) (*Order, error)
	// VerifySignature 校验回调签名，不匹配时返回 ErrSignature
	VerifySignature(orderID, paymentID, signature string) error
	// KeyID 前端支付组件使用的公开 key
	KeyID() string
}
