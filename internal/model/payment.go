package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCancelReason is sent to the provider when the caller gives none.
const DefaultCancelReason = "고객 요청에 의한 취소"

// PaymentPrepareRequest starts a payment for a pending order.
type PaymentPrepareRequest struct {
	OrderID uuid.UUID `json:"orderId"`
}

// PaymentApproveRequest confirms a payment. NaverPay clients send
// paymentId, Toss clients send paymentKey and amount.
type PaymentApproveRequest struct {
	OrderID    uuid.UUID        `json:"orderId"`
	PaymentKey string           `json:"paymentKey,omitempty"`
	PaymentID  string           `json:"paymentId,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
}

// Reference returns whichever provider reference the client supplied.
func (r *PaymentApproveRequest) Reference() string {
	if r.PaymentKey != "" {
		return r.PaymentKey
	}
	return r.PaymentID
}

// PaymentApproveResult is returned after a successful approval.
type PaymentApproveResult struct {
	Success     bool      `json:"success"`
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	PaymentKey  string    `json:"paymentKey,omitempty"`
	TestMode    bool      `json:"testMode,omitempty"`
}

// PaymentCancelRequest refunds a paid order.
type PaymentCancelRequest struct {
	OrderID uuid.UUID `json:"orderId"`
	Reason  string    `json:"reason,omitempty"`
}

// PaymentStatus is the payment view of an order.
type PaymentStatus struct {
	ID          uuid.UUID       `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	PaidAt      *time.Time      `json:"paidAt,omitempty"`
}
