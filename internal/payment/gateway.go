// Package payment adapts the external payment providers behind one
// three-operation interface. The provider is chosen once from configuration.
package payment

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"gugarden/internal/config"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Gateway is the capability set every payment provider exposes.
type Gateway interface {
	// Provider names the backing provider.
	Provider() string

	// Prepare reserves a payment and returns what the client needs to
	// complete it.
	Prepare(ctx context.Context, req PrepareRequest) (*PrepareResult, error)

	// Confirm approves a reserved payment and reports the captured amount.
	Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error)

	// Cancel refunds a captured payment in full.
	Cancel(ctx context.Context, req CancelRequest) error
}

// PrepareRequest describes the order a payment is reserved for.
// MerchantKey is the order number and doubles as the idempotency key.
type PrepareRequest struct {
	OrderID       uuid.UUID
	MerchantKey   string
	Amount        decimal.Decimal
	OrderName     string
	CustomerName  string
	CustomerEmail string
	ReturnURL     string
}

// PrepareResult is returned to the client. PaymentKey, when set, is the
// provider reference to store on the order.
type PrepareResult struct {
	PaymentKey string
	Payload    map[string]any
}

// ConfirmRequest approves a reserved payment.
type ConfirmRequest struct {
	MerchantKey string
	PaymentKey  string
	Amount      decimal.Decimal
}

// ConfirmResult is the provider's view of the approved payment.
type ConfirmResult struct {
	PaymentKey string
	Amount     decimal.Decimal
}

// CancelRequest refunds a captured payment.
type CancelRequest struct {
	PaymentKey string
	Amount     decimal.Decimal
	Reason     string
}

// New builds the gateway selected by cfg.
func New(cfg config.PaymentConfig, logger zerolog.Logger) Gateway {
	client := &http.Client{Timeout: cfg.Timeout}
	logger = logger.With().Str("component", "payment").Logger()

	switch cfg.ResolvedProvider() {
	case config.PaymentProviderNaverPay:
		return NewNaverPay(cfg.NaverPay, client, logger)
	case config.PaymentProviderToss:
		return NewToss(cfg.Toss, client, logger)
	default:
		return NewTestGateway(logger)
	}
}

// ReturnURL is where the provider sends the customer after checkout.
func ReturnURL(clientURL string, orderID uuid.UUID) string {
	return fmt.Sprintf("%s/payment/complete?orderId=%s", clientURL, orderID)
}

// WithTimeout bounds a gateway call so a hung provider cannot pin an order
// row lock.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
