package payment

import (
	"context"

	"gugarden/internal/config"

	"github.com/rs/zerolog"
)

// testGateway approves everything without leaving the process. It is used
// when no provider credentials are configured.
type testGateway struct {
	logger zerolog.Logger
}

// NewTestGateway creates the offline gateway.
func NewTestGateway(logger zerolog.Logger) Gateway {
	return &testGateway{logger: logger.With().Str("provider", config.PaymentProviderTest).Logger()}
}

func (g *testGateway) Provider() string {
	return config.PaymentProviderTest
}

func (g *testGateway) Prepare(_ context.Context, req PrepareRequest) (*PrepareResult, error) {
	return &PrepareResult{
		Payload: map[string]any{
			"provider":    g.Provider(),
			"testMode":    true,
			"orderId":     req.OrderID,
			"orderNumber": req.MerchantKey,
			"totalAmount": req.Amount,
			"orderName":   req.OrderName,
		},
	}, nil
}

func (g *testGateway) Confirm(_ context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	key := req.PaymentKey
	if key == "" {
		key = "test_" + req.MerchantKey
	}

	g.logger.Debug().Str("merchant_key", req.MerchantKey).Msg("test payment approved")

	return &ConfirmResult{PaymentKey: key, Amount: req.Amount}, nil
}

func (g *testGateway) Cancel(_ context.Context, req CancelRequest) error {
	g.logger.Debug().Str("payment_key", req.PaymentKey).Msg("test payment cancelled")
	return nil
}
