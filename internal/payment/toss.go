package payment

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"gugarden/internal/config"
	"gugarden/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	tossStatusDone     = "DONE"
	tossStatusCanceled = "CANCELED"
)

type tossGateway struct {
	cfg    config.TossConfig
	client *http.Client
	logger zerolog.Logger
}

// NewToss creates a gateway for the Toss Payments API. Toss reservations
// happen in the browser widget, so Prepare makes no network call.
func NewToss(cfg config.TossConfig, client *http.Client, logger zerolog.Logger) Gateway {
	return &tossGateway{
		cfg:    cfg,
		client: client,
		logger: logger.With().Str("provider", config.PaymentProviderToss).Logger(),
	}
}

type tossPayment struct {
	PaymentKey  string          `json:"paymentKey"`
	OrderID     string          `json:"orderId"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type tossError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (g *tossGateway) Provider() string {
	return config.PaymentProviderToss
}

func (g *tossGateway) headers(idempotencyKey string) map[string]string {
	token := base64.StdEncoding.EncodeToString([]byte(g.cfg.SecretKey + ":"))
	h := map[string]string{"Authorization": "Basic " + token}
	if idempotencyKey != "" {
		h["Idempotency-Key"] = idempotencyKey
	}
	return h
}

func (g *tossGateway) call(ctx context.Context, path, idempotencyKey string, body any) (*tossPayment, error) {
	var payment tossPayment
	endpoint := strings.TrimRight(g.cfg.BaseURL, "/") + path
	err := postJSON(ctx, g.client, endpoint, g.headers(idempotencyKey), body, &payment)
	if err == nil {
		return &payment, nil
	}

	g.logger.Error().Err(err).Str("path", path).Msg("toss request failed")

	// 4xx replies are definitive declines; everything else may be retried.
	var httpErr *httpError
	if errors.As(err, &httpErr) && httpErr.Status >= 400 && httpErr.Status < 500 {
		var te tossError
		if jsonErr := decodeJSON(httpErr.Body, &te); jsonErr == nil && te.Message != "" {
			return nil, model.NewPaymentRejectedError(g.Provider(), te.Message)
		}
		return nil, model.NewPaymentRejectedError(g.Provider(), fmt.Sprintf("HTTP %d", httpErr.Status))
	}

	return nil, model.NewPaymentError(g.Provider(), err)
}

func (g *tossGateway) Prepare(_ context.Context, req PrepareRequest) (*PrepareResult, error) {
	return &PrepareResult{
		Payload: map[string]any{
			"provider":      g.Provider(),
			"orderId":       req.OrderID,
			"orderNumber":   req.MerchantKey,
			"amount":        req.Amount,
			"orderName":     req.OrderName,
			"customerName":  req.CustomerName,
			"customerEmail": req.CustomerEmail,
		},
	}, nil
}

func (g *tossGateway) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	if req.PaymentKey == "" {
		return nil, model.NewMissingFieldError("paymentKey")
	}

	body := map[string]any{
		"paymentKey": req.PaymentKey,
		"orderId":    req.MerchantKey,
		"amount":     req.Amount.IntPart(),
	}

	payment, err := g.call(ctx, "/payments/confirm", req.MerchantKey, body)
	if err != nil {
		return nil, err
	}

	if payment.Status != tossStatusDone {
		return nil, model.NewPaymentRejectedError(g.Provider(), "unexpected status "+payment.Status)
	}

	g.logger.Info().
		Str("merchant_key", req.MerchantKey).
		Str("payment_key", payment.PaymentKey).
		Msg("payment confirmed")

	return &ConfirmResult{PaymentKey: payment.PaymentKey, Amount: payment.TotalAmount}, nil
}

func (g *tossGateway) Cancel(ctx context.Context, req CancelRequest) error {
	path := "/payments/" + url.PathEscape(req.PaymentKey) + "/cancel"

	payment, err := g.call(ctx, path, "", map[string]any{"cancelReason": req.Reason})
	if err != nil {
		return err
	}

	if payment.Status != tossStatusCanceled {
		return model.NewPaymentRejectedError(g.Provider(), "unexpected status "+payment.Status)
	}

	return nil
}
