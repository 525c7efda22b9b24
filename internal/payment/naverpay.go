package payment

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"gugarden/internal/config"
	"gugarden/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	naverPayReservePath = "/naverpay-partner/naverpay/payments/v2.2/reserve"
	naverPayApplyPath   = "/naverpay-partner/naverpay/payments/v2.2/apply/payment"
	naverPayCancelPath  = "/naverpay-partner/naverpay/payments/v1/cancel"

	naverPaySuccess = "Success"
)

type naverPayGateway struct {
	cfg    config.NaverPayConfig
	client *http.Client
	logger zerolog.Logger
}

// NewNaverPay creates a gateway for the NaverPay partner API.
func NewNaverPay(cfg config.NaverPayConfig, client *http.Client, logger zerolog.Logger) Gateway {
	return &naverPayGateway{
		cfg:    cfg,
		client: client,
		logger: logger.With().Str("provider", config.PaymentProviderNaverPay).Logger(),
	}
}

type naverPayResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Body    struct {
		ReserveID string `json:"reserveId"`
		PaymentID string `json:"paymentId"`
		Detail    struct {
			PaymentID      string           `json:"paymentId"`
			TotalPayAmount *decimal.Decimal `json:"totalPayAmount"`
		} `json:"detail"`
	} `json:"body"`
}

func (g *naverPayGateway) Provider() string {
	return config.PaymentProviderNaverPay
}

func (g *naverPayGateway) headers(idempotencyKey string) map[string]string {
	h := map[string]string{
		"X-Naver-Client-Id":     g.cfg.ClientID,
		"X-Naver-Client-Secret": g.cfg.ClientSecret,
		"X-NaverPay-Chain-Id":   g.cfg.ChainID,
	}
	if idempotencyKey != "" {
		h["X-NaverPay-Idempotency-Key"] = idempotencyKey
	}
	return h
}

func (g *naverPayGateway) call(ctx context.Context, path, idempotencyKey string, body any) (*naverPayResponse, error) {
	var resp naverPayResponse
	url := strings.TrimRight(g.cfg.BaseURL, "/") + path
	if err := postJSON(ctx, g.client, url, g.headers(idempotencyKey), body, &resp); err != nil {
		g.logger.Error().Err(err).Str("path", path).Msg("naverpay request failed")
		return nil, model.NewPaymentError(g.Provider(), err)
	}

	if resp.Code != naverPaySuccess {
		g.logger.Warn().
			Str("path", path).
			Str("code", resp.Code).
			Str("message", resp.Message).
			Msg("naverpay rejected request")
		reason := resp.Message
		if reason == "" {
			reason = resp.Code
		}
		return nil, model.NewPaymentRejectedError(g.Provider(), reason)
	}

	return &resp, nil
}

func (g *naverPayGateway) Prepare(ctx context.Context, req PrepareRequest) (*PrepareResult, error) {
	amount := req.Amount.IntPart()
	body := map[string]any{
		"merchantPayKey":   req.MerchantKey,
		"productName":      req.OrderName,
		"totalPayAmount":   amount,
		"taxScopeAmount":   amount,
		"taxExScopeAmount": 0,
		"returnUrl":        req.ReturnURL,
	}

	resp, err := g.call(ctx, naverPayReservePath, req.MerchantKey, body)
	if err != nil {
		return nil, err
	}

	g.logger.Info().
		Str("merchant_key", req.MerchantKey).
		Str("reserve_id", resp.Body.ReserveID).
		Msg("payment reserved")

	return &PrepareResult{
		PaymentKey: resp.Body.PaymentID,
		Payload: map[string]any{
			"provider":   g.Provider(),
			"paymentUrl": resp.Body.ReserveID,
			"reserveId":  resp.Body.ReserveID,
			"paymentId":  resp.Body.PaymentID,
		},
	}, nil
}

func (g *naverPayGateway) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	if req.PaymentKey == "" {
		return nil, model.NewMissingFieldError("paymentId")
	}

	resp, err := g.call(ctx, naverPayApplyPath, req.MerchantKey, map[string]any{"paymentId": req.PaymentKey})
	if err != nil {
		return nil, err
	}

	if resp.Body.Detail.TotalPayAmount == nil {
		return nil, model.NewPaymentError(g.Provider(), fmt.Errorf("approval response carried no amount"))
	}

	paymentID := resp.Body.Detail.PaymentID
	if paymentID == "" {
		paymentID = req.PaymentKey
	}

	return &ConfirmResult{PaymentKey: paymentID, Amount: *resp.Body.Detail.TotalPayAmount}, nil
}

func (g *naverPayGateway) Cancel(ctx context.Context, req CancelRequest) error {
	body := map[string]any{
		"paymentId":    req.PaymentKey,
		"cancelAmount": req.Amount.IntPart(),
		"cancelReason": req.Reason,
	}

	if _, err := g.call(ctx, naverPayCancelPath, "", body); err != nil {
		return err
	}

	g.logger.Info().Str("payment_id", req.PaymentKey).Msg("payment cancelled")

	return nil
}
