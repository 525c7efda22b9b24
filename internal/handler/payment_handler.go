package handler

import (
	"net/http"

	"gugarden/internal/model"
	"gugarden/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentPrepareResponse carries the provider payload the client needs to
// finish the payment.
type PaymentPrepareResponse struct {
	Provider string         `json:"provider"`
	Payment  map[string]any `json:"payment"`
}

// PaymentHandler handles the payment round trip.
type PaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(service service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("handler", "payment").Logger(),
	}
}

// Prepare handles POST /api/payments/prepare requests.
func (h *PaymentHandler) Prepare(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.PaymentPrepareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if req.OrderID == uuid.Nil {
		writeError(w, r, model.NewMissingFieldError("orderId"), h.logger)
		return
	}

	payload, err := h.service.Prepare(r.Context(), p.UserID, req.OrderID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, PaymentPrepareResponse{Provider: h.service.Provider(), Payment: payload})
}

// Approve handles POST /api/payments/approve requests.
func (h *PaymentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.PaymentApproveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	result, err := h.service.Approve(r.Context(), p.UserID, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Cancel handles POST /api/payments/cancel requests.
func (h *PaymentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.PaymentCancelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if req.OrderID == uuid.Nil {
		writeError(w, r, model.NewMissingFieldError("orderId"), h.logger)
		return
	}

	order, err := h.service.Cancel(r.Context(), p.UserID, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, OrderResponse{Message: "payment cancelled", Order: order})
}

// Status handles GET /api/payments/status/{orderId} requests.
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orderID, err := uuidParam(r, "orderId", model.ErrOrderNotFound)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	status, err := h.service.Status(r.Context(), p.UserID, orderID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, status)
}
