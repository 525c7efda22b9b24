package handler

import (
	"net/http"

	"gugarden/internal/model"
	"gugarden/internal/service"

	"github.com/rs/zerolog"
)

// OrderListResponse wraps the caller's order history.
type OrderListResponse struct {
	Orders []model.OrderSummary `json:"orders"`
}

// OrderPageResponse wraps a paged admin order listing.
type OrderPageResponse struct {
	Orders     []model.OrderSummary `json:"orders"`
	Pagination model.Pagination     `json:"pagination"`
}

// OrderDetailResponse wraps an order with its items.
type OrderDetailResponse struct {
	Order *model.OrderDetail `json:"order"`
}

// OrderResponse wraps an order after a state change.
type OrderResponse struct {
	Message string       `json:"message"`
	Order   *model.Order `json:"order"`
}

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.OrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	created, err := h.service.CreateOrder(r.Context(), p.UserID, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// List handles GET /api/orders requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orders, err := h.service.ListByUser(r.Context(), p.UserID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, OrderListResponse{Orders: orders})
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orderID, err := uuidParam(r, "id", model.ErrOrderNotFound)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.GetByID(r.Context(), p.UserID, orderID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, OrderDetailResponse{Order: order})
}

// Cancel handles PUT /api/orders/{id}/cancel requests.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orderID, err := uuidParam(r, "id", model.ErrOrderNotFound)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.Cancel(r.Context(), p.UserID, orderID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, OrderResponse{Message: "order cancelled", Order: order})
}

// AdminList handles GET /api/admin/orders requests.
func (h *OrderHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	filter := model.OrderFilter{Page: pageFromQuery(r)}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := model.ParseOrderStatus(raw)
		if err != nil {
			writeError(w, r, err, h.logger)
			return
		}
		filter.Status = &status
	}

	orders, pagination, err := h.service.AdminList(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, OrderPageResponse{Orders: orders, Pagination: pagination})
}

// AdminGet handles GET /api/admin/orders/{id} requests.
func (h *OrderHandler) AdminGet(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuidParam(r, "id", model.ErrOrderNotFound)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.AdminGet(r.Context(), orderID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, OrderDetailResponse{Order: order})
}

// AdminUpdateStatus handles PUT /api/admin/orders/{id}/status requests.
func (h *OrderHandler) AdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuidParam(r, "id", model.ErrOrderNotFound)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.StatusUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if req.Status == "" {
		writeError(w, r, model.NewMissingFieldError("status"), h.logger)
		return
	}

	order, err := h.service.AdminUpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, OrderResponse{Message: "order status updated", Order: order})
}

// Dashboard handles GET /api/admin/dashboard requests.
func (h *OrderHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}
