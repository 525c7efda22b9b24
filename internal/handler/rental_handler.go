package handler

import (
	"net/http"

	"gugarden/internal/model"
	"gugarden/internal/service"

	"github.com/rs/zerolog"
)

// RentalPageResponse wraps a paged inquiry listing.
type RentalPageResponse struct {
	Inquiries  []model.RentalInquiry `json:"inquiries"`
	Pagination model.Pagination      `json:"pagination"`
}

// RentalHandler handles plant rental inquiries.
type RentalHandler struct {
	service service.RentalService
	logger  zerolog.Logger
}

// NewRentalHandler creates a new rental handler.
func NewRentalHandler(service service.RentalService, logger zerolog.Logger) *RentalHandler {
	return &RentalHandler{
		service: service,
		logger:  logger.With().Str("handler", "rental").Logger(),
	}
}

// Submit handles POST /api/rental/inquiry.
func (h *RentalHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.RentalInquiryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	inquiry, err := h.service.Submit(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, inquiry)
}

// List handles GET /api/admin/rentals.
func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request) {
	inquiries, pagination, err := h.service.List(r.Context(), pageFromQuery(r))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, RentalPageResponse{Inquiries: inquiries, Pagination: pagination})
}
