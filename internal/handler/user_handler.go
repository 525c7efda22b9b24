package handler

import (
	"net/http"
	"strings"

	"gugarden/internal/model"
	"gugarden/internal/service"

	"github.com/rs/zerolog"
)

// UserPageResponse wraps a paged admin user listing.
type UserPageResponse struct {
	Users      []model.UserSummary `json:"users"`
	Pagination model.Pagination    `json:"pagination"`
}

// UserHandler handles admin user management.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("handler", "user").Logger(),
	}
}

// List handles GET /api/admin/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := model.UserFilter{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Page:   pageFromQuery(r),
	}

	users, pagination, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, UserPageResponse{Users: users, Pagination: pagination})
}

// Get handles GET /api/admin/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := uuidParam(r, "id", model.ErrUserNotFound)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	detail, err := h.service.Get(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// UpdateRole handles PUT /api/admin/users/{id}/role.
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	userID, err := uuidParam(r, "id", model.ErrUserNotFound)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.RoleUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.service.UpdateRole(r.Context(), p.UserID, userID, req.Role); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "role updated"})
}
