package attendance

import (
	"context"
	"net/http"

	"github.com/frahmantamala/attendance/internal/core/common/validation"
	"github.com/frahmantamala/attendance/internal/geofence"
	"github.com/frahmantamala/attendance/internal/transport"
)

type ServiceAPI interface {
	ClockIn(ctx context.Context, userID int64, pos geofence.Point) (*ClockInResponse, error)
	ClockOut(ctx context.Context, userID int64) (*ClockOutResponse, error)
	Today(ctx context.Context, userID int64) (*TodayResponse, error)
	Weekly(ctx context.Context, userID int64) (*WeeklyResponse, error)
	AdminUpdate(ctx context.Context, req AdminUpdateRequest) (*MessageResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	var req ClockInRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	v := validation.NewValidator()
	v.Field("latitude", req.Latitude).Required()
	v.Field("longitude", req.Longitude).Required()
	if appErr := v.Validate(); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	resp, err := h.Service.ClockIn(r.Context(), req.UserID, geofence.Point{Latitude: *req.Latitude, Longitude: *req.Longitude})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	var req ClockOutRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	resp, err := h.Service.ClockOut(r.Context(), req.UserID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathInt64(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	resp, err := h.Service.Today(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Weekly(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathInt64(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	resp, err := h.Service.Weekly(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	var req AdminUpdateRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	resp, err := h.Service.AdminUpdate(r.Context(), req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}
