package leave

import (
	"context"
	"net/http"

	"github.com/frahmantamala/attendance/internal/transport"
)

type ServiceAPI interface {
	Request(ctx context.Context, req CreateLeaveRequest) (*CreateLeaveResponse, error)
	Cancel(ctx context.Context, leaveID int64) error
	ListByUser(ctx context.Context, userID int64) ([]*Entry, error)
	UserWeek(ctx context.Context, userID int64) ([]WeekDay, error)
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

func (h *Handler) RequestLeave(w http.ResponseWriter, r *http.Request) {
	var req CreateLeaveRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	resp, err := h.Service.Request(r.Context(), req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CancelLeave(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathInt64(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.Service.Cancel(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, appErr := h.PathInt64(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	entries, err := h.Service.ListByUser(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) UserWeek(w http.ResponseWriter, r *http.Request) {
	userID, appErr := h.PathInt64(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	week, err := h.Service.UserWeek(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, week)
}
