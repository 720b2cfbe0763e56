package schedule

import (
	"context"
	"net/http"

	"github.com/frahmantamala/attendance/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Get(ctx context.Context, userID int64, date string) (*Day, error)
	Week(ctx context.Context, userID int64) ([]Day, error)
	Upsert(ctx context.Context, userID int64, entry Entry) error
	UpsertMany(ctx context.Context, userID int64, entries []Entry) error
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

func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	userID, appErr := h.PathInt64(r, "user_id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	days, err := h.Service.Week(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, days)
}

func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	userID, appErr := h.PathInt64(r, "user_id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	day, err := h.Service.Get(r.Context(), userID, chi.URLParam(r, "date"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, day)
}

// SaveBatch accepts {"user_id": 1, "schedules": [...]}.
func (h *Handler) SaveBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.Service.UpsertMany(r.Context(), req.UserID, req.Schedules); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *Handler) SaveDay(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	entry := Entry{Date: req.Date, PlannedIn: req.PlannedIn, PlannedOut: req.PlannedOut}
	if err := h.Service.Upsert(r.Context(), req.UserID, entry); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
