package status

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/frahmantamala/attendance/internal/transport"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ServiceAPI interface {
	TeamStatus(ctx context.Context, teamID int64, date string) ([]TeamMemberStatus, error)
	AllStatus(ctx context.Context, date string) ([]UserStatus, error)
	Hours(ctx context.Context, period string) ([]Hours, error)
	HoursWorkbook(ctx context.Context, period string) (*bytes.Buffer, error)
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

func (h *Handler) TeamStatus(w http.ResponseWriter, r *http.Request) {
	teamID, appErr := h.PathInt64(r, "team_id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	result, err := h.Service.TeamStatus(r.Context(), teamID, r.URL.Query().Get("date"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) AllStatus(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.AllStatus(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Hours(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.Hours(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) ExportHours(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = PeriodWeek
	}

	buf, err := h.Service.HoursWorkbook(r.Context(), period)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="hours-%s.xlsx"`, period))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Error("failed to write workbook", "error", err)
	}
}
