package team

import (
	"context"
	"net/http"

	"github.com/frahmantamala/attendance/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]TeamResponse, error)
	Create(ctx context.Context, name string) (*Team, error)
	Delete(ctx context.Context, id int64) error
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

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, teams)
}

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req CreateTeamRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	created, err := h.Service.Create(r.Context(), req.Name)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CreateTeamResponse{Success: true, TeamID: created.ID})
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathInt64(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
