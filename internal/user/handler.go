package user

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/attendance/internal"
	"github.com/frahmantamala/attendance/internal/transport"
)

type ServiceAPI interface {
	Register(ctx context.Context, req RegisterRequest) (int64, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Get(ctx context.Context, id int64) (*User, error)
	ListEmployees(ctx context.Context) ([]UserResponse, error)
	UpdateRole(ctx context.Context, id int64, role string) (string, error)
	UpdateLeaveTotal(ctx context.Context, id int64, total float64) error
	AssignTeam(ctx context.Context, id int64, teamID *int64) error
	ResetPassword(ctx context.Context, id int64) error
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

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	id, err := h.Service.Register(r.Context(), req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, RegisterResponse{Success: true, UserID: id})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	resp, err := h.Service.Login(r.Context(), req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathInt64(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	u, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u.ToResponse())
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListEmployees(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateRoleRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	message, err := h.Service.UpdateRole(r.Context(), req.UserID, req.Role)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: message})
}

// UpdateAnnualLeave takes user_id and total as query parameters.
func (h *Handler) UpdateAnnualLeave(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.QueryInt64(r, "user_id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	total, err := strconv.ParseFloat(r.URL.Query().Get("total"), 64)
	if err != nil {
		h.WriteAppError(w, internal.NewValidationFieldError("total", "total must be a number", internal.ErrCodeValidationFailed))
		return
	}

	if err := h.Service.UpdateLeaveTotal(r.Context(), id, total); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *Handler) AssignTeam(w http.ResponseWriter, r *http.Request) {
	var req AssignTeamRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.Service.AssignTeam(r.Context(), req.UserID, req.TeamID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathInt64(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.Service.ResetPassword(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "비밀번호가 초기화되었습니다"})
}
