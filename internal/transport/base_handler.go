package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/attendance/internal"
	"github.com/frahmantamala/attendance/pkg/logger"
	"github.com/go-chi/chi"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteAppError writes the error envelope for a classified error.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, appErr *internal.AppError) {
	status, body := appErr.ToHTTPResponse()
	if status >= http.StatusInternalServerError {
		h.Logger.Error("http error", "status", status, "code", appErr.Code, "error", appErr.Error())
	} else {
		h.Logger.Warn("http error", "status", status, "code", appErr.Code, "message", appErr.GetDetailedMessage())
	}
	h.WriteJSON(w, status, body)
}

// HandleServiceError maps a service error onto the HTTP error envelope.
// Anything that is not an AppError is reported as an internal error.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		h.WriteAppError(w, appErr)
		return
	}
	h.WriteAppError(w, internal.NewInternalError("internal server error", err))
}

// DecodeJSON reads the request body into dst. An empty body is a
// validation error.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) *internal.AppError {
	if r.Body == nil {
		return internal.NewValidationError("request body is required", internal.ErrCodeValidationFailed)
	}
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return internal.NewValidationError("request body is required", internal.ErrCodeValidationFailed)
		}
		return internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed).WithCause(err)
	}
	return nil
}

// PathInt64 parses a positive integer URL parameter.
func (h *BaseHandler) PathInt64(r *http.Request, name string) (int64, *internal.AppError) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationFieldError(name, name+" must be a positive integer", internal.ErrCodeValidationFailed)
	}
	return id, nil
}

// QueryInt64 parses a positive integer query parameter.
func (h *BaseHandler) QueryInt64(r *http.Request, name string) (int64, *internal.AppError) {
	raw := r.URL.Query().Get(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationFieldError(name, name+" must be a positive integer", internal.ErrCodeValidationFailed)
	}
	return id, nil
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	return BearerToken(r)
}

func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}
	return authHeader[7:]
}
