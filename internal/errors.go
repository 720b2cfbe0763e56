package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeBusinessRule ErrorType = "BUSINESS_RULE_VIOLATION"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidTime      ErrorCode = "INVALID_TIME"
	ErrCodeInvalidLeaveType ErrorCode = "INVALID_LEAVE_TYPE"
	ErrCodeInvalidPeriod    ErrorCode = "INVALID_PERIOD"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"
	ErrCodeInvalidLocation  ErrorCode = "INVALID_LOCATION"
	ErrCodeInvalidSettings  ErrorCode = "INVALID_SETTINGS"

	ErrCodeUserNotFound  ErrorCode = "USER_NOT_FOUND"
	ErrCodeTeamNotFound  ErrorCode = "TEAM_NOT_FOUND"
	ErrCodeLeaveNotFound ErrorCode = "LEAVE_NOT_FOUND"

	ErrCodeEmailTaken        ErrorCode = "EMAIL_TAKEN"
	ErrCodeTeamNameTaken     ErrorCode = "TEAM_NAME_TAKEN"
	ErrCodeLeaveDateTaken    ErrorCode = "LEAVE_DATE_TAKEN"
	ErrCodeAlreadyClockedIn  ErrorCode = "ALREADY_CLOCKED_IN"
	ErrCodeOpenSessionExists ErrorCode = "OPEN_SESSION_EXISTS"

	ErrCodeInsufficientLeave ErrorCode = "INSUFFICIENT_LEAVE_BALANCE"
	ErrCodeOutsideGeofence   ErrorCode = "OUTSIDE_GEOFENCE"
	ErrCodeNotClockedIn      ErrorCode = "NOT_CLOCKED_IN"
	ErrCodeTeamNotEmpty      ErrorCode = "TEAM_NOT_EMPTY"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeAdminRequired      ErrorCode = "ADMIN_REQUIRED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewConflictError reports a uniqueness violation. Conflicts surface as 400,
// the same class as validation failures.
func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewBusinessRuleError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeBusinessRule,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

var (
	ErrInvalidToken  = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired  = NewUnauthorizedError("token has expired", ErrCodeTokenExpired)
	ErrAdminRequired = NewForbiddenError("administrator access required", ErrCodeAdminRequired)
)

// IsAppError unwraps err until it finds an *AppError.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasType reports whether err is an *AppError of the given type.
func HasType(err error, t ErrorType) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == t
}

type Response struct {
	Success bool      `json:"success"`
	Detail  string    `json:"detail"`
	Error   *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Success: false, Detail: e.GetDetailedMessage(), Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
