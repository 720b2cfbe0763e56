package validation

import (
	"fmt"
	"net/mail"

	errors "github.com/frahmantamala/attendance/internal"
	"github.com/frahmantamala/attendance/internal/clock"
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{fields: make([]*FieldValidator, 0)}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return fv
}

func (fv *FieldValidator) fail(message string, code errors.ErrorCode) *errors.AppError {
	return errors.NewValidationFieldError(fv.FieldName, message, code)
}

func (fv *FieldValidator) Required() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		missing := false
		switch v := value.(type) {
		case string:
			missing = v == ""
		case *string:
			missing = v == nil || *v == ""
		case int64:
			missing = v == 0
		case *int64:
			missing = v == nil
		case *float64:
			missing = v == nil
		case nil:
			missing = true
		}
		if missing {
			return fv.fail(fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinLength(min int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && len([]rune(v)) < min {
			return fv.fail(fmt.Sprintf("%s must be at least %d characters", fv.FieldName, min), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && len([]rune(v)) > max {
			return fv.fail(fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

// MaxBytes limits the encoded length rather than the rune count.
func (fv *FieldValidator) MaxBytes(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && len(v) > max {
			return fv.fail(fmt.Sprintf("%s must not exceed %d bytes", fv.FieldName, max), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Email() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(string)
		if !ok || v == "" {
			return nil
		}
		if _, err := mail.ParseAddress(v); err != nil {
			return fv.fail(fmt.Sprintf("%s must be a valid email address", fv.FieldName), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) PositiveInt() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(int64); ok && v <= 0 {
			return fv.fail(fmt.Sprintf("%s must be positive", fv.FieldName), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) RangeFloat(min, max float64, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(float64)
		if ok && (v < min || v > max || v != v) {
			return fv.fail(fmt.Sprintf("%s must be between %v and %v", fv.FieldName, min, max), code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) PositiveFloat(code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(float64); ok && !(v > 0) {
			return fv.fail(fmt.Sprintf("%s must be positive", fv.FieldName), code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) NonNegativeFloat(code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(float64); ok && !(v >= 0) {
			return fv.fail(fmt.Sprintf("%s must not be negative", fv.FieldName), code)
		}
		return nil
	})
	return fv
}

// Date accepts YYYY-MM-DD. Empty values are left to Required.
func (fv *FieldValidator) Date() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v := stringValue(value)
		if v == "" {
			return nil
		}
		if _, err := clock.ParseDate(v); err != nil {
			return fv.fail(fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fv.FieldName), errors.ErrCodeInvalidDate)
		}
		return nil
	})
	return fv
}

// TimeOfDay accepts HH:MM. Empty values are left to Required.
func (fv *FieldValidator) TimeOfDay() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v := stringValue(value)
		if v == "" {
			return nil
		}
		if _, err := clock.ParseTimeOfDay(v); err != nil {
			return fv.fail(fmt.Sprintf("%s must be a time in HH:MM format", fv.FieldName), errors.ErrCodeInvalidTime)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) OneOf(code errors.ErrorCode, allowed ...string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v := stringValue(value)
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		return fv.fail(fmt.Sprintf("%s must be one of %v", fv.FieldName, allowed), code)
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

// Validate runs every registered check and folds failures into one
// validation error carrying all field details.
func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			appErr := validator(field.Value)
			if appErr == nil {
				continue
			}
			if details, ok := appErr.Details.(errors.ValidationErrors); ok {
				validationErrors = append(validationErrors, details.Errors...)
				continue
			}
			validationErrors = append(validationErrors, errors.ValidationError{
				Field:   field.FieldName,
				Message: appErr.Message,
				Code:    string(appErr.Code),
			})
		}
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

func stringValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case *string:
		if v != nil {
			return *v
		}
	}
	return ""
}
