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
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeRequired           ErrorCode = "REQUIRED"
	ErrCodeTooLong            ErrorCode = "TOO_LONG"
	ErrCodeInvalidDate        ErrorCode = "INVALID_DATE"
	ErrCodeInvalidTime        ErrorCode = "INVALID_TIME"
	ErrCodeInvalidStatus      ErrorCode = "INVALID_STATUS"
	ErrCodeInvalidParticipant ErrorCode = "INVALID_PARTICIPANT"
	ErrCodeUnexpectedRef      ErrorCode = "UNEXPECTED_REFERENCE"
	ErrCodeInvalidReference   ErrorCode = "INVALID_REFERENCE"
	ErrCodeFileTooLarge       ErrorCode = "FILE_TOO_LARGE"

	ErrCodeDepartmentNotFound   ErrorCode = "DEPARTMENT_NOT_FOUND"
	ErrCodeOrganizationNotFound ErrorCode = "ORGANIZATION_NOT_FOUND"
	ErrCodeUserNotFound         ErrorCode = "USER_NOT_FOUND"
	ErrCodeAffiliationNotFound  ErrorCode = "AFFILIATION_NOT_FOUND"
	ErrCodeMeetingNotFound      ErrorCode = "MEETING_NOT_FOUND"
	ErrCodeParticipantNotFound  ErrorCode = "PARTICIPANT_NOT_FOUND"
	ErrCodeMinutesNotFound      ErrorCode = "MINUTES_NOT_FOUND"
	ErrCodeFileNotFound         ErrorCode = "FILE_NOT_FOUND"
	ErrCodeNotificationNotFound ErrorCode = "NOTIFICATION_NOT_FOUND"

	ErrCodeDuplicateName       ErrorCode = "DUPLICATE_NAME"
	ErrCodeDepartmentInUse     ErrorCode = "DEPARTMENT_IN_USE"
	ErrCodeMinutesExist        ErrorCode = "MINUTES_EXIST"
	ErrCodeMeetingNumberTaken  ErrorCode = "MEETING_NUMBER_TAKEN"
	ErrCodeConstraintViolation ErrorCode = "CONSTRAINT_VIOLATION"

	ErrCodeMissingActor ErrorCode = "MISSING_ACTOR"
	ErrCodeUnknownActor ErrorCode = "UNKNOWN_ACTOR"
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

// Is matches app errors by type and code so sentinels survive WithCause copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if e.Type != t.Type || e.Code != t.Code {
		return false
	}
	// single-field sentinels are told apart by field
	ef, tf := e.FieldErrors(), t.FieldErrors()
	if len(ef) == 1 && len(tf) == 1 {
		return ef[0].Field == tf[0].Field && ef[0].Code == tf[0].Code
	}
	return true
}

// WithCause returns a copy of e carrying cause. Sentinels are never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// FieldErrors returns the per-field errors carried in Details, if any.
func (e *AppError) FieldErrors() []ValidationError {
	if details, ok := e.Details.(ValidationErrors); ok {
		return details.Errors
	}
	return nil
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Add appends a field error.
func (v *ValidationErrors) Add(field, message string, code ErrorCode) {
	v.Errors = append(v.Errors, ValidationError{Field: field, Message: message, Code: string(code)})
}

// Merge appends the field errors of err when it is a validation AppError.
func (v *ValidationErrors) Merge(err *AppError) {
	if err == nil {
		return
	}
	if fe := err.FieldErrors(); len(fe) > 0 {
		v.Errors = append(v.Errors, fe...)
		return
	}
	v.Errors = append(v.Errors, ValidationError{Message: err.Message, Code: string(err.Code)})
}

func (v ValidationErrors) Empty() bool {
	return len(v.Errors) == 0
}

// Err returns nil when no field failed, otherwise a VALIDATION_FAILED error.
func (v ValidationErrors) Err() *AppError {
	if v.Empty() {
		return nil
	}
	return NewValidationError("Validation failed", ErrCodeValidationFailed).WithDetails(v)
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

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

var (
	ErrMissingActor = NewUnauthorizedError("X-User-ID header is required", ErrCodeMissingActor)
	ErrUnknownActor = NewUnauthorizedError("X-User-ID does not match a user", ErrCodeUnknownActor)
)

// IsAppError unwraps err looking for an *AppError.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
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
