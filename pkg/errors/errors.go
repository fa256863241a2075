package errors

import (
	"fmt"
	"net/http"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "PERMISSION_DENIED"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeBadRequest   = "BAD_REQUEST"
	CodeTimeout      = "TIMEOUT"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInvalidInput = "INVALID_INPUT"

	// Allocation and reconciliation taxonomy.
	CodeRoleFull               = "ROLE_FULL"
	CodeNotQualified           = "NOT_QUALIFIED"
	CodeAlreadyInterested      = "ALREADY_INTERESTED"
	CodeNotInterested          = "NOT_INTERESTED"
	CodeBandGigNotSupported    = "BAND_GIG_NOT_SUPPORTED"
	CodeGigAlreadyTaken        = "GIG_ALREADY_TAKEN"
	CodeIncompleteConfirmation = "INCOMPLETE_CONFIRMATION"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func PermissionDenied(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func Timeout(message string) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    message,
		HTTPStatus: http.StatusGatewayTimeout,
	}
}

func Unavailable(service string) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    fmt.Sprintf("%s is temporarily unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// RoleFull is returned when a booking attempt loses the race for the last
// open seat. The message is the machine-parseable form the UI layer splits
// on ':'. Keep the format stable.
func RoleFull(role string, filled, maxSlots int) *AppError {
	return &AppError{
		Code:       CodeRoleFull,
		Message:    fmt.Sprintf("ROLE_FULL:%s:%d:%d", role, filled, maxSlots),
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"role":         role,
			"filled_slots": filled,
			"max_slots":    maxSlots,
		},
	}
}

func NotQualified(instrument, role string) *AppError {
	return &AppError{
		Code:       CodeNotQualified,
		Message:    fmt.Sprintf("user is not qualified for role %q", role),
		HTTPStatus: http.StatusForbidden,
		Details: map[string]any{
			"instrument": instrument,
			"role":       role,
		},
	}
}

func AlreadyInterested(gigID string) *AppError {
	return &AppError{
		Code:       CodeAlreadyInterested,
		Message:    "user already expressed interest in this gig",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"gig_id": gigID},
	}
}

func NotInterested(gigID string) *AppError {
	return &AppError{
		Code:       CodeNotInterested,
		Message:    "user has not expressed interest in this gig",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"gig_id": gigID},
	}
}

func BandGigNotSupported(operation string) *AppError {
	return &AppError{
		Code:       CodeBandGigNotSupported,
		Message:    fmt.Sprintf("%s is not supported for band gigs, use the role path", operation),
		HTTPStatus: http.StatusConflict,
	}
}

func GigAlreadyTaken(gigID string) *AppError {
	return &AppError{
		Code:       CodeGigAlreadyTaken,
		Message:    "gig is already fully booked",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"gig_id": gigID},
	}
}

func IncompleteConfirmation(missing string) *AppError {
	return &AppError{
		Code:       CodeIncompleteConfirmation,
		Message:    "both parties must confirm payment before finalization",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"missing": missing},
	}
}

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}
