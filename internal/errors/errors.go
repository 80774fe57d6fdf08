// Package errors provides custom error types for the budgetbell API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches any AppError with the same code, so errors.Is(err, ErrX)
// holds for values built from ErrX by Wrap or WithMessage.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrForbidden    = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
)

// Notification errors.
var (
	ErrNotificationNotFound = &AppError{Code: "NOTIFICATION_NOT_FOUND", Message: "Notification not found", StatusCode: http.StatusNotFound}
	ErrInvalidPreferences   = &AppError{Code: "INVALID_PREFERENCES", Message: "Invalid notification preferences", StatusCode: http.StatusBadRequest}
)

// Recurring expense errors.
var (
	ErrRecurringExpenseNotFound = &AppError{Code: "RECURRING_EXPENSE_NOT_FOUND", Message: "Recurring expense not found", StatusCode: http.StatusNotFound}
	ErrRecurringExpenseInactive = &AppError{Code: "RECURRING_EXPENSE_INACTIVE", Message: "Recurring expense is not active", StatusCode: http.StatusConflict}
	ErrPaymentDateRegresses     = &AppError{Code: "PAYMENT_DATE_REGRESSES", Message: "Payment date is earlier than the last recorded payment", StatusCode: http.StatusBadRequest}
	ErrRecurringExpenseStale    = &AppError{Code: "RECURRING_EXPENSE_STALE", Message: "Recurring expense due date has already advanced", StatusCode: http.StatusConflict}
)

// Scheduler errors.
var (
	ErrRunInProgress = &AppError{Code: "RUN_IN_PROGRESS", Message: "A reminder run is already in progress", StatusCode: http.StatusConflict}
	ErrRunFailed     = &AppError{Code: "RUN_FAILED", Message: "Reminder run could not load its candidates", StatusCode: http.StatusServiceUnavailable}
)
