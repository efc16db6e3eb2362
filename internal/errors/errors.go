// Package errors provides the structured error type used across Finarius.
// Service-layer errors use AppError so the API can render a stable code and
// message without leaking internal details. Metrics that simply cannot be
// computed are not errors; they are reported as nil or zero sentinels.
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
func (e *AppError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so wrapped
// copies still match their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
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

// Pipeline authentication errors.
var (
	ErrInvalidAPIKey         = &AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
	ErrPipelineNotConfigured = &AppError{Code: "PIPELINE_NOT_CONFIGURED", Message: "Pipeline endpoints are not configured", StatusCode: http.StatusServiceUnavailable}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Validation errors.
var (
	ErrInvalidDateRange   = &AppError{Code: "INVALID_DATE_RANGE", Message: "Start date must not be after end date", StatusCode: http.StatusBadRequest}
	ErrInvalidTransaction = &AppError{Code: "INVALID_TRANSACTION", Message: "Transaction is malformed", StatusCode: http.StatusBadRequest}
)

// Ledger errors.
var (
	ErrAccountNotFound   = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
	ErrLedgerUnavailable = &AppError{Code: "LEDGER_UNAVAILABLE", Message: "Ledger could not be read", StatusCode: http.StatusInternalServerError}
)

// Price errors.
var (
	ErrPriceDownload  = &AppError{Code: "PRICE_DOWNLOAD_FAILED", Message: "Price download failed", StatusCode: http.StatusBadGateway}
	ErrPriceStore     = &AppError{Code: "PRICE_STORE_FAILED", Message: "Price store could not be accessed", StatusCode: http.StatusInternalServerError}
	ErrSymbolNotFound = &AppError{Code: "SYMBOL_NOT_FOUND", Message: "Symbol not found at price source", StatusCode: http.StatusNotFound}
)
