// Package errors defines the AppError type returned by every service call.
// Handlers turn an AppError into a JSON error body; the wrapped internal
// error is logged and never sent to the client.
package errors

import "net/http"

// AppError carries a stable error code, a client-safe message, the HTTP
// status to answer with and an optional internal cause.
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

// Wrap copies sentinel and attaches internal as the cause.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage copies sentinel with a different client message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrUnauthorized   = &AppError{Code: "UNAUTHORIZED", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Account errors.
var (
	ErrAccountNotFound = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
	ErrNoTransactions  = &AppError{Code: "NO_TRANSACTIONS", Message: "Account has no transactions", StatusCode: http.StatusNotFound}
)

// Transaction errors.
var (
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionKind = &AppError{Code: "INVALID_TRANSACTION_KIND", Message: "Transaction kind must be income or expense", StatusCode: http.StatusBadRequest}
	ErrZeroAmount             = &AppError{Code: "INVALID_INPUT", Message: "Amount cannot be zero", StatusCode: http.StatusBadRequest}
)

// Photo errors.
var (
	ErrPhotoNotFound = &AppError{Code: "PHOTO_NOT_FOUND", Message: "Transaction has no photo", StatusCode: http.StatusNotFound}
	ErrInvalidPhoto  = &AppError{Code: "INVALID_PHOTO", Message: "Photo must be a png, jpeg, bmp, gif or webp image", StatusCode: http.StatusBadRequest}
	ErrPhotoTooLarge = &AppError{Code: "INVALID_PHOTO", Message: "Photo exceeds the maximum allowed size", StatusCode: http.StatusRequestEntityTooLarge}
)
