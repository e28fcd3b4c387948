package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ValidationFailed     ErrorCode = "validation_failed"
	TransactionNotFound  ErrorCode = "transaction_not_found"
	DuplicateTransaction ErrorCode = "duplicate_transaction"
	StorageError         ErrorCode = "storage_error"
	InternalError        ErrorCode = "internal_error"
)

// FieldViolation describes a single invalid field in a request payload.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Code    ErrorCode        `json:"code"`
	Message string           `json:"message"`
	Details string           `json:"details,omitempty"`
	Fields  []FieldViolation `json:"fields,omitempty"`
}

func (e AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// NewValidationError builds the 400-class error carried back to the client,
// with one violation per invalid field.
func NewValidationError(violations ...FieldViolation) *AppError {
	return &AppError{
		Code:    ValidationFailed,
		Message: "Invalid request data",
		Fields:  violations,
	}
}

// HTTPStatus maps the error code to the response status sent at the boundary.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ValidationFailed:
		return http.StatusBadRequest
	case TransactionNotFound:
		return http.StatusNotFound
	case DuplicateTransaction:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Predefined errors for common cases
var (
	ErrTransactionNotFound  = NewAppError(TransactionNotFound, "Transaction not found")
	ErrDuplicateTransaction = NewAppError(DuplicateTransaction, "transaction already exists")
)
