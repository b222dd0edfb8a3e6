package errors

import "fmt"

// AppError represents an SDK-level error with a code and optional cause
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Error codes
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeLabelInvalid  = "LABEL_INVALID"
	ErrCodeSessionCreate = "SESSION_CREATE_FAILED"
	ErrCodeSessionGet    = "SESSION_GET_FAILED"
	ErrCodeSessionDelete = "SESSION_DELETE_FAILED"
	ErrCodeContextSync   = "CONTEXT_SYNC_FAILED"
	ErrCodeFileOperation = "FILE_OPERATION_FAILED"
	ErrCodeCommand       = "COMMAND_FAILED"
	ErrCodeAuthFailed    = "AUTH_FAILED"
	ErrCodeTransport     = "TRANSPORT_FAILED"
)
