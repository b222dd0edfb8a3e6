package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeSessionCreate, "session creation failed", nil)

	assert.NotNil(t, err)
	assert.Equal(t, ErrCodeSessionCreate, err.Code)
	assert.Equal(t, "session creation failed", err.Message)
	assert.Nil(t, err.Cause)
}

func TestNew_WithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := New(ErrCodeTransport, "request failed", cause)

	assert.NotNil(t, err)
	assert.Equal(t, ErrCodeTransport, err.Code)
	assert.Equal(t, "request failed", err.Message)
	assert.Equal(t, cause, err.Cause)
}

func TestAppError_Error(t *testing.T) {
	err := New(ErrCodeSessionGet, "session not found", nil)
	errorString := err.Error()

	assert.Contains(t, errorString, ErrCodeSessionGet)
	assert.Contains(t, errorString, "session not found")
}

func TestAppError_Error_WithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := New(ErrCodeTransport, "request failed", cause)
	errorString := err.Error()

	assert.Contains(t, errorString, ErrCodeTransport)
	assert.Contains(t, errorString, "request failed")
	assert.Contains(t, errorString, "connection refused")
}

func TestErrorCodes(t *testing.T) {
	// Verify all error codes are unique and non-empty
	codes := []string{
		ErrCodeInvalidInput,
		ErrCodeLabelInvalid,
		ErrCodeSessionCreate,
		ErrCodeSessionGet,
		ErrCodeSessionDelete,
		ErrCodeContextSync,
		ErrCodeFileOperation,
		ErrCodeCommand,
		ErrCodeAuthFailed,
		ErrCodeTransport,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code)
		assert.False(t, seen[code], "duplicate error code: %s", code)
		seen[code] = true
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := New(ErrCodeFileOperation, "read failed", cause)

	unwrapped := errors.Unwrap(err)
	assert.Equal(t, cause, unwrapped)
}

func TestAppError_Is(t *testing.T) {
	cause := errors.New("specific error")
	err := New(ErrCodeCommand, "command failed", cause)

	assert.True(t, errors.Is(err, cause))
}
