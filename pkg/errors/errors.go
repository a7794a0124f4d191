package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Collection errors
	ErrSourceNotFound ErrorCode = "SOURCE_NOT_FOUND"
	ErrFileRead       ErrorCode = "FILE_READ"
	ErrMessageFile    ErrorCode = "MESSAGE_FILE"

	// Archive errors
	ErrArchiveParse ErrorCode = "ARCHIVE_PARSE"
	ErrArchiveWrite ErrorCode = "ARCHIVE_WRITE"

	// Vault errors
	ErrVaultDecode      ErrorCode = "VAULT_DECODE"
	ErrPasswordMismatch ErrorCode = "PASSWORD_MISMATCH"
	ErrPasswordRead     ErrorCode = "PASSWORD_READ"

	// Extraction errors
	ErrFileWrite   ErrorCode = "FILE_WRITE"
	ErrDirCreate   ErrorCode = "DIR_CREATE"
	ErrPostInstall ErrorCode = "POST_INSTALL"
)

// SedaError represents a structured error with code and details
type SedaError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SedaError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SedaError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *SedaError) Is(target error) bool {
	var targetErr *SedaError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SedaError with the given code and message
func New(code ErrorCode, message string) *SedaError {
	return &SedaError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SedaError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SedaError {
	return &SedaError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a SedaError
func Wrap(err error, code ErrorCode, message string) *SedaError {
	if err == nil {
		return nil
	}
	return &SedaError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SedaError {
	if err == nil {
		return nil
	}
	return &SedaError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SedaError) WithDetail(key string, value interface{}) *SedaError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var sedaErr *SedaError
	if errors.As(err, &sedaErr) {
		return sedaErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a SedaError
func GetErrorCode(err error) ErrorCode {
	var sedaErr *SedaError
	if errors.As(err, &sedaErr) {
		return sedaErr.Code
	}
	return ErrUnknown
}

// ExitCode maps an error to a process exit status. Post-install
// failures carry the exit code of the failed command in the
// "exitCode" detail; any other error maps to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var sedaErr *SedaError
	if errors.As(err, &sedaErr) {
		if code, ok := sedaErr.Details["exitCode"].(int); ok && code != 0 {
			return code
		}
	}
	return 1
}
