package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Common sentinel errors for quick checks
var (
	// ErrNotFound is returned when a content identifier or contract value is absent.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when caller input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCancelled is returned when the user rejected a wallet interaction.
	ErrCancelled = errors.New("cancelled by user")

	// ErrNotAuthenticated is returned when an operation needs a signed-in session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrServiceUnavailable is returned when a required service is unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrInternal is returned when an internal error occurs.
	ErrInternal = errors.New("internal error")
)

// Error is the base interface for all custom errors in the system.
// It extends the standard error interface with additional context.
type Error interface {
	error
	// Code returns the error code
	Code() string
	// Message returns the human-readable error message
	Message() string
	// Unwrap returns the underlying cause
	Unwrap() error
}

// BaseError provides a foundation for all typed errors.
type BaseError struct {
	code    string
	message string
	cause   error
	stack   []uintptr
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the error code.
func (e *BaseError) Code() string {
	return e.code
}

// Message returns the error message.
func (e *BaseError) Message() string {
	return e.message
}

// Unwrap returns the underlying cause.
func (e *BaseError) Unwrap() error {
	return e.cause
}

// Stack returns the captured stack trace.
func (e *BaseError) Stack() []uintptr {
	return e.stack
}

// captureStack captures the current stack trace.
func captureStack(skip int) []uintptr {
	const maxDepth = 32
	stack := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, stack)
	return stack[:n]
}

// StackTrace returns a formatted stack trace string.
func (e *BaseError) StackTrace() string {
	if len(e.stack) == 0 {
		return ""
	}

	var buf strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			fmt.Fprintf(&buf, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return buf.String()
}

// Violation is a single invalid or missing field.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every invalid field of a caller input at once.
type ValidationError struct {
	*BaseError
	Violations []Violation
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		BaseError: &BaseError{
			code:    CodeValidation,
			message: message,
			stack:   captureStack(1),
		},
		Violations: []Violation{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a validation error carrying all violations.
// It returns nil when violations is empty so callers can return it directly.
func NewValidationErrors(violations []Violation) *ValidationError {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{
		BaseError: &BaseError{
			code:    CodeValidation,
			message: fmt.Sprintf("%d invalid field(s)", len(violations)),
			stack:   captureStack(1),
		},
		Violations: violations,
	}
}

// Fields returns the names of all offending fields in report order.
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		fields = append(fields, v.Field)
	}
	return fields
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Field != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
		} else {
			parts = append(parts, v.Message)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("validation error: %s", e.message)
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	*BaseError
	Resource string
	ID       string
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{
		BaseError: &BaseError{
			code:    CodeNotFound,
			message: fmt.Sprintf("%s not found", resource),
			stack:   captureStack(1),
		},
		Resource: resource,
		ID:       id,
	}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// ConfigurationError signals a deployment or configuration mismatch.
// It is fatal for the process and never retried.
type ConfigurationError struct {
	*BaseError
	Key string
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(key, message string) *ConfigurationError {
	return &ConfigurationError{
		BaseError: &BaseError{
			code:    CodeConfigError,
			message: message,
			stack:   captureStack(1),
		},
		Key: key,
	}
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Key, e.message)
	}
	return fmt.Sprintf("configuration error: %s", e.message)
}

// NetworkError represents a transport failure talking to a remote service.
// It is transient but never retried by the adapters themselves.
type NetworkError struct {
	*BaseError
	Service    string
	StatusCode int
}

// NewNetworkError creates a new network error.
func NewNetworkError(service, message string, statusCode int, cause error) *NetworkError {
	if message == "" {
		message = fmt.Sprintf("%s request failed", service)
	}
	return &NetworkError{
		BaseError: &BaseError{
			code:    CodeNetworkError,
			message: message,
			cause:   cause,
			stack:   captureStack(1),
		},
		Service:    service,
		StatusCode: statusCode,
	}
}

// StorageUnavailableError is returned when the storage client was never initialized.
type StorageUnavailableError struct {
	*BaseError
	Backend string
}

// NewStorageUnavailableError creates a new storage unavailable error.
func NewStorageUnavailableError(backend string, cause error) *StorageUnavailableError {
	message := "storage client not initialized"
	if backend != "" {
		message = fmt.Sprintf("%s storage client not initialized", backend)
	}
	return &StorageUnavailableError{
		BaseError: &BaseError{
			code:    CodeStorageUnavailable,
			message: message,
			cause:   cause,
			stack:   captureStack(1),
		},
		Backend: backend,
	}
}

// DecodeError represents a malformed response or document.
type DecodeError struct {
	*BaseError
	Format string
}

// NewDecodeError creates a new decode error.
func NewDecodeError(format, message string, cause error) *DecodeError {
	if message == "" {
		message = fmt.Sprintf("failed to decode %s", format)
	}
	return &DecodeError{
		BaseError: &BaseError{
			code:    CodeSerializationError,
			message: message,
			cause:   cause,
			stack:   captureStack(1),
		},
		Format: format,
	}
}

// CancelledError is returned when the user declined a wallet request.
type CancelledError struct {
	*BaseError
	Operation string
}

// NewCancelledError creates a new cancelled error.
func NewCancelledError(operation string) *CancelledError {
	message := "cancelled by user"
	if operation != "" {
		message = fmt.Sprintf("%s cancelled by user", operation)
	}
	return &CancelledError{
		BaseError: &BaseError{
			code:    CodeCancelled,
			message: message,
			cause:   ErrCancelled,
			stack:   captureStack(1),
		},
		Operation: operation,
	}
}

// Error implements the error interface.
func (e *CancelledError) Error() string {
	return e.message
}

// ContractError is returned when the node executed a read-only call and the
// contract itself failed (as opposed to the transport failing).
type ContractError struct {
	*BaseError
	Contract string
	Function string
}

// NewContractError creates a new contract error.
func NewContractError(contract, function, cause string) *ContractError {
	return &ContractError{
		BaseError: &BaseError{
			code:    CodeContractError,
			message: fmt.Sprintf("%s.%s failed: %s", contract, function, cause),
			stack:   captureStack(1),
		},
		Contract: contract,
		Function: function,
	}
}

// UnsupportedVersionError is returned for documents written by a newer schema.
type UnsupportedVersionError struct {
	*BaseError
	Version int
	Max     int
}

// NewUnsupportedVersionError creates a new unsupported version error.
func NewUnsupportedVersionError(document string, version, max int) *UnsupportedVersionError {
	return &UnsupportedVersionError{
		BaseError: &BaseError{
			code:    CodeUnimplemented,
			message: fmt.Sprintf("%s version %d is newer than supported version %d", document, version, max),
			stack:   captureStack(1),
		},
		Version: version,
		Max:     max,
	}
}

// UnauthorizedError represents a missing or invalid session.
type UnauthorizedError struct {
	*BaseError
	Realm string
}

// NewUnauthorizedError creates a new unauthorized error.
func NewUnauthorizedError(message string) *UnauthorizedError {
	if message == "" {
		message = "authentication required"
	}
	return &UnauthorizedError{
		BaseError: &BaseError{
			code:    CodeUnauthorized,
			message: message,
			stack:   captureStack(1),
		},
	}
}

// WithRealm sets the authentication realm.
func (e *UnauthorizedError) WithRealm(realm string) *UnauthorizedError {
	e.Realm = realm
	return e
}

// InternalError represents an internal error.
type InternalError struct {
	*BaseError
	Operation string
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *InternalError {
	if message == "" {
		message = "internal error"
	}
	return &InternalError{
		BaseError: &BaseError{
			code:    CodeInternal,
			message: message,
			cause:   cause,
			stack:   captureStack(1),
		},
	}
}

// WithOperation sets the operation context.
func (e *InternalError) WithOperation(op string) *InternalError {
	e.Operation = op
	return e
}

// Wrap wraps an error with additional context.
// If the error is already one of our custom types, it preserves the code
// and adds the cause chain. Otherwise, it creates an InternalError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	if e, ok := err.(Error); ok {
		return &BaseError{
			code:    e.Code(),
			message: message,
			cause:   err,
			stack:   captureStack(1),
		}
	}

	return &InternalError{
		BaseError: &BaseError{
			code:    CodeInternal,
			message: message,
			cause:   err,
			stack:   captureStack(1),
		},
	}
}
