package errors

// Error codes for categorizing errors.
// These codes map to HTTP status codes where applicable.
const (
	// CodeOK indicates success (not an error).
	CodeOK = "OK"

	// CodeCancelled indicates the user rejected the operation in the wallet.
	CodeCancelled = "CANCELLED"

	// CodeInvalidArgument indicates client specified an invalid argument.
	CodeInvalidArgument = "INVALID_ARGUMENT"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound = "NOT_FOUND"

	// CodeUnimplemented indicates operation is not implemented or not supported.
	CodeUnimplemented = "UNIMPLEMENTED"

	// CodeInternal indicates internal errors.
	CodeInternal = "INTERNAL"

	// Domain-specific error codes

	// CodeValidation indicates input validation failed.
	CodeValidation = "VALIDATION_ERROR"

	// CodeUnauthorized indicates a signed-in session is required or invalid.
	CodeUnauthorized = "UNAUTHORIZED"

	// CodeStorageUnavailable indicates the storage client was never initialized.
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"

	// CodeNetworkError indicates a network operation failed.
	CodeNetworkError = "NETWORK_ERROR"

	// CodeConfigError indicates a configuration error.
	CodeConfigError = "CONFIG_ERROR"

	// CodeSerializationError indicates serialization/deserialization failed.
	CodeSerializationError = "SERIALIZATION_ERROR"

	// CodeContractError indicates a contract call was executed and failed on-chain.
	CodeContractError = "CONTRACT_ERROR"
)

// ErrorCategory represents a high-level error category.
type ErrorCategory string

const (
	// CategoryClient indicates the caller's input was invalid.
	CategoryClient ErrorCategory = "CLIENT_ERROR"

	// CategoryServer indicates an internal or configuration failure.
	CategoryServer ErrorCategory = "SERVER_ERROR"

	// CategoryNetwork indicates a remote service was unreachable or failing.
	CategoryNetwork ErrorCategory = "NETWORK_ERROR"

	// CategoryCancelled indicates the user cancelled the operation.
	CategoryCancelled ErrorCategory = "CANCELLED"

	// CategoryAuth indicates an authentication error.
	CategoryAuth ErrorCategory = "AUTH_ERROR"
)

// GetCategory returns the category for an error code.
func GetCategory(code string) ErrorCategory {
	switch code {
	case CodeInvalidArgument, CodeValidation, CodeNotFound:
		return CategoryClient

	case CodeUnauthorized:
		return CategoryAuth

	case CodeCancelled:
		return CategoryCancelled

	case CodeNetworkError, CodeStorageUnavailable:
		return CategoryNetwork

	default:
		return CategoryServer
	}
}

// IsRetryable returns true if an error with the given code is transient.
// Adapters never retry on their own; this only advises callers.
func IsRetryable(code string) bool {
	switch code {
	case CodeNetworkError:
		return true
	default:
		return false
	}
}

// IsClientError returns true if the error is a client error (4xx).
func IsClientError(code string) bool {
	return GetCategory(code) == CategoryClient
}

// IsServerError returns true if the error is a server error (5xx).
func IsServerError(code string) bool {
	return GetCategory(code) == CategoryServer
}
