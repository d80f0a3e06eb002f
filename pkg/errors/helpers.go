package errors

import "errors"

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr) || errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}

	var validationErr *ValidationError
	return errors.As(err, &validationErr) || errors.Is(err, ErrInvalidInput)
}

// IsConfiguration checks if an error is a configuration error.
func IsConfiguration(err error) bool {
	if err == nil {
		return false
	}

	var configErr *ConfigurationError
	return errors.As(err, &configErr)
}

// IsNetwork checks if an error is a transport failure.
func IsNetwork(err error) bool {
	if err == nil {
		return false
	}

	var networkErr *NetworkError
	return errors.As(err, &networkErr)
}

// IsStorageUnavailable checks if the storage client was never initialized.
func IsStorageUnavailable(err error) bool {
	if err == nil {
		return false
	}

	var storageErr *StorageUnavailableError
	return errors.As(err, &storageErr)
}

// IsDecode checks if an error is a decode error.
func IsDecode(err error) bool {
	if err == nil {
		return false
	}

	var decodeErr *DecodeError
	return errors.As(err, &decodeErr)
}

// IsCancelled checks if the user cancelled the operation.
func IsCancelled(err error) bool {
	if err == nil {
		return false
	}

	var cancelledErr *CancelledError
	return errors.As(err, &cancelledErr) || errors.Is(err, ErrCancelled)
}

// IsContract checks if a contract call failed on-chain.
func IsContract(err error) bool {
	if err == nil {
		return false
	}

	var contractErr *ContractError
	return errors.As(err, &contractErr)
}

// IsUnsupportedVersion checks if a document was written by a newer schema.
func IsUnsupportedVersion(err error) bool {
	if err == nil {
		return false
	}

	var versionErr *UnsupportedVersionError
	return errors.As(err, &versionErr)
}

// IsUnauthorized checks if an error indicates lack of authentication.
func IsUnauthorized(err error) bool {
	if err == nil {
		return false
	}

	var unauthorizedErr *UnauthorizedError
	return errors.As(err, &unauthorizedErr) || errors.Is(err, ErrNotAuthenticated)
}

// ShouldRetry checks if an operation may be retried by the caller.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var customErr Error
	if errors.As(err, &customErr) {
		return IsRetryable(customErr.Code())
	}

	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	if err == nil {
		return CodeOK
	}

	var customErr Error
	if errors.As(err, &customErr) {
		return customErr.Code()
	}

	switch {
	case IsNotFound(err):
		return CodeNotFound
	case IsCancelled(err):
		return CodeCancelled
	case IsUnauthorized(err):
		return CodeUnauthorized
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidArgument
	default:
		return CodeInternal
	}
}

// GetErrorMessage extracts a human-readable message from an error.
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var customErr Error
	if errors.As(err, &customErr) {
		return customErr.Message()
	}

	return err.Error()
}
