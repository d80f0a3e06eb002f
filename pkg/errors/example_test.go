package errors_test

import (
	"fmt"

	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

// Example demonstrates reporting every invalid field at once.
func ExampleNewValidationErrors() {
	err := errors.NewValidationErrors([]errors.Violation{
		{Field: "creator", Message: "is required"},
		{Field: "mediaType", Message: "is required"},
	})
	fmt.Println(err.Error())
	fmt.Println("Code:", err.Code())
	// Output:
	// validation error: creator: is required; mediaType: is required
	// Code: VALIDATION_ERROR
}

// Example demonstrates wrapping errors with context.
func ExampleWrap() {
	originalErr := errors.NewNotFoundError("content", "bafy123")
	wrappedErr := errors.Wrap(originalErr, "failed to fetch metadata")

	fmt.Println(wrappedErr.Error())
	fmt.Println("Is NotFound:", errors.IsNotFound(wrappedErr))
	// Output:
	// failed to fetch metadata: content with ID 'bafy123' not found
	// Is NotFound: true
}

// Example demonstrates telling input errors from service errors.
func ExampleGetCategory() {
	inputErr := errors.NewValidationError("name", "is required")
	serviceErr := errors.NewNetworkError("stacks-node", "", 502, nil)
	cancelled := errors.NewCancelledError("mint")

	fmt.Println(errors.GetCategory(inputErr.Code()))
	fmt.Println(errors.GetCategory(serviceErr.Code()))
	fmt.Println(errors.GetCategory(cancelled.Code()))
	// Output:
	// CLIENT_ERROR
	// NETWORK_ERROR
	// CANCELLED
}
