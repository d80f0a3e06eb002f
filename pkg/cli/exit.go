package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

// Process exit statuses.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitNetwork   = 3
	ExitConfig    = 78
	ExitCancelled = 130
)

// ExitCode maps an error returned by the root command to a process status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitCancelled
	}
	code := errors.GetErrorCode(err)
	switch category := errors.GetCategory(code); {
	case category == errors.CategoryCancelled:
		return ExitCancelled
	case errors.IsClientError(code), category == errors.CategoryAuth:
		return ExitUsage
	case category == errors.CategoryNetwork:
		return ExitNetwork
	case code == errors.CodeConfigError:
		return ExitConfig
	default:
		return ExitFailure
	}
}

// ReportError prints err the way the sihiri binary does before exiting.
func ReportError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	switch {
	case retryable(err):
		fmt.Fprintln(w, "The remote service may be temporarily unavailable; try again.")
	case errors.GetErrorCode(err) == errors.CodeConfigError:
		fmt.Fprintln(w, "Check the file with 'sihiri config validate'.")
	}
}

// retryable reports whether a network failure is worth repeating: the
// request never got an answer, or the upstream answered with a gateway or
// availability status. A rejection such as 400 will not change on retry.
func retryable(err error) bool {
	if !errors.IsRetryable(errors.GetErrorCode(err)) {
		return false
	}
	var netErr *errors.NetworkError
	if !errors.As(err, &netErr) || netErr.StatusCode == 0 {
		return true
	}
	return errors.HTTPStatusToCode(netErr.StatusCode) == errors.CodeNetworkError
}
