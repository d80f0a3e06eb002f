package gateway

import (
	"fmt"
	"io"

	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

// readAllLimited reads r fully, failing with a ValidationError beyond max.
func readAllLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, errors.NewValidationError("file", fmt.Sprintf("failed to read: %v", err))
	}
	if int64(len(data)) > max {
		return nil, errors.NewValidationError("file", fmt.Sprintf("exceeds %d bytes", max))
	}
	return data, nil
}
