package httputil

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

// DecodeJSONStrict decodes the request body as JSON with strict validation.
// It disallows unknown fields and returns a ValidationError on failure.
func DecodeJSONStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.NewValidationError("body", fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}

// ReadBody reads the entire request body. A body larger than maxBytes is a
// ValidationError rather than a silent truncation.
func ReadBody(r *http.Request, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return nil, errors.NewValidationError("body", fmt.Sprintf("failed to read: %v", err))
	}
	if int64(len(data)) > maxBytes {
		return nil, errors.NewValidationError("body", fmt.Sprintf("exceeds %d bytes", maxBytes))
	}
	return data, nil
}

// DecodeBase64 decodes a base64-encoded string to bytes.
func DecodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// QueryParam returns the value of a query parameter, or defaultValue if not present.
func QueryParam(r *http.Request, key, defaultValue string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return defaultValue
}

// QueryParamBool returns the boolean value of a query parameter.
// Returns true if the parameter value is "true", "1", "yes", or "on" (case-insensitive).
// Returns defaultValue if the parameter is not present or has an invalid value.
func QueryParamBool(r *http.Request, key string, defaultValue bool) bool {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultValue
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

// URLParamUint64 parses a chi path parameter as an unsigned integer.
func URLParamUint64(r *http.Request, key string) (uint64, error) {
	raw := chi.URLParam(r, key)
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.NewValidationError(key, fmt.Sprintf("%q is not an unsigned integer", raw))
	}
	return n, nil
}

// URLParamPrincipal returns a chi path parameter that must be a Stacks
// principal.
func URLParamPrincipal(r *http.Request, key string) (string, error) {
	raw := chi.URLParam(r, key)
	if !ValidatePrincipal(raw) {
		return "", errors.NewValidationError(key, fmt.Sprintf("%q is not a Stacks principal", raw))
	}
	return raw, nil
}
