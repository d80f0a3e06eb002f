package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", NewValidationError("name", "required"), http.StatusBadRequest},
		{"not found", NewNotFoundError("content", "x"), http.StatusNotFound},
		{"cancelled", NewCancelledError(""), 499},
		{"storage unavailable", NewStorageUnavailableError("", nil), http.StatusServiceUnavailable},
		{"network", NewNetworkError("stacks-node", "", 0, nil), http.StatusBadGateway},
		{"contract", NewContractError("a", "b", "c"), http.StatusUnprocessableEntity},
		{"configuration", NewConfigurationError("k", "m"), http.StatusInternalServerError},
		{"sentinel not found", ErrNotFound, http.StatusNotFound},
		{"plain", errors.New("x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestToHTTPError(t *testing.T) {
	t.Run("validation lists fields", func(t *testing.T) {
		err := NewValidationErrors([]Violation{
			{Field: "creator", Message: "is required"},
			{Field: "mediaType", Message: "is required"},
		})
		httpErr := ToHTTPError(err, "trace-1")
		if httpErr.Status != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", httpErr.Status)
		}
		if httpErr.Details["fields"] != "creator,mediaType" {
			t.Errorf("Expected fields detail, got %q", httpErr.Details["fields"])
		}
		if httpErr.TraceID != "trace-1" {
			t.Errorf("Expected trace id, got %q", httpErr.TraceID)
		}
	})

	t.Run("network error carries upstream status", func(t *testing.T) {
		httpErr := ToHTTPError(NewNetworkError("ipfs", "", 503, nil), "")
		if httpErr.Details["service"] != "ipfs" || httpErr.Details["upstream_status"] != "503" {
			t.Errorf("Unexpected details %v", httpErr.Details)
		}
	})

	t.Run("upstream cause stays out of the message", func(t *testing.T) {
		cause := fmt.Errorf("dial tcp 10.0.0.7:5001: connection refused")
		httpErr := ToHTTPError(NewNetworkError("ipfs", "upload failed", 0, cause), "")
		if httpErr.Message != "upload failed" {
			t.Errorf("Unexpected message %q", httpErr.Message)
		}

		httpErr = ToHTTPError(Wrap(NewNotFoundError("content", "bafy1"), "fetch metadata"), "")
		if !strings.Contains(httpErr.Message, "bafy1") {
			t.Errorf("Client errors keep their full message, got %q", httpErr.Message)
		}
	})

	t.Run("no details is omitted", func(t *testing.T) {
		httpErr := ToHTTPError(errors.New("x"), "")
		if httpErr.Details != nil {
			t.Errorf("Expected nil details, got %v", httpErr.Details)
		}
	})
}

func TestWriteHTTPError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteHTTPError(rec, NewUnauthorizedError("").WithRealm("sihiri"), "t")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
	if got := rec.Header().Get("WWW-Authenticate"); got != `Bearer realm="sihiri"` {
		t.Errorf("Unexpected WWW-Authenticate %q", got)
	}

	var body HTTPError
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body.Code != CodeUnauthorized {
		t.Errorf("Expected code %q, got %q", CodeUnauthorized, body.Code)
	}
}

func TestHTTPStatusToCode(t *testing.T) {
	tests := map[int]string{
		http.StatusOK:                  CodeOK,
		http.StatusNotFound:            CodeNotFound,
		http.StatusBadGateway:          CodeNetworkError,
		http.StatusUnauthorized:        CodeUnauthorized,
		http.StatusTeapot:              CodeInvalidArgument,
		http.StatusInternalServerError: CodeInternal,
	}
	for status, want := range tests {
		if got := HTTPStatusToCode(status); got != want {
			t.Errorf("HTTPStatusToCode(%d) = %q, want %q", status, got, want)
		}
	}
}
