package httputil

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

// WriteJSON writes v as a JSON response with the given status code.
// Encoding errors are dropped; the status line is already sent.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteErr writes err as a structured error response. The status and code
// follow the error's type; the chi request id, when present, becomes the
// trace id.
func WriteErr(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteHTTPError(w, err, middleware.GetReqID(r.Context()))
}

// RequireNotEmpty writes a validation error for field and returns false when
// value is blank.
func RequireNotEmpty(w http.ResponseWriter, r *http.Request, value, field string) bool {
	if strings.TrimSpace(value) == "" {
		WriteErr(w, r, errors.NewValidationError(field, "is required"))
		return false
	}
	return true
}

// BearerJWT returns the JWT carried in the Authorization header. A missing
// header or a token without three dot-separated parts is Unauthorized with
// the given realm.
func BearerJWT(r *http.Request, realm string) (string, error) {
	h := r.Header.Get("Authorization")
	if len(h) < len("bearer ") || !strings.EqualFold(h[:len("bearer ")], "bearer ") {
		return "", errors.NewUnauthorizedError("bearer token required").WithRealm(realm)
	}
	token := strings.TrimSpace(h[len("bearer "):])
	if strings.Count(token, ".") != 2 {
		return "", errors.NewUnauthorizedError("bearer token is not a JWT").WithRealm(realm)
	}
	return token, nil
}
