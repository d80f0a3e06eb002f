package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestDecodeJSONStrict(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	if err := DecodeJSONStrict(r, &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Name != "x" {
		t.Errorf("Name = %q, want %q", v.Name, "x")
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
	if err := DecodeJSONStrict(r, &v); !errors.IsValidation(err) {
		t.Errorf("expected validation error for unknown field, got %v", err)
	}
}

func TestReadBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("12345"))
	data, err := ReadBody(r, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "12345" {
		t.Errorf("ReadBody = %q", data)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("123456"))
	if _, err := ReadBody(r, 5); !errors.IsValidation(err) {
		t.Errorf("expected validation error for oversized body, got %v", err)
	}
}

func TestQueryParamBool(t *testing.T) {
	tests := []struct {
		query string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"?pin=false", true, false},
		{"?pin=YES", false, true},
		{"?pin=maybe", true, true},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
		if got := QueryParamBool(r, "pin", tt.def); got != tt.want {
			t.Errorf("QueryParamBool(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestURLParamUint64(t *testing.T) {
	r := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "42")
	n, err := URLParamUint64(r, "id")
	if err != nil || n != 42 {
		t.Fatalf("URLParamUint64 = %d, %v", n, err)
	}

	r = withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "-1")
	if _, err := URLParamUint64(r, "id"); !errors.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestURLParamPrincipal(t *testing.T) {
	r := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "address", "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM")
	if _, err := URLParamPrincipal(r, "address"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r = withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "address", "nobody")
	_, err := URLParamPrincipal(r, "address")
	var verr *errors.ValidationError
	if !errors.As(err, &verr) || verr.Fields()[0] != "address" {
		t.Errorf("expected validation error on address, got %v", err)
	}
}

func TestBearerJWT(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"missing", "", "", false},
		{"basic scheme", "Basic dXNlcjpwYXNz", "", false},
		{"not a jwt", "Bearer abc", "", false},
		{"lowercase scheme", "bearer a.b.c", "a.b.c", true},
		{"canonical", "Bearer  h.p.s ", "h.p.s", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, err := BearerJWT(r, "test")
			if tt.ok {
				if err != nil || got != tt.want {
					t.Errorf("BearerJWT() = %q, %v; want %q", got, err, tt.want)
				}
				return
			}
			if !errors.IsUnauthorized(err) {
				t.Errorf("expected unauthorized error, got %v", err)
			}
		})
	}
}

func TestRequireNotEmpty(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	w := httptest.NewRecorder()
	if RequireNotEmpty(w, r, "  ", "data") {
		t.Fatal("blank value accepted")
	}
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), `"fields":"data"`) {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestWriteErr(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	WriteErr(w, r, errors.NewNotFoundError("content", "bafy"))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"code":"NOT_FOUND"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}
