package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/access-keys", "/access-keys"},
		{"/access-keys/123", "/access-keys/:id"},
		{"/access-keys/123/renew", "/access-keys/:id/renew"},
		{"/share/42", "/share/:id"},
		{"/public/dashboard/a3f9c0de", "/public/dashboard/:token"},
		{"/public/dashboard/123", "/public/dashboard/:token"},
		{"/health", "/health"},
	}

	for _, tc := range cases {
		if got := normalizePath(tc.path); got != tc.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestMiddlewareRecordsRequest(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodDelete, "/access-keys/99", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	text, err := GetMetricsText(testRegistry)
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	if !strings.Contains(text, `path="/access-keys/:id"`) {
		t.Errorf("expected normalized path label in output:\n%s", text)
	}
}

func TestMiddlewareRecoversPanic(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	}))

	req := httptest.NewRequest(http.MethodGet, "/access-keys", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 after panic, got %d", rec.Code)
	}
}

func TestMiddlewareImplicitStatus(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("expected body passthrough, got %q", rec.Body.String())
	}
}
