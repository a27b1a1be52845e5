package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func debugLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestHTTPLoggingLogsAtDebug(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := HTTPLogging(debugLogger(&buf), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/access-keys",
		strings.NewReader(`{"access_key_name":"prod"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	logged := buf.String()
	if !strings.Contains(logged, "HTTP Request") || !strings.Contains(logged, "HTTP Response") {
		t.Fatalf("expected request and response log lines, got %s", logged)
	}
	if !strings.Contains(logged, "access_key_name") {
		t.Errorf("expected request body in log, got %s", logged)
	}
	if !strings.Contains(logged, "201") {
		t.Errorf("expected status code in log, got %s", logged)
	}
}

func TestHTTPLoggingMasksCredentials(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := HTTPLogging(debugLogger(&buf), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"secret_access_key":"deadbeefcafe"}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/access-keys", nil)
	req.Header.Set("Authorization", "session-token-ab3f")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	logged := buf.String()
	if strings.Contains(logged, "session-token-ab3f") {
		t.Errorf("expected authorization header masked, got %s", logged)
	}
	if !strings.Contains(logged, "****ab3f") {
		t.Errorf("expected masked header tail, got %s", logged)
	}
	if strings.Contains(logged, "deadbeefcafe") {
		t.Errorf("expected secret redacted from response body, got %s", logged)
	}
}

func TestHTTPLoggingPassThroughAboveDebug(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	handler := HTTPLogging(logger, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if buf.Len() != 0 {
		t.Errorf("expected no log output at info level, got %s", buf.String())
	}
}

func TestHTTPLoggingRestoresBody(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var handlerSaw map[string]any
	handler := HTTPLogging(debugLogger(&buf), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &handlerSaw)
	}))

	req := httptest.NewRequest(http.MethodPost, "/device",
		strings.NewReader(`{"device_name":"probe"}`))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if handlerSaw["device_name"] != "probe" {
		t.Errorf("expected handler to still read the body, got %v", handlerSaw)
	}
}
