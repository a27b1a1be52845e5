package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/datacanvas/datacanvas/internal/testutil/mockstore"
)

// TestHealth verifies the liveness endpoint requires no auth.
func TestHealth(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&mockstore.MockStorage{}, nil)

	rec := doRequest(t, router, http.MethodGet, "/health", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

// TestReady verifies the readiness endpoint pings the database.
func TestReady(t *testing.T) {
	t.Parallel()

	pinged := false
	store := &mockstore.MockStorage{
		PingFunc: func(_ context.Context) error {
			pinged = true
			return nil
		},
	}
	router := newTestRouter(store, nil)

	rec := doRequest(t, router, http.MethodGet, "/ready", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !pinged {
		t.Error("expected Ping to be called")
	}

	var body map[string]any
	decodeJSON(t, rec, &body)
	if body["database"] != "connected" {
		t.Errorf("expected database connected, got %v", body["database"])
	}
}

// TestReadyDatabaseDown verifies the 503 path.
func TestReadyDatabaseDown(t *testing.T) {
	t.Parallel()

	store := &mockstore.MockStorage{
		PingFunc: func(_ context.Context) error {
			return errors.New("connection refused")
		},
	}
	router := newTestRouter(store, nil)

	rec := doRequest(t, router, http.MethodGet, "/ready", nil, "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var body map[string]any
	decodeJSON(t, rec, &body)
	if body["database"] != "unavailable" {
		t.Errorf("expected database unavailable, got %v", body["database"])
	}
}
