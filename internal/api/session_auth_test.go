package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/datacanvas/datacanvas/internal/storage"
	"github.com/datacanvas/datacanvas/internal/testutil/mockstore"
)

// TestSessionAuthMissingToken verifies 401 for requests without a token.
func TestSessionAuthMissingToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&mockstore.MockStorage{}, unscopedSession())

	rec := doRequest(t, router, http.MethodGet, "/whoami", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}

	var apiErr APIError
	decodeJSON(t, rec, &apiErr)
	if apiErr.Error != ErrCodeInvalidCredentials {
		t.Errorf("expected error code %q, got %q", ErrCodeInvalidCredentials, apiErr.Error)
	}
}

// TestSessionAuthInvalidToken verifies 401 for unknown tokens.
func TestSessionAuthInvalidToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&mockstore.MockStorage{}, unscopedSession())

	rec := doRequest(t, router, http.MethodGet, "/whoami", nil, "wrong-token")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

// TestSessionAuthBearerPrefix verifies that a "Bearer " prefix is accepted.
func TestSessionAuthBearerPrefix(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&mockstore.MockStorage{}, unscopedSession())

	rec := doRequest(t, router, http.MethodGet, "/whoami", nil, "Bearer "+testToken)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with Bearer prefix, got %d: %s", rec.Code, rec.Body.String())
	}
}

// TestSessionAuthExpiredSession verifies 401 for expired sessions.
func TestSessionAuthExpiredSession(t *testing.T) {
	t.Parallel()

	expired := time.Now().Add(-time.Hour)
	session := &storage.Session{ID: 3, Label: "stale", ExpiresAt: &expired}

	router := newTestRouter(&mockstore.MockStorage{}, session)

	rec := doRequest(t, router, http.MethodGet, "/whoami", nil, testToken)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for expired session, got %d", rec.Code)
	}
}

// TestSessionAuthStorageError verifies 401 when the lookup fails.
func TestSessionAuthStorageError(t *testing.T) {
	t.Parallel()

	store := &mockstore.MockStorage{
		GetSessionByTokenHashFunc: func(_ context.Context, _ string) (*storage.Session, error) {
			return nil, context.DeadlineExceeded
		},
	}
	router := newTestRouter(store, nil)

	rec := doRequest(t, router, http.MethodGet, "/whoami", nil, testToken)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

// TestPublicDashboardNoAuth verifies the public route skips session auth.
func TestPublicDashboardNoAuth(t *testing.T) {
	t.Parallel()

	store := &mockstore.MockStorage{
		GetShareByTokenFunc: func(_ context.Context, token string) (*storage.Share, error) {
			if token == "public-token" {
				return &storage.Share{
					ID: 1, ProjectID: 4, Token: token, Name: "public dash",
					WidgetIDs: []int64{1, 2}, Active: true,
				}, nil
			}
			return nil, storage.ErrNotFound
		},
	}
	router := newTestRouter(store, nil)

	rec := doRequest(t, router, http.MethodGet, "/public/dashboard/public-token", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 without auth, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp PublicDashboardResponse
	decodeJSON(t, rec, &resp)
	if resp.ShareName != "public dash" {
		t.Errorf("expected share name 'public dash', got %q", resp.ShareName)
	}
}

// TestPublicDashboardInactive verifies inactive and expired shares read as missing.
func TestPublicDashboardInactive(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Hour)
	shares := map[string]*storage.Share{
		"inactive-token": {ID: 1, ProjectID: 4, Token: "inactive-token", Name: "off", Active: false},
		"expired-token":  {ID: 2, ProjectID: 4, Token: "expired-token", Name: "old", Active: true, ExpiresAt: &past},
	}
	store := &mockstore.MockStorage{
		GetShareByTokenFunc: func(_ context.Context, token string) (*storage.Share, error) {
			if s, ok := shares[token]; ok {
				return s, nil
			}
			return nil, storage.ErrNotFound
		},
	}
	router := newTestRouter(store, nil)

	for _, token := range []string{"inactive-token", "expired-token", "missing-token"} {
		rec := doRequest(t, router, http.MethodGet, "/public/dashboard/"+token, nil, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 for %s, got %d", token, rec.Code)
		}
	}
}
