// Package testenv provides an in-process test environment for the DataCanvas
// console: a real SQLite-backed API server behind httptest, plus a gateway
// client authenticated with a seeded session.
package testenv

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/datacanvas/datacanvas/internal/api"
	"github.com/datacanvas/datacanvas/internal/gateway"
	"github.com/datacanvas/datacanvas/internal/storage"
)

// SessionToken is the bearer token for the seeded unscoped session.
const SessionToken = "e2e-session-token"

// Env is a running console backend with seeded data.
type Env struct {
	Server    *httptest.Server
	Store     *storage.SQLiteStorage
	Client    *gateway.Client
	ProjectID int64
	DeviceIDs []int64
}

// Setup starts an in-memory backend with one project, two devices, and an
// unscoped session, and returns a gateway client pointed at it. Everything is
// torn down when the test completes.
func Setup(t *testing.T) *Env {
	t.Helper()
	ctx := context.Background()

	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() {
		//nolint:errcheck
		store.Close()
	})

	project, err := store.CreateProject(ctx, "e2e")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	deviceIDs := make([]int64, 0, 2)
	for _, name := range []string{"probe-a", "probe-b"} {
		device, err := store.CreateDevice(ctx, project.ID, name, "")
		if err != nil {
			t.Fatalf("create device %s: %v", name, err)
		}
		deviceIDs = append(deviceIDs, device.ID)
	}

	if _, err := store.CreateSession(ctx, "e2e", SessionToken, nil, nil); err != nil {
		t.Fatalf("create session: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := api.NewHandler(store, nil, logger)
	server := httptest.NewServer(handler.NewRouter())
	t.Cleanup(server.Close)

	client := gateway.NewClient(SessionToken, gateway.WithBaseURL(server.URL))

	return &Env{
		Server:    server,
		Store:     store,
		Client:    client,
		ProjectID: project.ID,
		DeviceIDs: deviceIDs,
	}
}

// ClientWithToken returns a gateway client against the same server using a
// different bearer token.
func (e *Env) ClientWithToken(token string) *gateway.Client {
	return gateway.NewClient(token, gateway.WithBaseURL(e.Server.URL))
}
