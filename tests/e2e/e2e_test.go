package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacanvas/datacanvas/internal/console"
	"github.com/datacanvas/datacanvas/internal/gateway"
	"github.com/datacanvas/datacanvas/internal/storage"
	"github.com/datacanvas/datacanvas/tests/testenv"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestConsoleKeyLifecycle drives the console controllers end to end against a
// real backend: create through the editor, observe through the directory,
// rename, renew, and delete.
func TestConsoleKeyLifecycle(t *testing.T) {
	env := testenv.Setup(t)
	ctx := context.Background()
	logger := discardLogger()

	directory := console.NewDirectory(env.Client, env.ProjectID, logger)
	require.True(t, directory.Refresh(ctx))
	require.Equal(t, console.StateEmpty, directory.State())

	// Create a key through the editor.
	editor, err := console.NewKeyEditor(ctx, env.Client, env.ProjectID, logger)
	require.NoError(t, err)
	require.Len(t, editor.Devices.Devices(), 2)

	editor.Name = "floor sensors"
	editor.Devices.ToggleAll()
	editor.Domains.Set(0, "example.com")
	require.NoError(t, editor.Domains.Add())
	editor.Domains.Set(1, "localhost:3000")
	editor.Duration = 90

	result, err := editor.Save(ctx)
	require.NoError(t, err)
	require.NotNil(t, result.Created)
	assert.Len(t, result.Created.ClientAccessKey, 32)
	assert.Len(t, result.Created.SecretAccessKey, 64)
	keyID := result.Created.ID

	// The directory sees it.
	require.True(t, directory.Refresh(ctx))
	require.Equal(t, console.StatePopulated, directory.State())
	keys := directory.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, "floor sensors", keys[0].Name)
	assert.Nil(t, keys[0].DeviceIDs)

	// Rename through the edit flow; bindings survive untouched.
	edit, err := console.OpenKeyEditor(ctx, env.Client, env.ProjectID, keyID, logger)
	require.NoError(t, err)
	edit.Name = "floor sensors v2"
	saveResult, err := edit.Save(ctx)
	require.NoError(t, err)
	require.NotNil(t, saveResult.Updated)

	detail, err := env.Client.GetAccessKey(ctx, keyID)
	require.NoError(t, err)
	assert.Equal(t, "floor sensors v2", detail.Name)
	assert.ElementsMatch(t, env.DeviceIDs, detail.DeviceIDs)
	assert.ElementsMatch(t, []string{"example.com", "localhost:3000"}, detail.DomainNames)

	// Submitting the same form again performs no update.
	again, err := console.OpenKeyEditor(ctx, env.Client, env.ProjectID, keyID, logger)
	require.NoError(t, err)
	noChange, err := again.Save(ctx)
	require.NoError(t, err)
	assert.True(t, noChange.NoChange)

	// Renew pushes the expiration out from now.
	renewer := console.NewRenewer(env.Client, logger)
	renewed, err := renewer.Renew(ctx, keyID, 365)
	require.NoError(t, err)
	require.True(t, renewed.Success)
	newExpiration, err := time.Parse(time.RFC3339, renewed.NewExpiration)
	require.NoError(t, err)
	assert.Greater(t, newExpiration.Sub(time.Now().UTC()), 360*24*time.Hour)

	// Delete through the directory empties it.
	require.NoError(t, directory.Delete(ctx, keyID))
	assert.Equal(t, console.StateEmpty, directory.State())

	_, err = env.Client.GetAccessKey(ctx, keyID)
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

// TestConsoleValidationAgainstBackend verifies the backend rejects what the
// client-side validation rejects, with the same message.
func TestConsoleValidationAgainstBackend(t *testing.T) {
	env := testenv.Setup(t)
	ctx := context.Background()

	_, err := env.Client.CreateAccessKey(ctx, &gateway.CreateAccessKeyRequest{
		Name:        "bad domains",
		ProjectID:   env.ProjectID,
		DeviceIDs:   env.DeviceIDs[:1],
		DomainNames: []string{"not a domain"},
		Duration:    30,
	})
	var reqErr *gateway.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "validation_failed", reqErr.Code)
	assert.Equal(t, "Invalid domain name: not a domain", reqErr.Message)
}

// TestSessionGuard verifies a dead session surfaces through the directory's
// session hook instead of being swallowed.
func TestSessionGuard(t *testing.T) {
	env := testenv.Setup(t)
	ctx := context.Background()

	badClient := env.ClientWithToken("wrong-token")
	directory := console.NewDirectory(badClient, env.ProjectID, discardLogger())

	var seen error
	directory.OnSessionError(func(err error) { seen = err })

	require.True(t, directory.Refresh(ctx))
	assert.Equal(t, console.StateError, directory.State())
	assert.ErrorIs(t, seen, gateway.ErrUnauthorized)
}

// TestScopedSessionForbidden verifies a session scoped to another project
// cannot read this project's keys.
func TestScopedSessionForbidden(t *testing.T) {
	env := testenv.Setup(t)
	ctx := context.Background()

	other, err := env.Store.CreateProject(ctx, "other")
	require.NoError(t, err)
	_, err = env.Store.CreateSession(ctx, "scoped", "scoped-token", &other.ID, nil)
	require.NoError(t, err)

	scoped := env.ClientWithToken("scoped-token")
	_, err = scoped.ListAccessKeys(ctx, env.ProjectID)
	assert.ErrorIs(t, err, gateway.ErrForbidden)
}

// TestDataPlaneIngest verifies the credential pair handed out at creation
// authenticates device traffic and stamps the key's last-use time.
func TestDataPlaneIngest(t *testing.T) {
	env := testenv.Setup(t)
	ctx := context.Background()

	created, err := env.Client.CreateAccessKey(ctx, &gateway.CreateAccessKeyRequest{
		Name:        "ingest key",
		ProjectID:   env.ProjectID,
		DeviceIDs:   env.DeviceIDs,
		DomainNames: []string{"example.com"},
		Duration:    30,
	})
	require.NoError(t, err)

	ingest := func(clientKey, secret string, deviceID int64) *http.Response {
		body, err := json.Marshal(map[string]any{"device_id": deviceID})
		require.NoError(t, err)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, env.Server.URL+"/ingest", bytes.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("X-Client-Access-Key", clientKey)
		req.Header.Set("X-Secret-Access-Key", secret)
		req.Header.Set("Origin", "https://example.com")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := ingest(created.ClientAccessKey, created.SecretAccessKey, env.DeviceIDs[0])
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	detail, err := env.Client.GetAccessKey(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.LastUseTime)
	lastUse, err := time.Parse(time.RFC3339, *detail.LastUseTime)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), lastUse, time.Minute)

	// A wrong secret is rejected against the stored bcrypt hash.
	resp = ingest(created.ClientAccessKey, "not-the-secret", env.DeviceIDs[0])
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// TestPublicDashboardFlow verifies the unauthenticated share view end to end.
func TestPublicDashboardFlow(t *testing.T) {
	env := testenv.Setup(t)
	ctx := context.Background()

	share, err := env.Store.CreateShare(ctx, env.ProjectID, "e2e-share-token", "ops wall", []int64{3, 1}, nil)
	require.NoError(t, err)

	view, err := env.Client.GetPublicDashboard(ctx, share.Token)
	require.NoError(t, err)
	assert.Equal(t, "ops wall", view.ShareName)
	assert.Equal(t, []int64{3, 1}, view.WidgetIDs)

	// Deactivating the share hides the view.
	inactive := false
	_, err = env.Store.UpdateShare(ctx, share.ID, &storage.SharePatch{Active: &inactive})
	require.NoError(t, err)

	_, err = env.Client.GetPublicDashboard(ctx, share.Token)
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}
