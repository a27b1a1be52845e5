package console

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/datacanvas/datacanvas/internal/gateway"
)

// ErrOperationInFlight is returned when a directory mutation is requested
// while another one is still pending.
var ErrOperationInFlight = errors.New("another operation is already in flight")

// DirectoryState is the render state of the credential directory.
type DirectoryState int

const (
	// StateIdle is the state before the first load.
	StateIdle DirectoryState = iota
	// StateLoading means a refresh is in flight.
	StateLoading
	// StatePopulated means the directory holds at least one key.
	StatePopulated
	// StateEmpty means the last refresh returned no keys.
	StateEmpty
	// StateError means the last refresh failed; Err holds the cause.
	StateError
)

// String returns the state name for logging.
func (s DirectoryState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePopulated:
		return "populated"
	case StateEmpty:
		return "empty"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Directory is the credential directory for one project. Each successful
// refresh replaces the key list wholesale. A refresh already in flight makes
// further Refresh calls no-ops until it completes.
type Directory struct {
	service   KeyService
	projectID int64
	logger    *slog.Logger

	mu        sync.Mutex
	busy      bool
	state     DirectoryState
	keys      []gateway.AccessKey
	err       error
	onSession SessionHandler
}

// NewDirectory creates a directory over the given project.
func NewDirectory(service KeyService, projectID int64, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		service:   service,
		projectID: projectID,
		logger:    logger,
		state:     StateIdle,
		keys:      []gateway.AccessKey{},
	}
}

// OnSessionError registers the handler invoked when a refresh or delete
// fails because the session is dead or lacks access to the project.
func (d *Directory) OnSessionError(h SessionHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onSession = h
}

// State returns the current render state.
func (d *Directory) State() DirectoryState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Keys returns a copy of the current key list.
func (d *Directory) Keys() []gateway.AccessKey {
	d.mu.Lock()
	defer d.mu.Unlock()
	keys := make([]gateway.AccessKey, len(d.keys))
	copy(keys, d.keys)
	return keys
}

// Err returns the error from the last failed refresh, or nil.
func (d *Directory) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// Refresh reloads the key list. Returns false without touching state when a
// refresh is already in flight.
func (d *Directory) Refresh(ctx context.Context) bool {
	d.mu.Lock()
	if d.busy {
		d.mu.Unlock()
		return false
	}
	d.busy = true
	d.state = StateLoading
	d.mu.Unlock()

	keys, err := d.service.ListAccessKeys(ctx, d.projectID)

	d.mu.Lock()
	d.busy = false
	handler := d.onSession

	if err != nil {
		d.logger.Warn("directory refresh failed", "project_id", d.projectID, "error", err)
		d.state = StateError
		d.err = err
		d.mu.Unlock()
		if handler != nil && IsSessionError(err) {
			handler(err)
		}
		return true
	}

	d.err = nil
	d.keys = keys
	if len(keys) == 0 {
		d.state = StateEmpty
	} else {
		d.state = StatePopulated
	}
	d.mu.Unlock()
	return true
}

// Delete removes a key and refreshes the directory on success. It shares the
// in-flight guard with Refresh, so a double-triggered delete dispatches only
// one request and the second call gets ErrOperationInFlight.
func (d *Directory) Delete(ctx context.Context, id int64) error {
	d.mu.Lock()
	if d.busy {
		d.mu.Unlock()
		return ErrOperationInFlight
	}
	d.busy = true
	d.mu.Unlock()

	err := d.service.DeleteAccessKey(ctx, id)

	d.mu.Lock()
	d.busy = false
	handler := d.onSession
	d.mu.Unlock()

	if err != nil {
		if handler != nil && IsSessionError(err) {
			handler(err)
		}
		return err
	}
	d.logger.Info("access key deleted from directory", "access_key_id", id)
	d.Refresh(ctx)
	return nil
}
