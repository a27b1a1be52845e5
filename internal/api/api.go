// Package api provides the console REST endpoints for the DataCanvas backend.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/datacanvas/datacanvas/internal/auth"
	"github.com/datacanvas/datacanvas/internal/storage"
)

// Handler provides console API endpoints
type Handler struct {
	storage  Storage
	logger   *slog.Logger
	logLevel *slog.LevelVar
}

// Storage interface for console API operations
type Storage interface {
	// Health check
	Ping(ctx context.Context) error
	Close() error

	// Project operations
	CreateProject(ctx context.Context, name string) (*storage.Project, error)
	GetProject(ctx context.Context, id int64) (*storage.Project, error)
	ListProjects(ctx context.Context) ([]*storage.Project, error)

	// Device operations
	CreateDevice(ctx context.Context, projectID int64, name, description string) (*storage.Device, error)
	ListDevicesByProject(ctx context.Context, projectID int64) ([]*storage.Device, error)

	// Session operations
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*storage.Session, error)

	// Access key operations
	CreateAccessKey(ctx context.Context, key *storage.NewAccessKey) (*storage.AccessKeyDetail, error)
	GetAccessKey(ctx context.Context, id int64) (*storage.AccessKeyDetail, error)
	GetAccessKeyByClientKey(ctx context.Context, clientKey string) (*storage.AccessKeyDetail, error)
	TouchAccessKey(ctx context.Context, id int64, when time.Time) error
	ListAccessKeysByProject(ctx context.Context, projectID int64) ([]*storage.AccessKey, error)
	UpdateAccessKey(ctx context.Context, id int64, patch *storage.AccessKeyPatch) (*storage.AccessKeyDetail, error)
	RenewAccessKey(ctx context.Context, id int64, durationDays int) (time.Time, error)
	DeleteAccessKey(ctx context.Context, id int64) error

	// Share operations
	CreateShare(ctx context.Context, projectID int64, token, name string, widgetIDs []int64, expiresAt *time.Time) (*storage.Share, error)
	ListSharesByProject(ctx context.Context, projectID int64) ([]*storage.Share, error)
	GetShare(ctx context.Context, id int64) (*storage.Share, error)
	GetShareByToken(ctx context.Context, token string) (*storage.Share, error)
	UpdateShare(ctx context.Context, id int64, patch *storage.SharePatch) (*storage.Share, error)
	DeleteShare(ctx context.Context, id int64) error
}

// NewHandler creates a console API handler
func NewHandler(storage Storage, logLevel *slog.LevelVar, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if logLevel == nil {
		logLevel = new(slog.LevelVar)
	}

	return &Handler{
		storage:  storage,
		logLevel: logLevel,
		logger:   logger,
	}
}

// SetLogLevelRequest is the request body for POST /loglevel
type SetLogLevelRequest struct {
	Level string `json:"level"`
}

// HandleSetLogLevel changes runtime log level
// POST /loglevel
// Body: {"level": "debug|info|warn|error"}
func (h *Handler) HandleSetLogLevel(w http.ResponseWriter, r *http.Request) {
	var req SetLogLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	var level slog.Level
	switch req.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest,
			"Invalid level (must be: debug, info, warn, error)")
		return
	}

	h.logLevel.Set(level)
	h.logger.Info("log level changed", "new_level", req.Level)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err := json.NewEncoder(w).Encode(map[string]string{
		"level": req.Level,
	})
	if err != nil {
		// Encoding errors are not critical for loglevel response
		_ = err
	}
}

// SessionResponse describes the authenticated session in API responses.
type SessionResponse struct {
	SessionID int64  `json:"session_id"`
	Label     string `json:"label"`
	ProjectID *int64 `json:"project_id"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// HandleWhoami returns the authenticated session
// GET /whoami
func (h *Handler) HandleWhoami(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		WriteError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "No session")
		return
	}

	resp := SessionResponse{
		SessionID: session.ID,
		Label:     session.Label,
		ProjectID: session.ProjectID,
	}
	if session.ExpiresAt != nil {
		resp.ExpiresAt = formatTime(*session.ExpiresAt)
	}

	w.Header().Set("Content-Type", "application/json")
	encErr := json.NewEncoder(w).Encode(resp)
	if encErr != nil {
		// Encoding errors are not critical for whoami response
		_ = encErr
	}
}

// formatTime renders timestamps in the wire format used across the API.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
