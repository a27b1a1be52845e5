package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/datacanvas/datacanvas/internal/storage"
)

// SessionStore is the subset of storage operations the bootstrap needs.
type SessionStore interface {
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*storage.Session, error)
	CreateSession(ctx context.Context, label, token string, projectID *int64, expiresAt *time.Time) (*storage.Session, error)
}

// BootstrapService seeds the initial console session from configuration so a
// fresh deployment can be administered without manual database edits.
type BootstrapService struct {
	sessions SessionStore
	logger   *slog.Logger
}

// NewBootstrapService creates a bootstrap service.
func NewBootstrapService(sessions SessionStore, logger *slog.Logger) *BootstrapService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BootstrapService{
		sessions: sessions,
		logger:   logger,
	}
}

// EnsureSession creates an unscoped, non-expiring session for the given token
// if one does not already exist. It is idempotent across restarts.
func (b *BootstrapService) EnsureSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	_, err := b.sessions.GetSessionByTokenHash(ctx, storage.HashSessionToken(token))
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to look up bootstrap session: %w", err)
	}

	session, err := b.sessions.CreateSession(ctx, "bootstrap", token, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create bootstrap session: %w", err)
	}

	b.logger.Info("bootstrap session created", "session_id", session.ID)
	return nil
}
