package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// HashSessionToken computes the SHA-256 hash of a bearer token for storage
// lookup. Unlike bcrypt, the hash is deterministic so it can serve as an index.
func HashSessionToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// CreateSession stores a new console session for the given bearer token.
// A nil projectID grants access to every project; a nil expiresAt never expires.
// Returns ErrDuplicate if a session for this token already exists.
func (s *SQLiteStorage) CreateSession(ctx context.Context, label, token string, projectID *int64, expiresAt *time.Time) (*Session, error) {
	tokenHash := HashSessionToken(token)

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (token_hash, label, project_id, expires_at) VALUES (?, ?, ?, ?)",
		tokenHash, label, projectID, expiresAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get insert ID: %w", err)
	}

	return &Session{
		ID:        id,
		TokenHash: tokenHash,
		Label:     label,
		ProjectID: projectID,
		ExpiresAt: expiresAt,
	}, nil
}

// GetSessionByTokenHash retrieves a session by its token hash.
// This is used during request authentication.
// Returns ErrNotFound if the hash doesn't exist.
func (s *SQLiteStorage) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx,
		"SELECT session_id, token_hash, label, project_id, created_at, expires_at FROM sessions WHERE token_hash = ?",
		tokenHash).
		Scan(&sess.ID, &sess.TokenHash, &sess.Label, &sess.ProjectID, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &sess, nil
}

// DeleteSession removes a session by ID.
// Returns ErrNotFound if the session doesn't exist.
func (s *SQLiteStorage) DeleteSession(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE session_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
