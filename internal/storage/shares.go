package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// CreateShare creates a public dashboard share link.
// Returns ErrNotFound if the project doesn't exist and ErrDuplicate if the
// token is already in use.
func (s *SQLiteStorage) CreateShare(ctx context.Context, projectID int64, token, name string, widgetIDs []int64, expiresAt *time.Time) (*Share, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	widgetsJSON, err := marshalWidgetIDs(widgetIDs)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO shares (project_id, share_token, share_name, allowed_widget_ids, expires_at) VALUES (?, ?, ?, ?, ?)",
		projectID, token, name, widgetsJSON, expiresAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert share: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get insert ID: %w", err)
	}

	return s.GetShare(ctx, id)
}

// ListSharesByProject returns all shares for a project, newest first.
// Returns empty slice if no shares exist.
func (s *SQLiteStorage) ListSharesByProject(ctx context.Context, projectID int64) ([]*Share, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT share_id, project_id, share_token, share_name, allowed_widget_ids, is_active, expires_at, created_at
		 FROM shares WHERE project_id = ? ORDER BY created_at DESC, share_id DESC`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shares: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var shares []*Share
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, share)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shares: %w", err)
	}

	if shares == nil {
		shares = make([]*Share, 0)
	}

	return shares, nil
}

// GetShareByToken retrieves a share by its public token.
// Returns ErrNotFound if no share matches.
func (s *SQLiteStorage) GetShareByToken(ctx context.Context, token string) (*Share, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT share_id, project_id, share_token, share_name, allowed_widget_ids, is_active, expires_at, created_at
		 FROM shares WHERE share_token = ?`,
		token)
	return scanShare(row)
}

// UpdateShare applies a partial patch to a share.
// Returns ErrNotFound if the share doesn't exist.
func (s *SQLiteStorage) UpdateShare(ctx context.Context, id int64, patch *SharePatch) (*Share, error) {
	if _, err := s.GetShare(ctx, id); err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if _, err := s.db.ExecContext(ctx,
			"UPDATE shares SET share_name = ? WHERE share_id = ?", *patch.Name, id); err != nil {
			return nil, fmt.Errorf("failed to update share name: %w", err)
		}
	}

	if patch.WidgetIDs != nil {
		widgetsJSON, err := marshalWidgetIDs(patch.WidgetIDs)
		if err != nil {
			return nil, err
		}
		if _, err := s.db.ExecContext(ctx,
			"UPDATE shares SET allowed_widget_ids = ? WHERE share_id = ?", widgetsJSON, id); err != nil {
			return nil, fmt.Errorf("failed to update share widgets: %w", err)
		}
	}

	if patch.Active != nil {
		if _, err := s.db.ExecContext(ctx,
			"UPDATE shares SET is_active = ? WHERE share_id = ?", *patch.Active, id); err != nil {
			return nil, fmt.Errorf("failed to update share active flag: %w", err)
		}
	}

	if patch.ExpiresAt != nil {
		if _, err := s.db.ExecContext(ctx,
			"UPDATE shares SET expires_at = ? WHERE share_id = ?", *patch.ExpiresAt, id); err != nil {
			return nil, fmt.Errorf("failed to update share expiry: %w", err)
		}
	}

	return s.GetShare(ctx, id)
}

// DeleteShare deletes a share by ID.
// Returns ErrNotFound if the share doesn't exist.
func (s *SQLiteStorage) DeleteShare(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM shares WHERE share_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete share: %w", err)
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

// GetShare retrieves a share by ID.
// Returns ErrNotFound if the share doesn't exist.
func (s *SQLiteStorage) GetShare(ctx context.Context, id int64) (*Share, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT share_id, project_id, share_token, share_name, allowed_widget_ids, is_active, expires_at, created_at
		 FROM shares WHERE share_id = ?`,
		id)
	return scanShare(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShare(row rowScanner) (*Share, error) {
	var share Share
	var widgetsJSON string
	err := row.Scan(&share.ID, &share.ProjectID, &share.Token, &share.Name,
		&widgetsJSON, &share.Active, &share.ExpiresAt, &share.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan share: %w", err)
	}

	if err := json.Unmarshal([]byte(widgetsJSON), &share.WidgetIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal widget IDs: %w", err)
	}
	if share.WidgetIDs == nil {
		share.WidgetIDs = make([]int64, 0)
	}

	return &share, nil
}

func marshalWidgetIDs(ids []int64) (string, error) {
	if ids == nil {
		ids = make([]int64, 0)
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to marshal widget IDs: %w", err)
	}
	return string(data), nil
}
