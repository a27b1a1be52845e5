package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateDevice registers a device under a project.
// Returns ErrNotFound if the project doesn't exist.
func (s *SQLiteStorage) CreateDevice(ctx context.Context, projectID int64, name, description string) (*Device, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO devices (project_id, device_name, description) VALUES (?, ?, ?)",
		projectID, name, description)
	if err != nil {
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get insert ID: %w", err)
	}

	var d Device
	err = s.db.QueryRowContext(ctx,
		"SELECT device_id, project_id, device_name, description, created_at FROM devices WHERE device_id = ?",
		id).
		Scan(&d.ID, &d.ProjectID, &d.Name, &d.Description, &d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to read back device: %w", err)
	}

	return &d, nil
}

// ListDevicesByProject returns all devices registered under a project.
// Returns empty slice if no devices exist.
func (s *SQLiteStorage) ListDevicesByProject(ctx context.Context, projectID int64) ([]*Device, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT device_id, project_id, device_name, description, created_at FROM devices WHERE project_id = ? ORDER BY device_id ASC",
		projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var devices []*Device
	for rows.Next() {
		var d Device
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.Name, &d.Description, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device row: %w", err)
		}
		devices = append(devices, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating devices: %w", err)
	}

	if devices == nil {
		devices = make([]*Device, 0)
	}

	return devices, nil
}

// devicesBelongToProject verifies every ID in deviceIDs is a device of the
// given project. Returns ErrForeignProject on the first mismatch.
func (s *SQLiteStorage) devicesBelongToProject(ctx context.Context, projectID int64, deviceIDs []int64) error {
	for _, deviceID := range deviceIDs {
		var owner int64
		err := s.db.QueryRowContext(ctx,
			"SELECT project_id FROM devices WHERE device_id = ?", deviceID).
			Scan(&owner)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: device %d", ErrForeignProject, deviceID)
		}
		if err != nil {
			return fmt.Errorf("failed to look up device %d: %w", deviceID, err)
		}
		if owner != projectID {
			return fmt.Errorf("%w: device %d", ErrForeignProject, deviceID)
		}
	}
	return nil
}
