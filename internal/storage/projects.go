package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateProject creates a new project.
func (s *SQLiteStorage) CreateProject(ctx context.Context, name string) (*Project, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO projects (project_name) VALUES (?)", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get insert ID: %w", err)
	}

	return s.GetProject(ctx, id)
}

// GetProject retrieves a project by ID.
// Returns ErrNotFound if the project doesn't exist.
func (s *SQLiteStorage) GetProject(ctx context.Context, id int64) (*Project, error) {
	var p Project
	err := s.db.QueryRowContext(ctx,
		"SELECT project_id, project_name, created_at FROM projects WHERE project_id = ?",
		id).
		Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &p, nil
}

// ListProjects returns all projects.
// Returns empty slice if no projects exist.
func (s *SQLiteStorage) ListProjects(ctx context.Context) ([]*Project, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT project_id, project_name, created_at FROM projects ORDER BY project_id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var projects []*Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	if projects == nil {
		projects = make([]*Project, 0)
	}

	return projects, nil
}
