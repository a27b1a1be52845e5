// Package mockstore provides a configurable mock implementation of the console
// API storage interface for testing.
//
// The MockStorage type uses function fields for each method, allowing tests to
// customize behavior as needed while providing sensible defaults for methods
// that aren't customized.
package mockstore

import (
	"context"
	"time"

	"github.com/datacanvas/datacanvas/internal/storage"
)

// MockStorage is a configurable mock implementation of the api.Storage
// interface. Each method can be customized by setting the corresponding
// function field. If a function field is nil, the method returns a sensible
// default value.
type MockStorage struct {
	// Project operations
	CreateProjectFunc func(ctx context.Context, name string) (*storage.Project, error)
	GetProjectFunc    func(ctx context.Context, id int64) (*storage.Project, error)
	ListProjectsFunc  func(ctx context.Context) ([]*storage.Project, error)

	// Device operations
	CreateDeviceFunc         func(ctx context.Context, projectID int64, name, description string) (*storage.Device, error)
	ListDevicesByProjectFunc func(ctx context.Context, projectID int64) ([]*storage.Device, error)

	// Session operations
	CreateSessionFunc         func(ctx context.Context, label, token string, projectID *int64, expiresAt *time.Time) (*storage.Session, error)
	GetSessionByTokenHashFunc func(ctx context.Context, tokenHash string) (*storage.Session, error)
	DeleteSessionFunc         func(ctx context.Context, id int64) error

	// Access key operations
	CreateAccessKeyFunc         func(ctx context.Context, key *storage.NewAccessKey) (*storage.AccessKeyDetail, error)
	GetAccessKeyFunc            func(ctx context.Context, id int64) (*storage.AccessKeyDetail, error)
	GetAccessKeyByClientKeyFunc func(ctx context.Context, clientKey string) (*storage.AccessKeyDetail, error)
	TouchAccessKeyFunc          func(ctx context.Context, id int64, when time.Time) error
	ListAccessKeysByProjectFunc func(ctx context.Context, projectID int64) ([]*storage.AccessKey, error)
	UpdateAccessKeyFunc         func(ctx context.Context, id int64, patch *storage.AccessKeyPatch) (*storage.AccessKeyDetail, error)
	RenewAccessKeyFunc          func(ctx context.Context, id int64, durationDays int) (time.Time, error)
	DeleteAccessKeyFunc         func(ctx context.Context, id int64) error

	// Share operations
	CreateShareFunc         func(ctx context.Context, projectID int64, token, name string, widgetIDs []int64, expiresAt *time.Time) (*storage.Share, error)
	ListSharesByProjectFunc func(ctx context.Context, projectID int64) ([]*storage.Share, error)
	GetShareFunc            func(ctx context.Context, id int64) (*storage.Share, error)
	GetShareByTokenFunc     func(ctx context.Context, token string) (*storage.Share, error)
	UpdateShareFunc         func(ctx context.Context, id int64, patch *storage.SharePatch) (*storage.Share, error)
	DeleteShareFunc         func(ctx context.Context, id int64) error

	// Lifecycle
	PingFunc  func(ctx context.Context) error
	CloseFunc func() error
}

// CreateProject creates a new project.
func (m *MockStorage) CreateProject(ctx context.Context, name string) (*storage.Project, error) {
	if m.CreateProjectFunc != nil {
		return m.CreateProjectFunc(ctx, name)
	}
	return &storage.Project{ID: 1, Name: name}, nil
}

// GetProject retrieves a project by ID.
func (m *MockStorage) GetProject(ctx context.Context, id int64) (*storage.Project, error) {
	if m.GetProjectFunc != nil {
		return m.GetProjectFunc(ctx, id)
	}
	return &storage.Project{ID: id, Name: "project"}, nil
}

// ListProjects retrieves all projects.
func (m *MockStorage) ListProjects(ctx context.Context) ([]*storage.Project, error) {
	if m.ListProjectsFunc != nil {
		return m.ListProjectsFunc(ctx)
	}
	return []*storage.Project{}, nil
}

// CreateDevice registers a device under a project.
func (m *MockStorage) CreateDevice(ctx context.Context, projectID int64, name, description string) (*storage.Device, error) {
	if m.CreateDeviceFunc != nil {
		return m.CreateDeviceFunc(ctx, projectID, name, description)
	}
	return &storage.Device{ID: 1, ProjectID: projectID, Name: name, Description: description}, nil
}

// ListDevicesByProject retrieves all devices for a project.
func (m *MockStorage) ListDevicesByProject(ctx context.Context, projectID int64) ([]*storage.Device, error) {
	if m.ListDevicesByProjectFunc != nil {
		return m.ListDevicesByProjectFunc(ctx, projectID)
	}
	return []*storage.Device{}, nil
}

// CreateSession stores a console session.
func (m *MockStorage) CreateSession(ctx context.Context, label, token string, projectID *int64, expiresAt *time.Time) (*storage.Session, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, label, token, projectID, expiresAt)
	}
	return &storage.Session{ID: 1, Label: label, ProjectID: projectID, ExpiresAt: expiresAt}, nil
}

// GetSessionByTokenHash retrieves a session by token hash.
func (m *MockStorage) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*storage.Session, error) {
	if m.GetSessionByTokenHashFunc != nil {
		return m.GetSessionByTokenHashFunc(ctx, tokenHash)
	}
	return nil, storage.ErrNotFound
}

// DeleteSession deletes a session by ID.
func (m *MockStorage) DeleteSession(ctx context.Context, id int64) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, id)
	}
	return nil
}

// CreateAccessKey creates an access key with its bindings.
func (m *MockStorage) CreateAccessKey(ctx context.Context, key *storage.NewAccessKey) (*storage.AccessKeyDetail, error) {
	if m.CreateAccessKeyFunc != nil {
		return m.CreateAccessKeyFunc(ctx, key)
	}
	return &storage.AccessKeyDetail{
		AccessKey: storage.AccessKey{
			ID:         1,
			ProjectID:  key.ProjectID,
			Name:       key.Name,
			ClientKey:  key.ClientKey,
			SecretHash: key.SecretHash,
		},
		DeviceIDs:   key.DeviceIDs,
		DomainNames: key.DomainNames,
	}, nil
}

// GetAccessKey retrieves an access key with its bindings.
func (m *MockStorage) GetAccessKey(ctx context.Context, id int64) (*storage.AccessKeyDetail, error) {
	if m.GetAccessKeyFunc != nil {
		return m.GetAccessKeyFunc(ctx, id)
	}
	return nil, storage.ErrNotFound
}

// GetAccessKeyByClientKey retrieves an access key by its client key.
func (m *MockStorage) GetAccessKeyByClientKey(ctx context.Context, clientKey string) (*storage.AccessKeyDetail, error) {
	if m.GetAccessKeyByClientKeyFunc != nil {
		return m.GetAccessKeyByClientKeyFunc(ctx, clientKey)
	}
	return nil, storage.ErrNotFound
}

// TouchAccessKey stamps the key's last-use time.
func (m *MockStorage) TouchAccessKey(ctx context.Context, id int64, when time.Time) error {
	if m.TouchAccessKeyFunc != nil {
		return m.TouchAccessKeyFunc(ctx, id, when)
	}
	return nil
}

// ListAccessKeysByProject retrieves all access keys for a project.
func (m *MockStorage) ListAccessKeysByProject(ctx context.Context, projectID int64) ([]*storage.AccessKey, error) {
	if m.ListAccessKeysByProjectFunc != nil {
		return m.ListAccessKeysByProjectFunc(ctx, projectID)
	}
	return []*storage.AccessKey{}, nil
}

// UpdateAccessKey applies a partial patch to an access key.
func (m *MockStorage) UpdateAccessKey(ctx context.Context, id int64, patch *storage.AccessKeyPatch) (*storage.AccessKeyDetail, error) {
	if m.UpdateAccessKeyFunc != nil {
		return m.UpdateAccessKeyFunc(ctx, id, patch)
	}
	return nil, storage.ErrNotFound
}

// RenewAccessKey re-bases an access key's expiration.
func (m *MockStorage) RenewAccessKey(ctx context.Context, id int64, durationDays int) (time.Time, error) {
	if m.RenewAccessKeyFunc != nil {
		return m.RenewAccessKeyFunc(ctx, id, durationDays)
	}
	return time.Now().AddDate(0, 0, durationDays), nil
}

// DeleteAccessKey deletes an access key by ID.
func (m *MockStorage) DeleteAccessKey(ctx context.Context, id int64) error {
	if m.DeleteAccessKeyFunc != nil {
		return m.DeleteAccessKeyFunc(ctx, id)
	}
	return nil
}

// CreateShare creates a dashboard share.
func (m *MockStorage) CreateShare(ctx context.Context, projectID int64, token, name string, widgetIDs []int64, expiresAt *time.Time) (*storage.Share, error) {
	if m.CreateShareFunc != nil {
		return m.CreateShareFunc(ctx, projectID, token, name, widgetIDs, expiresAt)
	}
	return &storage.Share{ID: 1, ProjectID: projectID, Token: token, Name: name, WidgetIDs: widgetIDs, Active: true, ExpiresAt: expiresAt}, nil
}

// ListSharesByProject retrieves all shares for a project.
func (m *MockStorage) ListSharesByProject(ctx context.Context, projectID int64) ([]*storage.Share, error) {
	if m.ListSharesByProjectFunc != nil {
		return m.ListSharesByProjectFunc(ctx, projectID)
	}
	return []*storage.Share{}, nil
}

// GetShare retrieves a share by ID.
func (m *MockStorage) GetShare(ctx context.Context, id int64) (*storage.Share, error) {
	if m.GetShareFunc != nil {
		return m.GetShareFunc(ctx, id)
	}
	return nil, storage.ErrNotFound
}

// GetShareByToken retrieves a share by its public token.
func (m *MockStorage) GetShareByToken(ctx context.Context, token string) (*storage.Share, error) {
	if m.GetShareByTokenFunc != nil {
		return m.GetShareByTokenFunc(ctx, token)
	}
	return nil, storage.ErrNotFound
}

// UpdateShare applies a partial patch to a share.
func (m *MockStorage) UpdateShare(ctx context.Context, id int64, patch *storage.SharePatch) (*storage.Share, error) {
	if m.UpdateShareFunc != nil {
		return m.UpdateShareFunc(ctx, id, patch)
	}
	return nil, storage.ErrNotFound
}

// DeleteShare deletes a share by ID.
func (m *MockStorage) DeleteShare(ctx context.Context, id int64) error {
	if m.DeleteShareFunc != nil {
		return m.DeleteShareFunc(ctx, id)
	}
	return nil
}

// Ping checks database connectivity.
func (m *MockStorage) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// Close closes the storage.
func (m *MockStorage) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
