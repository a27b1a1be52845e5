package storage

import (
	"context"
	"time"
)

// Storage defines the interface for SQLite persistence operations.
type Storage interface {
	// Project operations
	CreateProject(ctx context.Context, name string) (*Project, error)
	GetProject(ctx context.Context, id int64) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)

	// Device operations
	CreateDevice(ctx context.Context, projectID int64, name, description string) (*Device, error)
	ListDevicesByProject(ctx context.Context, projectID int64) ([]*Device, error)

	// Session operations
	CreateSession(ctx context.Context, label, token string, projectID *int64, expiresAt *time.Time) (*Session, error)
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	DeleteSession(ctx context.Context, id int64) error

	// Access key operations
	CreateAccessKey(ctx context.Context, key *NewAccessKey) (*AccessKeyDetail, error)
	GetAccessKey(ctx context.Context, id int64) (*AccessKeyDetail, error)
	GetAccessKeyByClientKey(ctx context.Context, clientKey string) (*AccessKeyDetail, error)
	TouchAccessKey(ctx context.Context, id int64, when time.Time) error
	ListAccessKeysByProject(ctx context.Context, projectID int64) ([]*AccessKey, error)
	UpdateAccessKey(ctx context.Context, id int64, patch *AccessKeyPatch) (*AccessKeyDetail, error)
	RenewAccessKey(ctx context.Context, id int64, durationDays int) (time.Time, error)
	DeleteAccessKey(ctx context.Context, id int64) error

	// Share operations
	CreateShare(ctx context.Context, projectID int64, token, name string, widgetIDs []int64, expiresAt *time.Time) (*Share, error)
	ListSharesByProject(ctx context.Context, projectID int64) ([]*Share, error)
	GetShare(ctx context.Context, id int64) (*Share, error)
	GetShareByToken(ctx context.Context, token string) (*Share, error)
	UpdateShare(ctx context.Context, id int64, patch *SharePatch) (*Share, error)
	DeleteShare(ctx context.Context, id int64) error

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}
