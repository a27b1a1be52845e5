// Package console implements the access key management flows of the
// DataCanvas admin console: the credential directory, the key editor with
// diff-based saving, device and domain selectors, and the renewal flow.
package console

import (
	"context"

	"github.com/datacanvas/datacanvas/internal/gateway"
)

// KeyService is the slice of the console API client the console flows use.
// *gateway.Client satisfies it.
type KeyService interface {
	ListAccessKeys(ctx context.Context, projectID int64) ([]gateway.AccessKey, error)
	GetAccessKey(ctx context.Context, id int64) (*gateway.AccessKey, error)
	CreateAccessKey(ctx context.Context, req *gateway.CreateAccessKeyRequest) (*gateway.CreatedAccessKey, error)
	UpdateAccessKey(ctx context.Context, id int64, req *gateway.UpdateAccessKeyRequest) (*gateway.AccessKey, error)
	DeleteAccessKey(ctx context.Context, id int64) error
	RenewAccessKey(ctx context.Context, id int64, durationDays int) (*gateway.RenewResult, error)
	ListDevices(ctx context.Context, projectID int64) ([]gateway.Device, error)
}

var _ KeyService = (*gateway.Client)(nil)
