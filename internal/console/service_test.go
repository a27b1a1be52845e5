package console

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/datacanvas/datacanvas/internal/gateway"
)

// fakeService is a configurable KeyService with per-method call counters.
type fakeService struct {
	listKeysFunc   func(ctx context.Context, projectID int64) ([]gateway.AccessKey, error)
	getKeyFunc     func(ctx context.Context, id int64) (*gateway.AccessKey, error)
	createKeyFunc  func(ctx context.Context, req *gateway.CreateAccessKeyRequest) (*gateway.CreatedAccessKey, error)
	updateKeyFunc  func(ctx context.Context, id int64, req *gateway.UpdateAccessKeyRequest) (*gateway.AccessKey, error)
	deleteKeyFunc  func(ctx context.Context, id int64) error
	renewKeyFunc   func(ctx context.Context, id int64, durationDays int) (*gateway.RenewResult, error)
	listDevsFunc   func(ctx context.Context, projectID int64) ([]gateway.Device, error)
	listKeysCalls  atomic.Int64
	updateKeyCalls atomic.Int64
	createKeyCalls atomic.Int64
	deleteKeyCalls atomic.Int64
}

func (f *fakeService) ListAccessKeys(ctx context.Context, projectID int64) ([]gateway.AccessKey, error) {
	f.listKeysCalls.Add(1)
	if f.listKeysFunc != nil {
		return f.listKeysFunc(ctx, projectID)
	}
	return []gateway.AccessKey{}, nil
}

func (f *fakeService) GetAccessKey(ctx context.Context, id int64) (*gateway.AccessKey, error) {
	if f.getKeyFunc != nil {
		return f.getKeyFunc(ctx, id)
	}
	return nil, gateway.ErrNotFound
}

func (f *fakeService) CreateAccessKey(ctx context.Context, req *gateway.CreateAccessKeyRequest) (*gateway.CreatedAccessKey, error) {
	f.createKeyCalls.Add(1)
	if f.createKeyFunc != nil {
		return f.createKeyFunc(ctx, req)
	}
	return &gateway.CreatedAccessKey{
		AccessKey: gateway.AccessKey{
			ID:          1,
			Name:        req.Name,
			ProjectID:   req.ProjectID,
			DeviceIDs:   req.DeviceIDs,
			DomainNames: req.DomainNames,
		},
		ClientAccessKey: "client-key",
		SecretAccessKey: "secret-key",
	}, nil
}

func (f *fakeService) UpdateAccessKey(ctx context.Context, id int64, req *gateway.UpdateAccessKeyRequest) (*gateway.AccessKey, error) {
	f.updateKeyCalls.Add(1)
	if f.updateKeyFunc != nil {
		return f.updateKeyFunc(ctx, id, req)
	}
	return &gateway.AccessKey{ID: id}, nil
}

func (f *fakeService) DeleteAccessKey(ctx context.Context, id int64) error {
	f.deleteKeyCalls.Add(1)
	if f.deleteKeyFunc != nil {
		return f.deleteKeyFunc(ctx, id)
	}
	return nil
}

func (f *fakeService) RenewAccessKey(ctx context.Context, id int64, durationDays int) (*gateway.RenewResult, error) {
	if f.renewKeyFunc != nil {
		return f.renewKeyFunc(ctx, id, durationDays)
	}
	return &gateway.RenewResult{Success: true, NewExpiration: "2026-12-01T00:00:00Z"}, nil
}

func (f *fakeService) ListDevices(ctx context.Context, projectID int64) ([]gateway.Device, error) {
	if f.listDevsFunc != nil {
		return f.listDevsFunc(ctx, projectID)
	}
	return []gateway.Device{}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func twoDevices() []gateway.Device {
	return []gateway.Device{
		{ID: 1, Name: "probe-a"},
		{ID: 2, Name: "probe-b"},
	}
}
