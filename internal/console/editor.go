package console

import (
	"context"
	"log/slog"

	"github.com/datacanvas/datacanvas/internal/gateway"
)

// DefaultDuration is the duration preselected for new keys, in days.
const DefaultDuration = 30

// keySnapshot captures the loaded state of an existing key so Save can send
// only what actually changed.
type keySnapshot struct {
	name      string
	deviceIDs map[int64]bool
	domains   map[string]bool
}

// Editor drives the access key form, in create mode or edit mode. Fields are
// mutated through the embedded selectors and the Name and Duration fields,
// then validated and persisted with Save.
type Editor struct {
	service   KeyService
	projectID int64
	logger    *slog.Logger

	keyID    int64
	snapshot *keySnapshot

	Name     string
	Devices  *DeviceSelector
	Domains  *DomainListEditor
	Duration int
}

// SaveResult reports what Save did. Exactly one of the fields is meaningful:
// Created for create mode, Updated for an edit that changed something, and
// NoChange for an edit that matched the loaded state.
type SaveResult struct {
	Created  *gateway.CreatedAccessKey
	Updated  *gateway.AccessKey
	NoChange bool
}

// NewKeyEditor opens the editor in create mode, with the project's devices
// loaded and a single blank domain slot.
func NewKeyEditor(ctx context.Context, service KeyService, projectID int64, logger *slog.Logger) (*Editor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	devices, err := service.ListDevices(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &Editor{
		service:   service,
		projectID: projectID,
		logger:    logger,
		Devices:   NewDeviceSelector(devices, nil),
		Domains:   NewDomainListEditor(nil),
		Duration:  DefaultDuration,
	}, nil
}

// OpenKeyEditor opens the editor in edit mode, seeded from the key's current
// bindings. The loaded state becomes the snapshot that Save diffs against.
func OpenKeyEditor(ctx context.Context, service KeyService, projectID, keyID int64, logger *slog.Logger) (*Editor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	devices, err := service.ListDevices(ctx, projectID)
	if err != nil {
		return nil, err
	}

	key, err := service.GetAccessKey(ctx, keyID)
	if err != nil {
		return nil, err
	}

	return &Editor{
		service:   service,
		projectID: projectID,
		logger:    logger,
		keyID:     keyID,
		snapshot:  newSnapshot(key.Name, key.DeviceIDs, key.DomainNames),
		Name:      key.Name,
		Devices:   NewDeviceSelector(devices, key.DeviceIDs),
		Domains:   NewDomainListEditor(key.DomainNames),
	}, nil
}

// IsCreate reports whether the editor is in create mode.
func (e *Editor) IsCreate() bool {
	return e.snapshot == nil
}

// Validate checks the form in presentation order: name, devices, domains,
// then duration for new keys. The returned error is a ValidationError with
// the first failing rule's message.
func (e *Editor) Validate() error {
	if err := validateName(e.Name); err != nil {
		return err
	}
	if len(e.Devices.Selected()) == 0 {
		return validationErr("At least one device is required")
	}
	if _, err := cleanDomains(e.Domains.Slots()); err != nil {
		return err
	}
	if e.IsCreate() && !validDuration(e.Duration) {
		return validationErr("Duration must be one of 7, 30, 60, 90, 180, or 365 days")
	}
	return nil
}

// Save validates and persists the form. In edit mode it sends a patch holding
// only the fields that differ from the loaded snapshot; when nothing differs
// it performs no request at all and reports NoChange. A successful update
// becomes the new snapshot, so a further Save diffs against the saved state.
func (e *Editor) Save(ctx context.Context) (*SaveResult, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	domains, err := cleanDomains(e.Domains.Slots())
	if err != nil {
		return nil, err
	}
	deviceIDs := e.Devices.Selected()

	if e.IsCreate() {
		created, err := e.service.CreateAccessKey(ctx, &gateway.CreateAccessKeyRequest{
			Name:        e.Name,
			ProjectID:   e.projectID,
			DomainNames: domains,
			DeviceIDs:   deviceIDs,
			Duration:    e.Duration,
		})
		if err != nil {
			return nil, err
		}
		e.logger.Info("access key created", "access_key_id", created.ID)
		return &SaveResult{Created: created}, nil
	}

	patch := &gateway.UpdateAccessKeyRequest{}
	changed := false

	if e.Name != e.snapshot.name {
		name := e.Name
		patch.Name = &name
		changed = true
	}
	if !sameIDSet(deviceIDs, e.snapshot.deviceIDs) {
		patch.DeviceIDs = deviceIDs
		changed = true
	}
	if !sameStringSet(domains, e.snapshot.domains) {
		patch.DomainNames = domains
		changed = true
	}

	if !changed {
		return &SaveResult{NoChange: true}, nil
	}

	updated, err := e.service.UpdateAccessKey(ctx, e.keyID, patch)
	if err != nil {
		return nil, err
	}
	e.snapshot = newSnapshot(e.Name, deviceIDs, domains)
	e.logger.Info("access key updated", "access_key_id", e.keyID)
	return &SaveResult{Updated: updated}, nil
}

// newSnapshot builds the diff baseline from a saved form state.
func newSnapshot(name string, deviceIDs []int64, domains []string) *keySnapshot {
	snap := &keySnapshot{
		name:      name,
		deviceIDs: make(map[int64]bool, len(deviceIDs)),
		domains:   make(map[string]bool, len(domains)),
	}
	for _, id := range deviceIDs {
		snap.deviceIDs[id] = true
	}
	for _, d := range domains {
		snap.domains[d] = true
	}
	return snap
}

// sameIDSet reports whether ids holds exactly the members of want.
func sameIDSet(ids []int64, want map[int64]bool) bool {
	if len(ids) != len(want) {
		return false
	}
	for _, id := range ids {
		if !want[id] {
			return false
		}
	}
	return true
}

// sameStringSet reports whether values holds exactly the members of want.
func sameStringSet(values []string, want map[string]bool) bool {
	if len(values) != len(want) {
		return false
	}
	for _, v := range values {
		if !want[v] {
			return false
		}
	}
	return true
}
