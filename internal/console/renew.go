package console

import (
	"context"
	"log/slog"
	"time"

	"github.com/datacanvas/datacanvas/internal/gateway"
)

// Renewer drives the expiration renewal dialog for a single key.
type Renewer struct {
	service KeyService
	logger  *slog.Logger
}

// NewRenewer creates a renewer.
func NewRenewer(service KeyService, logger *slog.Logger) *Renewer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renewer{service: service, logger: logger}
}

// CanRenew reports whether the renewal flow applies to the key. Renewal is
// offered for expired credentials only; live ones are edited instead.
func CanRenew(key *gateway.AccessKey) bool {
	return key != nil && key.IsExpired
}

// Durations returns the selectable renewal durations in days.
func (r *Renewer) Durations() []int {
	durations := make([]int, len(ValidDurations))
	copy(durations, ValidDurations)
	return durations
}

// DurationOption pairs a renewal duration with the expiration date it would
// produce.
type DurationOption struct {
	Days    int
	Expires time.Time
}

// DurationOptions returns the selectable durations with the concrete
// expiration each would yield if applied at now, for display in the dialog.
func (r *Renewer) DurationOptions(now time.Time) []DurationOption {
	options := make([]DurationOption, len(ValidDurations))
	for i, days := range ValidDurations {
		options[i] = DurationOption{Days: days, Expires: now.AddDate(0, 0, days)}
	}
	return options
}

// Renew re-bases the key's expiration from now by the chosen duration.
// The duration must be one of Durations.
func (r *Renewer) Renew(ctx context.Context, keyID int64, durationDays int) (*gateway.RenewResult, error) {
	if !validDuration(durationDays) {
		return nil, validationErr("Duration must be one of 7, 30, 60, 90, 180, or 365 days")
	}

	result, err := r.service.RenewAccessKey(ctx, keyID, durationDays)
	if err != nil {
		return nil, err
	}

	r.logger.Info("access key renewed",
		"access_key_id", keyID,
		"duration_days", durationDays,
		"new_expiration", result.NewExpiration,
	)
	return result, nil
}
