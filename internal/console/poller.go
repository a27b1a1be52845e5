package console

import (
	"context"
	"log/slog"
	"time"
)

// Poller refreshes a directory at a fixed interval until its context is
// cancelled. Each tick replaces the directory's contents wholesale; ticks
// that land while a refresh is still in flight are dropped by the
// directory's busy guard.
type Poller struct {
	directory *Directory
	interval  time.Duration
	logger    *slog.Logger
}

// NewPoller creates a poller over the directory.
func NewPoller(directory *Directory, interval time.Duration, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		directory: directory,
		interval:  interval,
		logger:    logger,
	}
}

// Run refreshes immediately, then on every tick until ctx is cancelled.
// It blocks; run it in its own goroutine.
func (p *Poller) Run(ctx context.Context) {
	p.directory.Refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("directory poller stopped")
			return
		case <-ticker.C:
			if !p.directory.Refresh(ctx) {
				p.logger.Debug("directory refresh skipped, previous still in flight")
			}
		}
	}
}
