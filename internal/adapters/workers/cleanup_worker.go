package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/campusforge/account-security-service/internal/application"
	"github.com/campusforge/account-security-service/internal/ports"
)

const sweepLeaseName = "session-cleanup"

// CleanupWorker runs the periodic expired-session sweep off the request path.
// A Redis lease keeps the sweep single-flight across instances; losing the
// lease race just skips the iteration.
type CleanupWorker struct {
	logger   *slog.Logger
	service  *application.Service
	lease    ports.SweepLease
	interval time.Duration
}

// NewCleanupWorker constructs the sweep loop with sane defaults.
func NewCleanupWorker(
	logger *slog.Logger,
	service *application.Service,
	lease ports.SweepLease,
	interval time.Duration,
) *CleanupWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &CleanupWorker{
		logger:   logger,
		service:  service,
		lease:    lease,
		interval: interval,
	}
}

// Run executes the periodic sweep until context cancellation.
func (w *CleanupWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.sweepOnce(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *CleanupWorker) sweepOnce(ctx context.Context) {
	if w.lease != nil {
		acquired, err := w.lease.Acquire(ctx, sweepLeaseName, w.interval)
		if err != nil {
			// Lease state unknown: sweep anyway. A duplicate sweep deletes the
			// same expired rows twice, which is harmless.
			w.logger.WarnContext(ctx, "sweep lease unavailable",
				"module", "workers.cleanup_worker",
				"layer", "adapter",
				"operation", "acquire_sweep_lease",
				"outcome", "failure",
				"error", err,
			)
		} else if !acquired {
			return
		}
	}

	deleted := w.service.CleanupExpiredSessions(ctx)
	w.logger.InfoContext(ctx, "session sweep completed",
		"module", "workers.cleanup_worker",
		"layer", "adapter",
		"operation", "sweep_once",
		"outcome", "success",
		"deleted_count", deleted,
	)
}
