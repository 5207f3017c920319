// Package worker provides the background maintenance jobs the server runs
// alongside request handling.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/docket-api/internal/platform/metrics"
	"github.com/phrazzld/docket-api/internal/store"
)

// SessionReaper periodically deletes expired and revoked sessions.
// Liveness checks never depend on it: an expired session stops resolving
// the moment it expires, whether or not the row still exists. The reaper
// only keeps the sessions table from growing without bound.
type SessionReaper struct {
	sessionStore store.SessionStore
	collector    *metrics.Collector
	interval     time.Duration
	logger       *slog.Logger

	cancelFunc context.CancelFunc
	wg         sync.WaitGroup

	// timeFunc returns the current time. Extracted so the reap cutoff can
	// be tested against a fixed clock.
	timeFunc func() time.Time
}

// NewSessionReaper creates a new SessionReaper. An interval of zero or
// less falls back to one hour.
func NewSessionReaper(
	sessionStore store.SessionStore,
	collector *metrics.Collector,
	interval time.Duration,
	logger *slog.Logger,
) *SessionReaper {
	if sessionStore == nil {
		panic("sessionStore cannot be nil")
	}
	if collector == nil {
		panic("collector cannot be nil")
	}
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionReaper{
		sessionStore: sessionStore,
		collector:    collector,
		interval:     interval,
		logger:       logger.With("component", "session_reaper"),
		timeFunc:     time.Now,
	}
}

// Start launches the reap loop in a background goroutine. The first sweep
// runs immediately; later sweeps follow the configured interval until
// Stop is called.
func (r *SessionReaper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancelFunc = cancel

	r.wg.Add(1)
	go r.loop(ctx)

	r.logger.Info("session reaper started",
		"interval", r.interval)
}

// Stop cancels the reap loop and waits for an in-flight sweep to finish.
func (r *SessionReaper) Stop() {
	if r.cancelFunc == nil {
		return
	}
	r.cancelFunc()
	r.wg.Wait()

	r.logger.Info("session reaper stopped")
}

func (r *SessionReaper) loop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	if _, err := r.RunOnce(ctx); err != nil {
		r.logger.Error("session sweep failed",
			"error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				r.logger.Error("session sweep failed",
					"error", err)
			}
		}
	}
}

// RunOnce performs a single sweep, deleting sessions that expired before
// now along with revoked ones, and returns the number of rows removed.
// Idempotent: a sweep with nothing to remove succeeds with zero.
func (r *SessionReaper) RunOnce(ctx context.Context) (int64, error) {
	start := time.Now()
	cutoff := r.timeFunc().UTC()

	reaped, err := r.sessionStore.DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	r.collector.RecordSessionsReaped(reaped)

	if reaped > 0 {
		r.logger.Info("session sweep completed",
			"reaped_count", reaped,
			"duration_ms", time.Since(start).Milliseconds())
	} else {
		r.logger.Debug("session sweep found nothing to reap")
	}

	return reaped, nil
}
