package core

// scheduler.go runs background maintenance for the service.
//
// Requests remove their own spool files, but a crash or a killed request can
// leave files behind. The sweeper removes spool files older than MaxAge. It
// is long-running and stops when its context is cancelled; a failed sweep is
// logged and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// SweepConfig holds configuration for the spool sweeper.
type SweepConfig struct {
	MaxAge        time.Duration // Age after which a spool file is stale (default: 1h)
	CheckInterval time.Duration // How often to sweep (default: 10m)
}

// StartSpoolSweeper sweeps immediately, then every CheckInterval, until ctx
// is cancelled.
func (s *Service) StartSpoolSweeper(ctx context.Context, cfg SweepConfig) {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = time.Hour
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 10 * time.Minute
	}

	slog.Info("spool sweeper started",
		"dir", s.spool.Dir(),
		"max_age", cfg.MaxAge.String(),
		"interval", cfg.CheckInterval.String(),
	)

	s.runSweep(cfg)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("spool sweeper stopped")
			return
		case <-ticker.C:
			s.runSweep(cfg)
		}
	}
}

// runSweep performs one sweep.
func (s *Service) runSweep(cfg SweepConfig) {
	start := time.Now()
	removed, err := s.spool.Sweep(cfg.MaxAge, start)
	if err != nil {
		slog.Error("spool sweep failed", "error", err, "removed", removed)
		return
	}
	if removed > 0 {
		slog.Info("removed stale spool files",
			"removed", removed,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
