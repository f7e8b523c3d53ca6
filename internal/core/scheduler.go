package core

// scheduler.go runs the idle-session sweeper.
//
// Sessions only live in memory, so a browser that never comes back would
// otherwise keep its document forever. The sweeper runs on a ticker, logs
// what it removed and stops with its context.

import (
	"context"
	"log/slog"
	"time"
)

// SweepConfig holds configuration for the session sweeper.
type SweepConfig struct {
	MaxIdle       time.Duration // Sessions idle longer than this are dropped (default: 12h)
	CheckInterval time.Duration // How often to sweep (default: 10m)
}

func (c SweepConfig) withDefaults() SweepConfig {
	if c.MaxIdle <= 0 {
		c.MaxIdle = 12 * time.Hour
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 10 * time.Minute
	}
	return c
}

// StartSessionSweeper periodically removes idle sessions until ctx is cancelled.
// It blocks; run it in its own goroutine.
func (s *Service) StartSessionSweeper(ctx context.Context, cfg SweepConfig) {
	cfg = cfg.withDefaults()
	slog.Info("session sweeper started",
		"max_idle", cfg.MaxIdle.String(),
		"interval", cfg.CheckInterval.String(),
	)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.runSweep(cfg)
		}
	}
}

func (s *Service) runSweep(cfg SweepConfig) {
	start := time.Now()
	removed := s.store.Sweep(cfg.MaxIdle)
	if removed == 0 {
		slog.Debug("session sweep found nothing to remove", "live", s.store.Len())
		return
	}
	slog.Info("removed idle sessions",
		"removed", removed,
		"live", s.store.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
