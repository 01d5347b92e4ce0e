// Package sweeper runs the donation expiry sweep every day at midnight UTC.
package sweeper

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/leftoverhq/leftover/internal/clock"
	"github.com/leftoverhq/leftover/internal/metrics"
	"github.com/leftoverhq/leftover/internal/model"
	"github.com/leftoverhq/leftover/internal/store"
)

// Sweeper expires donations whose pickup window has ended.
type Sweeper struct {
	DB      *sql.DB
	Clock   clock.Clock
	Metrics *metrics.Metrics

	// after waits for d; time.After when nil.
	after func(d time.Duration) <-chan time.Time
}

// New creates a sweeper reading time from c.
func New(db *sql.DB, c clock.Clock, m *metrics.Metrics) *Sweeper {
	return &Sweeper{DB: db, Clock: c, Metrics: m}
}

// NextRun returns the first midnight UTC strictly after now.
func NextRun(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}

// RunOnce sweeps at the clock's current time and records the result.
func (s *Sweeper) RunOnce(ctx context.Context) (*model.SweepResult, error) {
	start := time.Now()
	res, err := store.SweepExpired(ctx, s.DB, s.Clock.Now())
	took := time.Since(start)
	s.Metrics.ObserveSweep(res, took, err)

	if err != nil {
		slog.Error("expiry sweep failed", "error", err)
		return nil, err
	}
	slog.Info("expiry sweep finished",
		"expired", res.DonationsExpired,
		"timed_out", res.ClaimsTimedOut,
		"duration", took.Round(time.Millisecond),
	)
	return res, nil
}

// Run sweeps at every midnight UTC until ctx is cancelled. A failed run is
// logged and retried at the next midnight.
func (s *Sweeper) Run(ctx context.Context) {
	after := s.after
	if after == nil {
		after = time.After
	}

	for {
		now := s.Clock.Now()
		next := NextRun(now)
		wait := next.Sub(now)
		slog.Info("next expiry sweep scheduled", "at", next)

		select {
		case <-ctx.Done():
			slog.Info("expiry sweeper stopped")
			return
		case <-after(wait):
		}

		s.RunOnce(ctx)
	}
}
