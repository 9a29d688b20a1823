// Package retention periodically deletes archived highlights older than the
// configured retention window.
package retention

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/archivist/internal/logging"
	"github.com/dmitrijs2005/archivist/internal/metrics"
	"github.com/jonboulle/clockwork"
)

// DefaultInterval is the time between two scheduled sweeps.
const DefaultInterval = 24 * time.Hour

// Store deletes archive rows created strictly before cutoff.
type Store interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Options are fixed when the sweeper is built.
type Options struct {
	Enabled  bool
	Days     int
	Interval time.Duration
}

type Sweeper struct {
	store Store
	opts  Options
	clock clockwork.Clock
	log   logging.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSweeper(store Store, opts Options, clock clockwork.Clock, log logging.Logger) *Sweeper {
	if opts.Days < 1 {
		opts.Days = 1
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return &Sweeper{store: store, opts: opts, clock: clock, log: log}
}

func (s *Sweeper) Enabled() bool { return s.opts.Enabled }

func (s *Sweeper) Days() int { return s.opts.Days }

// Cutoff is the creation time before which rows are swept at now.
func (s *Sweeper) Cutoff(now time.Time) time.Time {
	return now.UTC().AddDate(0, 0, -s.opts.Days)
}

// SweepOnce runs a single sweep regardless of Enabled and returns the
// number of deleted rows.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	cutoff := s.Cutoff(s.clock.Now())

	n, err := s.store.DeleteOlderThan(ctx, cutoff)
	metrics.RetentionSweepsTotal.WithLabelValues(metrics.Status(err)).Inc()
	if err != nil {
		return 0, fmt.Errorf("retention sweep: %w", err)
	}

	metrics.RetentionDeletedTotal.Add(float64(n))
	metrics.RetentionLastSuccess.Set(float64(s.clock.Now().Unix()))
	return n, nil
}

// Start launches the schedule: one sweep right away and one per interval
// until Stop is called or ctx is done. It is a no-op when the sweeper is
// disabled or already running.
func (s *Sweeper) Start(ctx context.Context) {
	if !s.opts.Enabled {
		s.log.Info(ctx, "retention disabled")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	ticker := s.clock.NewTicker(s.opts.Interval)
	go s.run(ctx, ticker, s.done)

	s.log.Info(ctx, "retention started", "days", s.opts.Days, "interval", s.opts.Interval.String())
}

// Stop cancels the schedule and waits for an in-flight sweep to return.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Sweeper) run(ctx context.Context, ticker clockwork.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.SweepOnce(ctx)
	if err != nil {
		s.log.Error(ctx, "retention sweep failed", "error", err)
		return
	}
	s.log.Info(ctx, "retention sweep finished", "deleted", n)
}
