// Package sampler runs the fixed-interval loop that turns host counters into snapshots.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"ressample/pkg/log"
	"ressample/pkg/models"
	"ressample/pkg/provider"
	"ressample/pkg/sink"
)

// SleepFunc blocks for d or until ctx is done, whichever comes first.
type SleepFunc func(ctx context.Context, d time.Duration) error

// TickResult is the outcome of one iteration.
type TickResult struct {
	Snapshot   models.Snapshot
	RefreshErr error // Counters that could not be refreshed; stale values were used
	SinkErr    error // Write or flush failure; the snapshot may be lost
}

// Stats are running counters over the lifetime of a Loop.
type Stats struct {
	Ticks           uint64 `json:"ticks"`
	SinkFailures    uint64 `json:"sink_failures"`
	RefreshFailures uint64 `json:"refresh_failures"`
}

// Loop samples the host every interval and hands each snapshot to the sink.
type Loop struct {
	interval time.Duration
	tracked  models.TrackedVolumes
	provider provider.HostMetrics
	sink     sink.RecordSink

	sleep    SleepFunc
	now      func() time.Time
	maxTicks uint64
	logger   zerolog.Logger

	ticks           atomic.Uint64
	sinkFailures    atomic.Uint64
	refreshFailures atomic.Uint64
}

// Option customizes a Loop.
type Option func(*Loop)

// WithSleep replaces the interval wait.
func WithSleep(fn SleepFunc) Option {
	return func(l *Loop) {
		l.sleep = fn
	}
}

// WithClock replaces the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		l.now = now
	}
}

// WithMaxTicks stops Run after n ticks; 0 means run until cancelled.
func WithMaxTicks(n uint64) Option {
	return func(l *Loop) {
		l.maxTicks = n
	}
}

// New creates a loop over a fixed tracked volume set.
func New(interval time.Duration, tracked models.TrackedVolumes, p provider.HostMetrics, s sink.RecordSink, opts ...Option) *Loop {
	l := &Loop{
		interval: interval,
		tracked:  tracked,
		provider: p,
		sink:     s,
		sleep:    Sleep,
		now:      time.Now,
		logger:   log.Component("sampler"),
	}

	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Sleep waits for d unless ctx is cancelled first.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run loops wait, refresh, aggregate, emit until ctx is cancelled or the tick
// limit is reached. Per-tick failures are logged and never end the loop.
// The wait always starts after the previous tick finished, so slow ticks push
// later ones back instead of being caught up.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info().
		Dur("interval", l.interval).
		Strs("tracked", l.tracked.IDs()).
		Uint64("max_ticks", l.maxTicks).
		Msg("Sampling started")

	for {
		if err := ctx.Err(); err != nil {
			l.logger.Info().Uint64("ticks", l.ticks.Load()).Msg("Sampling stopped")
			return err
		}

		if l.maxTicks > 0 && l.ticks.Load() >= l.maxTicks {
			l.logger.Info().Uint64("ticks", l.ticks.Load()).Msg("Sample limit reached")
			return nil
		}

		if err := l.sleep(ctx, l.interval); err != nil && ctx.Err() != nil {
			continue
		}

		l.report(l.Tick(ctx))
	}
}

// Tick performs one refresh, aggregation and emit without waiting.
func (l *Loop) Tick(ctx context.Context) TickResult {
	result := TickResult{RefreshErr: l.refresh(ctx)}
	result.Snapshot = Aggregate(l.provider, l.tracked, l.now)
	result.SinkErr = l.emit(result.Snapshot)

	l.ticks.Add(1)
	if result.RefreshErr != nil {
		l.refreshFailures.Add(1)
	}
	if result.SinkErr != nil {
		l.sinkFailures.Add(1)
	}
	return result
}

// Stats returns the current counters.
func (l *Loop) Stats() Stats {
	return Stats{
		Ticks:           l.ticks.Load(),
		SinkFailures:    l.sinkFailures.Load(),
		RefreshFailures: l.refreshFailures.Load(),
	}
}

// Tracked returns the volume set the loop sums disk figures over.
func (l *Loop) Tracked() models.TrackedVolumes {
	return l.tracked
}

func (l *Loop) refresh(ctx context.Context) error {
	return errors.Join(
		l.provider.RefreshCPU(ctx),
		l.provider.RefreshMemory(ctx),
		l.provider.RefreshVolumes(ctx),
	)
}

// emit flushes even when the write failed, so rows accepted by other sinks
// become visible on the same tick.
func (l *Loop) emit(snap models.Snapshot) error {
	var writeErr, flushErr error
	if err := l.sink.Write(snap); err != nil {
		writeErr = fmt.Errorf("write snapshot: %w", err)
	}
	if err := l.sink.Flush(); err != nil {
		flushErr = fmt.Errorf("flush snapshot: %w", err)
	}
	return errors.Join(writeErr, flushErr)
}

func (l *Loop) report(res TickResult) {
	if res.RefreshErr != nil {
		l.logger.Warn().Err(res.RefreshErr).Msg("Host counters partially refreshed")
	}
	if res.SinkErr != nil {
		l.logger.Error().Err(res.SinkErr).Float64("timestamp", res.Snapshot.Timestamp).Msg("Snapshot not recorded")
	}

	l.logger.Debug().
		Float64("cpu_used", res.Snapshot.CPUUsed).
		Uint64("mem_used", res.Snapshot.MemUsed).
		Uint64("disk_used", res.Snapshot.DiskUsed).
		Float64("timestamp", res.Snapshot.Timestamp).
		Msg("Tick complete")
}
