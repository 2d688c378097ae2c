// internal/bridge/bridge.go
package bridge

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tamzrod/finch-bridge/internal/finch"
	"github.com/tamzrod/finch-bridge/internal/poller"
	"github.com/tamzrod/finch-bridge/internal/status"
	"github.com/tamzrod/finch-bridge/internal/writer"
)

// Source is what the bridge listens to (device.Finch).
type Source interface {
	OnSensorData(fn poller.SampleFunc)
	OnError(fn poller.ErrorFunc)
}

// Config wires sinks into the bridge. Every sink is optional.
type Config struct {
	Samples  []writer.SampleWriter
	Statuses []writer.StatusWriter

	// TickInterval drives SecondsInError. Defaults to one second.
	TickInterval time.Duration
}

type event struct {
	sample   *finch.SensorSample
	err      error
	disabled bool
	enabled  bool
}

// Bridge owns the link status and fans samples out to sinks.
// All sink writes happen on the Run goroutine, one at a time.
type Bridge struct {
	cfg Config
	log *slog.Logger

	events chan event
	done   chan struct{}

	mu       sync.RWMutex
	latest   *finch.SensorSample
	latestAt time.Time
	samples  uint64
	snap     status.Snapshot

	// Owned by Run. Samples are dropped while set.
	disabled bool
}

func New(cfg Config, log *slog.Logger) *Bridge {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{
		cfg:    cfg,
		log:    log,
		events: make(chan event),
		done:   make(chan struct{}),
		snap:   status.Snapshot{Health: status.HealthUnknown},
	}
}

// Attach subscribes to src. Observers block until Run consumes the
// event, or drop it once Run has returned.
func (b *Bridge) Attach(src Source) {
	src.OnSensorData(func(s finch.SensorSample) {
		b.push(event{sample: &s})
	})
	src.OnError(func(err error) {
		b.push(event{err: err})
	})
}

// MarkDisabled records that polling was stopped on purpose.
// Samples arriving afterwards (from a poll that completed while the
// stop was in progress) are dropped until MarkEnabled.
func (b *Bridge) MarkDisabled() {
	b.push(event{disabled: true})
}

// MarkEnabled accepts samples again. Call it before restarting polling.
func (b *Bridge) MarkEnabled() {
	b.push(event{enabled: true})
}

func (b *Bridge) push(ev event) {
	select {
	case b.events <- ev:
	case <-b.done:
	}
}

// Latest returns the most recent sample and when it arrived.
func (b *Bridge) Latest() (finch.SensorSample, time.Time, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.latest == nil {
		return finch.SensorSample{}, time.Time{}, false
	}
	return *b.latest, b.latestAt, true
}

// Status returns the current link snapshot and sample count.
func (b *Bridge) Status() (status.Snapshot, uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snap, b.samples
}

// Run processes events until ctx is done.
func (b *Bridge) Run(ctx context.Context) {
	defer close(b.done)

	ticker := time.NewTicker(b.cfg.TickInterval)
	defer ticker.Stop()

	// Full block write on start (identity re-assert).
	b.writeStatus(b.snapshot())

	for {
		select {
		case <-ctx.Done():
			return

		case ev := <-b.events:
			b.handle(ev)

		case <-ticker.C:
			// Tick while not OK.
			b.mu.Lock()
			changed := b.snap.Tick()
			snap := b.snap
			b.mu.Unlock()

			if changed {
				b.writeStatus(snap)
			}
		}
	}
}

func (b *Bridge) handle(ev event) {
	var changed bool

	if ev.sample != nil && b.disabled {
		b.log.Debug("dropping sample while polling is disabled")
		return
	}

	b.mu.Lock()
	switch {
	case ev.enabled:
		b.disabled = false
	case ev.sample != nil:
		b.latest = ev.sample
		b.latestAt = time.Now()
		b.samples++
		changed = b.snap.RecordSample()
	case ev.err != nil:
		changed = b.snap.RecordError(errorCode(ev.err))
	case ev.disabled:
		b.disabled = true
		changed = b.snap.RecordDisabled()
	}
	snap := b.snap
	b.mu.Unlock()

	// --- data delivery ---
	if ev.sample != nil {
		for _, w := range b.cfg.Samples {
			if err := w.WriteSample(*ev.sample); err != nil {
				b.log.Warn("sample write failed", "error", err)
			}
		}
	}

	// --- status update ---
	if changed {
		b.writeStatus(snap)
	}
}

func (b *Bridge) snapshot() status.Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snap
}

func (b *Bridge) writeStatus(s status.Snapshot) {
	for _, w := range b.cfg.Statuses {
		if err := w.WriteStatus(s); err != nil {
			b.log.Warn("status write failed", "error", err)
		}
	}
}

// errorCode extracts a best-effort uint16 code from an error without
// assuming concrete types. Errors without a code report 1.
func errorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coder interface{ ErrorCode() uint16 }

	var c coder
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return 1
}
