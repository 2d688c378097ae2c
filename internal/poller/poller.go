// internal/poller/poller.go
package poller

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tamzrod/finch-bridge/internal/clock"
	"github.com/tamzrod/finch-bridge/internal/finch"
	"github.com/tamzrod/finch-bridge/internal/rpc"
)

// Poller fetches sensor samples at roughly a caller-chosen period.
//
// Invariants:
//   - at most one getAllSensors request is outstanding
//   - handle != nil only in StateAwaitingResponse
//   - every request and every scheduled tick carries the seq that was
//     current when it was created; a callback whose seq is no longer
//     current is stale and does nothing
//
// No retries. A failed poll halts polling until Start is called again.
type Poller struct {
	transport rpc.Transport
	clock     clock.Clock
	log       *slog.Logger

	mu        sync.Mutex
	state     State
	frequency time.Duration
	nextDueAt time.Time // zero when stopped
	handle    rpc.Handle
	seq       uint64

	onSample []SampleFunc
	onError  []ErrorFunc
}

// New creates an idle poller.
func New(transport rpc.Transport, clk clock.Clock, logger *slog.Logger) (*Poller, error) {
	if transport == nil {
		return nil, errors.New("poller: transport required")
	}
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		transport: transport,
		clock:     clk,
		log:       logger,
	}, nil
}

// OnSample registers an observer for successful polls.
// Observers run on the transport's goroutine, in registration order.
func (p *Poller) OnSample(fn SampleFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onSample = append(p.onSample, fn)
}

// OnError registers an observer for failed polls.
func (p *Poller) OnError(fn ErrorFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onError = append(p.onError, fn)
}

// Start begins (or re-paces) polling every frequencyMs milliseconds.
// Zero polls as fast as responses arrive.
// A request already in flight is left running and picks up the new
// frequency when it completes.
func (p *Poller) Start(frequencyMs int) error {
	if err := finch.CheckNonNegative("frequency_ms", frequencyMs); err != nil {
		return err
	}

	p.mu.Lock()
	p.frequency = time.Duration(frequencyMs) * time.Millisecond
	p.nextDueAt = p.clock.Now().Add(p.frequency)

	if p.state == StateAwaitingResponse {
		p.mu.Unlock()
		return nil
	}

	// Idle or waiting: the pending tick (if any) goes stale.
	seq := p.beginLocked()
	p.mu.Unlock()

	p.log.Debug("sensor polling started", "frequency_ms", frequencyMs)
	p.issue(seq)
	return nil
}

// Stop aborts any outstanding request and cancels the pending tick.
// Safe to call at any time, any number of times.
func (p *Poller) Stop() {
	p.mu.Lock()
	h := p.handle
	wasActive := p.state != StateIdle

	p.seq++
	p.state = StateIdle
	p.handle = nil
	p.nextDueAt = time.Time{}
	p.mu.Unlock()

	if h != nil {
		h.Abort()
	}
	if wasActive {
		p.log.Debug("sensor polling stopped")
	}
}

// State reports the current state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Frequency reports the most recently requested polling period.
func (p *Poller) Frequency() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frequency
}

// ---- transitions ----

// beginLocked moves to StateAwaitingResponse under a fresh seq.
func (p *Poller) beginLocked() uint64 {
	p.seq++
	p.state = StateAwaitingResponse
	p.handle = nil
	return p.seq
}

// issue sends the request for seq. Called without the lock held so a
// transport may complete synchronously.
func (p *Poller) issue(seq uint64) {
	h := p.transport.CallAsync(func(result json.RawMessage, err error, id int64) {
		p.onResponse(seq, result, err, id)
	}, finch.MethodGetAllSensors)

	p.mu.Lock()
	if p.state == StateAwaitingResponse && p.seq == seq {
		p.handle = h
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	// Stopped (or already completed) before the handle was recorded.
	if h != nil {
		h.Abort()
	}
}

func (p *Poller) onResponse(seq uint64, result json.RawMessage, err error, id int64) {
	p.mu.Lock()
	if p.state != StateAwaitingResponse || p.seq != seq {
		p.mu.Unlock()
		p.log.Debug("ignoring stale sensor response", "id", id)
		return
	}

	var sample finch.SensorSample
	if err == nil {
		if derr := json.Unmarshal(result, &sample); derr != nil {
			err = &finch.TransportError{Method: finch.MethodGetAllSensors, ID: id, Err: derr}
		}
	}

	if err != nil {
		p.state = StateIdle
		p.handle = nil
		p.nextDueAt = time.Time{}
		observers := append([]ErrorFunc(nil), p.onError...)
		p.mu.Unlock()

		p.log.Error("sensor poll failed; polling halted", "method", finch.MethodGetAllSensors, "id", id, "error", err)
		for _, fn := range observers {
			fn(err)
		}
		return
	}

	// Stay in StateAwaitingResponse while observers run: Start from an
	// observer must not issue a second request, Stop must win.
	p.handle = nil
	observers := append([]SampleFunc(nil), p.onSample...)
	p.mu.Unlock()

	for _, fn := range observers {
		fn(sample)
	}

	p.mu.Lock()
	if p.state != StateAwaitingResponse || p.seq != seq {
		p.mu.Unlock()
		return
	}

	now := p.clock.Now()
	if !now.Before(p.nextDueAt) {
		// Behind schedule (or frequency 0): go again right away.
		next := p.beginLocked()
		p.mu.Unlock()
		p.issue(next)
		return
	}

	delay := p.nextDueAt.Sub(now)
	p.seq++
	tick := p.seq
	p.state = StateWaitingForNextTick
	p.mu.Unlock()

	p.clock.AfterFunc(delay, func() { p.onTick(tick) })
}

func (p *Poller) onTick(tick uint64) {
	p.mu.Lock()
	if p.state != StateWaitingForNextTick || p.seq != tick {
		p.mu.Unlock()
		return
	}

	// Current frequency: a change made while waiting applies here.
	p.nextDueAt = p.clock.Now().Add(p.frequency)
	seq := p.beginLocked()
	p.mu.Unlock()

	p.issue(seq)
}
