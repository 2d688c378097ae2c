// internal/device/finch.go
package device

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tamzrod/finch-bridge/internal/clock"
	"github.com/tamzrod/finch-bridge/internal/finch"
	"github.com/tamzrod/finch-bridge/internal/poller"
	"github.com/tamzrod/finch-bridge/internal/rpc"
)

// Finch is the facade over one robot.
// Actuator methods validate synchronously and dispatch fire-and-forget:
// a returned error is always an *finch.InvalidArgumentError, transport
// failures are logged and handed to OnError observers only.
type Finch struct {
	name      string
	transport rpc.Transport
	poller    *poller.Poller
	log       *slog.Logger

	mu      sync.RWMutex
	onError []poller.ErrorFunc
}

// New creates a facade. The poller shares the transport.
func New(name string, transport rpc.Transport, clk clock.Clock, logger *slog.Logger) (*Finch, error) {
	if transport == nil {
		return nil, errors.New("device: transport required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("device", name)

	p, err := poller.New(transport, clk, logger)
	if err != nil {
		return nil, err
	}

	f := &Finch{
		name:      name,
		transport: transport,
		poller:    p,
		log:       logger,
	}
	p.OnError(f.reportError)
	return f, nil
}

// Name returns the configured device name.
func (f *Finch) Name() string { return f.name }

// Warmup issues one getAllSensors and ignores the result.
// The bridge server attaches to the robot on its first request.
func (f *Finch) Warmup() {
	f.transport.CallAsync(func(_ json.RawMessage, err error, id int64) {
		if err != nil {
			f.log.Warn("warmup failed", "method", finch.MethodGetAllSensors, "id", id, "error", err)
		}
	}, finch.MethodGetAllSensors)
}

// ---- sensors ----

// StartSensorDataCollection polls every frequencyMs (0 = as fast as possible).
func (f *Finch) StartSensorDataCollection(frequencyMs int) error {
	return f.poller.Start(frequencyMs)
}

// StopSensorDataCollection stops polling. Idempotent.
func (f *Finch) StopSensorDataCollection() {
	f.poller.Stop()
}

// PollState reports the poller state.
func (f *Finch) PollState() poller.State {
	return f.poller.State()
}

// PollFrequency is the frequency given to the last Start.
func (f *Finch) PollFrequency() time.Duration {
	return f.poller.Frequency()
}

// OnSensorData registers an observer for every successful poll.
func (f *Finch) OnSensorData(fn poller.SampleFunc) {
	f.poller.OnSample(fn)
}

// OnError registers an observer for asynchronous failures
// (failed polls and failed actuator commands).
func (f *Finch) OnError(fn poller.ErrorFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onError = append(f.onError, fn)
}

// ---- actuators ----

// PlayTone plays a tone; frequency 0 silences the buzzer.
func (f *Finch) PlayTone(frequencyHz, durationMs int) error {
	return f.Send(finch.PlayTone{FrequencyHz: frequencyHz, DurationMs: durationMs})
}

// SetBeakColor sets the beak LED, each component in [0, 255].
func (f *Finch) SetBeakColor(r, g, b int) error {
	return f.Send(finch.SetBeakColor{R: r, G: g, B: b})
}

// SetWheelPower sets both wheels, each in [-255, 255].
func (f *Finch) SetWheelPower(left, right int) error {
	return f.Send(finch.SetWheelPower{Left: left, Right: right})
}

// Disconnect resets the robot link. Polling is not affected; callers
// stop it separately.
func (f *Finch) Disconnect() {
	_ = f.Send(finch.Disconnect{})
}

// Send validates cmd and dispatches it without waiting.
// Failed commands are never retried: they may have partially applied.
func (f *Finch) Send(cmd finch.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	method := cmd.Method()
	f.transport.CallAsync(func(_ json.RawMessage, err error, id int64) {
		if err != nil {
			f.log.Error("command failed", "method", method, "id", id, "error", err)
			f.reportError(err)
		}
	}, method, cmd.Params()...)

	return nil
}

// Close stops polling and aborts any in-flight poll.
func (f *Finch) Close() error {
	f.poller.Stop()
	return nil
}

func (f *Finch) reportError(err error) {
	f.mu.RLock()
	observers := append([]poller.ErrorFunc(nil), f.onError...)
	f.mu.RUnlock()

	for _, fn := range observers {
		fn(err)
	}
}
