// internal/poller/types.go
package poller

import "github.com/tamzrod/finch-bridge/internal/finch"

// State is the poller's position in its request cycle.
type State int

const (
	// StateIdle: no request outstanding, nothing scheduled.
	StateIdle State = iota

	// StateAwaitingResponse: exactly one request is outstanding.
	StateAwaitingResponse

	// StateWaitingForNextTick: a continuation is scheduled on the clock.
	StateWaitingForNextTick
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateWaitingForNextTick:
		return "waiting_for_next_tick"
	default:
		return "unknown"
	}
}

// SampleFunc observes each successful poll.
type SampleFunc func(sample finch.SensorSample)

// ErrorFunc observes a failed poll. Polling has already halted when it runs.
type ErrorFunc func(err error)
