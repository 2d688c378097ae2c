// internal/clock/clock.go
package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock is the timer service consumed by the poller.
// AfterFunc schedules f once; there is no handle to cancel it, so
// callers MUST guard their callbacks against stale firings.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func())
}

// Real returns the wall-clock implementation.
func Real() Clock {
	return From(clockwork.NewRealClock())
}

// From adapts a clockwork clock. Tests pass a clockwork.FakeClock.
func From(c clockwork.Clock) Clock {
	return adapter{c: c}
}

type adapter struct {
	c clockwork.Clock
}

func (a adapter) Now() time.Time {
	return a.c.Now()
}

func (a adapter) AfterFunc(d time.Duration, f func()) {
	a.c.AfterFunc(d, f)
}
