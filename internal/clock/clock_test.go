// internal/clock/clock_test.go
package clock

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestFrom_FiresOnAdvance(t *testing.T) {
	fc := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	c := From(fc)

	fired := make(chan time.Time, 1)
	c.AfterFunc(500*time.Millisecond, func() { fired <- c.Now() })

	fc.Advance(499 * time.Millisecond)
	select {
	case <-fired:
		t.Fatalf("fired before its deadline")
	case <-time.After(20 * time.Millisecond):
	}

	fc.Advance(time.Millisecond)
	select {
	case at := <-fired:
		if want := time.Unix(1_700_000_000, 0).Add(500 * time.Millisecond); !at.Equal(want) {
			t.Fatalf("fired at %v, want %v", at, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("callback not fired at deadline")
	}
}

func TestReal_NowAdvances(t *testing.T) {
	c := Real()
	a := c.Now()
	done := make(chan struct{})
	c.AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("real AfterFunc never fired")
	}
	if !c.Now().After(a) {
		t.Fatalf("real clock did not advance")
	}
}
