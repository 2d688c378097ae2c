// internal/writer/sample_writer.go
package writer

import (
	"fmt"
	"sync"

	"github.com/tamzrod/finch-bridge/internal/finch"
	"github.com/tamzrod/finch-bridge/internal/status"
)

type registerSampleWriter struct {
	mu   sync.Mutex
	plan Plan
	cli  endpointClient
	seq  uint16
}

// NewSampleWriter mirrors each sample into the sample slots of the block.
// The sequence slot increments per write (wrapping) so readers can spot
// a stalled poller.
func NewSampleWriter(plan Plan, cli endpointClient) SampleWriter {
	return &registerSampleWriter{plan: plan, cli: cli}
}

func (w *registerSampleWriter) WriteSample(s finch.SensorSample) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.seq++
	addr := baseAddr(w.plan) + status.SlotSampleStart

	if err := w.cli.WriteRegisters(w.plan.UnitID, addr, status.EncodeSample(s, w.seq)); err != nil {
		return fmt.Errorf("sample writer: unit=%d addr=%d: %w", w.plan.UnitID, addr, err)
	}
	return nil
}
