// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tamzrod/finch-bridge/internal/status"
)

// linkStatusWriter mirrors the link Snapshot into the status block.
type linkStatusWriter struct {
	mu   sync.Mutex
	plan Plan
	cli  endpointClient

	needFull bool
	last     status.Snapshot
	nameRegs []uint16
}

// NewStatusWriter builds the status writer for one robot.
func NewStatusWriter(plan Plan, cli endpointClient) StatusWriter {
	return &linkStatusWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
		last:     status.Snapshot{Health: status.HealthUnknown},
		nameRegs: encodeDeviceNameRegs(plan.DeviceName),
	}
}

// WriteStatus delivers a snapshot into the status block.
// On any write failure, the next call re-asserts the full block.
func (sw *linkStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw.cli == nil {
		return errors.New("status writer: missing client")
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()

	base := baseAddr(sw.plan)

	// ---- full block write (identity re-assert) ----
	if sw.needFull {
		regs := sw.fullBlockRegs(s)
		if err := sw.cli.WriteRegisters(sw.plan.UnitID, base, regs); err != nil {
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}
		sw.needFull = false
		sw.last = s
		return nil
	}

	// ---- incremental slots ----
	var errs []string

	write := func(slot uint16, v uint16, name string) bool {
		if err := sw.cli.WriteRegisters(sw.plan.UnitID, base+slot, []uint16{v}); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d %s write failed: %v", slot, name, err))
			return false
		}
		return true
	}

	if sw.last.Health != s.Health && write(status.SlotHealthCode, s.Health, "health") {
		sw.last.Health = s.Health
	}
	if sw.last.LastErrorCode != s.LastErrorCode && write(status.SlotLastErrorCode, s.LastErrorCode, "last_error") {
		sw.last.LastErrorCode = s.LastErrorCode
	}
	if sw.last.SecondsInError != s.SecondsInError && write(status.SlotSecondsInError, s.SecondsInError, "seconds") {
		sw.last.SecondsInError = s.SecondsInError
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt: re-assert on next write.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	return nil
}

func (sw *linkStatusWriter) fullBlockRegs(s status.Snapshot) []uint16 {
	regs := status.Encode(s)

	// Sample slots stay zero until the first sample write.
	copy(regs[status.SlotDeviceNameStart:status.SlotDeviceNameEnd+1], sw.nameRegs)

	return regs
}

// encodeDeviceNameRegs packs up to 16 ASCII characters into 8 registers.
// Each register stores two ASCII bytes in big-endian order.
func encodeDeviceNameRegs(name string) []uint16 {
	out := make([]uint16, status.SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > status.DeviceNameMaxChars {
		b = b[:status.DeviceNameMaxChars]
	}

	// sanitize to printable ASCII
	for i := range b {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < status.DeviceNameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
