// internal/writer/types.go
package writer

import (
	"github.com/tamzrod/finch-bridge/internal/finch"
	"github.com/tamzrod/finch-bridge/internal/status"
)

// Plan locates one robot's block inside the mirror target.
type Plan struct {
	DeviceName string
	UnitID     uint8
	BaseSlot   uint16 // block index; address = BaseSlot * SlotsPerDevice
}

// endpointClient is the exact contract the writers use.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// StatusWriter is the delivery-only contract for link status.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// SampleWriter is the delivery-only contract for sensor samples.
type SampleWriter interface {
	WriteSample(s finch.SensorSample) error
}

func baseAddr(p Plan) uint16 {
	// Each robot owns a fixed SlotsPerDevice block.
	return p.BaseSlot * status.SlotsPerDevice
}
