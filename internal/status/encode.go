// internal/status/encode.go
package status

import (
	"math"

	"github.com/tamzrod/finch-bridge/internal/finch"
)

// Encode converts a Snapshot into a full status block.
// Sample and name slots are left zero.
// Layout is protocol-locked. No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotSecondsInError] = s.SecondsInError

	return regs
}

// EncodeSample packs a sample into SlotSampleSlots registers,
// starting at SlotSampleStart. Signed values are two's complement.
func EncodeSample(s finch.SensorSample, seq uint16) []uint16 {
	regs := make([]uint16, SlotSampleSlots)

	regs[SlotAccelX-SlotSampleStart] = scaled(s.Accelerometer.X, AccelScale)
	regs[SlotAccelY-SlotSampleStart] = scaled(s.Accelerometer.Y, AccelScale)
	regs[SlotAccelZ-SlotSampleStart] = scaled(s.Accelerometer.Z, AccelScale)
	regs[SlotLightLeft-SlotSampleStart] = clampU8(s.Light.Left)
	regs[SlotLightRight-SlotSampleStart] = clampU8(s.Light.Right)

	var obstacles uint16
	if s.Obstacle.Left {
		obstacles |= 1 << 0
	}
	if s.Obstacle.Right {
		obstacles |= 1 << 1
	}
	regs[SlotObstacles-SlotSampleStart] = obstacles

	regs[SlotTemperature-SlotSampleStart] = scaled(s.Temperature, TemperatureScale)
	regs[SlotSampleSeq-SlotSampleStart] = seq

	return regs
}

// scaled rounds v*scale into an int16 register, clamping at the range ends.
func scaled(v float64, scale float64) uint16 {
	x := math.Round(v * scale)
	if math.IsNaN(x) {
		return 0
	}
	if x > math.MaxInt16 {
		x = math.MaxInt16
	}
	if x < math.MinInt16 {
		x = math.MinInt16
	}
	return uint16(int16(x))
}

func clampU8(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint16(v)
}
