// internal/status/constants.go
package status

// Finch status block layout constants.
// These values define the register protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of register slots per robot.
const SlotsPerDevice = 20

// ---- LINK STATUS ----

// SlotHealthCode holds the link health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the last transport error code.
const SlotLastErrorCode = 1

// SlotSecondsInError holds how long (seconds) the link has been unhealthy.
const SlotSecondsInError = 2

// ---- SENSOR SAMPLE ----

// SlotSampleStart is the first slot of the latest sensor sample.
const SlotSampleStart = 3

const (
	SlotAccelX      = SlotSampleStart + iota // int16, g * AccelScale
	SlotAccelY                               // int16, g * AccelScale
	SlotAccelZ                               // int16, g * AccelScale
	SlotLightLeft                            // 0..255
	SlotLightRight                           // 0..255
	SlotObstacles                            // bit0 left, bit1 right
	SlotTemperature                          // int16, °C * TemperatureScale
	SlotSampleSeq                            // wraps at 65535
)

// SlotSampleSlots is the number of slots occupied by a sample.
const SlotSampleSlots = SlotSampleSeq - SlotSampleStart + 1

// AccelScale converts g to register units.
const AccelScale = 1000

// TemperatureScale converts °C to register units.
const TemperatureScale = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// Slot 19 is reserved.

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// MaxSecondsInError is where SecondsInError saturates.
const MaxSecondsInError = 65535

// ---- HEALTH CODES ----

// HealthUnknown: no poll has completed yet.
const HealthUnknown uint16 = 0

// HealthOK: the last poll succeeded.
const HealthOK uint16 = 1

// HealthError: the last poll failed; polling is halted.
const HealthError uint16 = 2

// HealthDisabled: polling was stopped by the operator.
const HealthDisabled uint16 = 3
