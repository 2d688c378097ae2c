// internal/finch/types.go
package finch

// Wire method names exposed by the Finch RPC service.
// These are part of the compatibility surface and MUST NOT change.
const (
	MethodGetAllSensors = "getAllSensors"
	MethodPlayTone      = "playTone"
	MethodSetLED        = "setLED"
	MethodSetWheelPower = "setWheelPower"
	MethodReset         = "reset"
)

// Accelerometer holds one reading per axis, each in [-1.5, 1.5].
type Accelerometer struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Light holds the two light sensors, each in [0, 255].
type Light struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// Obstacle holds the two obstacle detectors.
type Obstacle struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// SensorSample is one getAllSensors result.
// Produced by the transport, never mutated afterwards.
type SensorSample struct {
	Accelerometer Accelerometer `json:"accelerometer"`
	Light         Light         `json:"light"`
	Obstacle      Obstacle      `json:"obstacle"`
	Temperature   float64       `json:"temperature"` // degrees Celsius
}
