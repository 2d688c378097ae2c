// internal/finch/command.go
package finch

// Command is a one-shot actuator command.
// Commands are validated before dispatch and never retained.
type Command interface {
	Method() string
	Params() []any
	Validate() error
}

// PlayTone plays FrequencyHz for DurationMs. A frequency of zero
// stops any tone currently playing.
type PlayTone struct {
	FrequencyHz int `json:"frequency_hz"`
	DurationMs  int `json:"duration_ms"`
}

func (c PlayTone) Method() string { return MethodPlayTone }
func (c PlayTone) Params() []any  { return []any{c.FrequencyHz, c.DurationMs} }

func (c PlayTone) Validate() error {
	if err := CheckNonNegative("frequency_hz", c.FrequencyHz); err != nil {
		return err
	}
	return CheckNonNegative("duration_ms", c.DurationMs)
}

// SetBeakColor sets the beak LED.
type SetBeakColor struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

func (c SetBeakColor) Method() string { return MethodSetLED }
func (c SetBeakColor) Params() []any  { return []any{c.R, c.G, c.B} }

func (c SetBeakColor) Validate() error {
	if err := checkRange("r", c.R, 0, 255); err != nil {
		return err
	}
	if err := checkRange("g", c.G, 0, 255); err != nil {
		return err
	}
	return checkRange("b", c.B, 0, 255)
}

// SetWheelPower sets both wheels. Negative values drive in reverse.
type SetWheelPower struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

func (c SetWheelPower) Method() string { return MethodSetWheelPower }
func (c SetWheelPower) Params() []any  { return []any{c.Left, c.Right} }

func (c SetWheelPower) Validate() error {
	if err := checkRange("left", c.Left, -255, 255); err != nil {
		return err
	}
	return checkRange("right", c.Right, -255, 255)
}

// Disconnect resets the robot link. Any later call reconnects.
type Disconnect struct{}

func (Disconnect) Method() string  { return MethodReset }
func (Disconnect) Params() []any   { return nil }
func (Disconnect) Validate() error { return nil }
