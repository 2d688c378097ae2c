// internal/writer/builder.go
package writer

import (
	"errors"
	"time"

	cfg "github.com/tamzrod/finch-bridge/internal/config"
	wmodbus "github.com/tamzrod/finch-bridge/internal/writer/modbus"
)

// BuildPlan converts the mirror config into a Plan.
// Assumes config has already passed validation.
func BuildPlan(deviceName string, m cfg.ModbusConfig) (Plan, error) {
	if m.Endpoint == "" {
		return Plan{}, errors.New("writer: modbus endpoint required")
	}
	return Plan{
		DeviceName: deviceName,
		UnitID:     m.UnitID,
		BaseSlot:   m.BaseSlot,
	}, nil
}

// BuildMirror connects to the mirror target and returns both writers
// sharing one connection, plus its closer.
func BuildMirror(deviceName string, m cfg.ModbusConfig) (StatusWriter, SampleWriter, func() error, error) {
	plan, err := BuildPlan(deviceName, m)
	if err != nil {
		return nil, nil, nil, err
	}

	c, err := wmodbus.NewEndpointClient(wmodbus.Config{
		Endpoint: m.Endpoint,
		Timeout:  time.Duration(m.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	return NewStatusWriter(plan, c), NewSampleWriter(plan, c), c.Close, nil
}
