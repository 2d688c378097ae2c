// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/tamzrod/finch-bridge/internal/status"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}

	// ------------------------------------------------------------
	// ROBOT
	// ------------------------------------------------------------

	if cfg.Finch.URL == "" {
		return errors.New("finch.url is required")
	}
	if u, err := url.Parse(cfg.Finch.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("finch.url %q must be an absolute http(s) url", cfg.Finch.URL)
	}
	if cfg.Finch.TimeoutMs < 0 {
		return fmt.Errorf("finch.timeout_ms must be >= 0; got %d", cfg.Finch.TimeoutMs)
	}
	for i := 0; i < len(cfg.Finch.Name); i++ {
		if cfg.Finch.Name[i] > 0x7F {
			return fmt.Errorf("finch.name %q must contain ASCII characters only", cfg.Finch.Name)
		}
	}

	// ------------------------------------------------------------
	// POLL
	// ------------------------------------------------------------

	if f := cfg.Poll.FrequencyMs; f != nil && *f < 0 {
		return fmt.Errorf("poll.frequency_ms must be a non-negative integer; got %d", *f)
	}

	// ------------------------------------------------------------
	// MQTT
	// ------------------------------------------------------------

	switch cfg.MQTT.Mode {
	case "":
	case MQTTModeRemote:
		if cfg.MQTT.URL == "" {
			return errors.New("mqtt.url is required in remote mode")
		}
		if _, err := url.Parse(cfg.MQTT.URL); err != nil {
			return fmt.Errorf("mqtt.url: %w", err)
		}
	case MQTTModeEmbedded:
		if cfg.MQTT.Listen == "" {
			return errors.New("mqtt.listen is required in embedded mode")
		}
	default:
		return fmt.Errorf("mqtt.mode %q must be %q or %q", cfg.MQTT.Mode, MQTTModeRemote, MQTTModeEmbedded)
	}
	if cfg.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2; got %d", cfg.MQTT.QoS)
	}

	// ------------------------------------------------------------
	// MODBUS MIRROR
	// ------------------------------------------------------------

	if cfg.Modbus.Endpoint != "" {
		if cfg.Modbus.TimeoutMs < 0 {
			return fmt.Errorf("modbus.timeout_ms must be >= 0; got %d", cfg.Modbus.TimeoutMs)
		}
		// block must fit in the 16-bit register space
		if (int(cfg.Modbus.BaseSlot)+1)*status.SlotsPerDevice > 0x10000 {
			return fmt.Errorf("modbus.base_slot %d out of range", cfg.Modbus.BaseSlot)
		}
	}

	// ------------------------------------------------------------
	// LOGGING
	// ------------------------------------------------------------

	if cfg.Logging.Level != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
			return fmt.Errorf("logging.level: %w", err)
		}
	}

	return nil
}
