// internal/config/normalize.go
package config

import "strings"

// Defaults applied by Normalize.
const (
	DefaultName            = "finch"
	DefaultService         = "finch.high"
	DefaultTimeoutMs       = 6000
	DefaultModbusTimeoutMs = 2000
	DefaultLogLevel        = "info"
	DefaultMQTTClientID    = "finch-bridge"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// ---- robot ----

	if cfg.Finch.Name == "" {
		cfg.Finch.Name = DefaultName
	}
	// Name is mirrored into a 16-char register field; ASCII already validated.
	if len(cfg.Finch.Name) > 16 {
		cfg.Finch.Name = cfg.Finch.Name[:16]
	}
	if cfg.Finch.Service == "" {
		cfg.Finch.Service = DefaultService
	}
	if cfg.Finch.TimeoutMs == 0 {
		cfg.Finch.TimeoutMs = DefaultTimeoutMs
	}
	if cfg.Finch.Warmup == nil {
		on := true
		cfg.Finch.Warmup = &on
	}

	// ---- mqtt ----

	if cfg.MQTT.Mode != "" {
		if cfg.MQTT.ClientID == "" {
			cfg.MQTT.ClientID = DefaultMQTTClientID
		}
		cfg.MQTT.TopicPrefix = strings.TrimSuffix(cfg.MQTT.TopicPrefix, "/")
		if cfg.MQTT.TopicPrefix == "" {
			cfg.MQTT.TopicPrefix = "finch/" + cfg.Finch.Name
		}
	}

	// ---- modbus ----

	if cfg.Modbus.Endpoint != "" && cfg.Modbus.TimeoutMs == 0 {
		cfg.Modbus.TimeoutMs = DefaultModbusTimeoutMs
	}

	// ---- logging ----

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
}
