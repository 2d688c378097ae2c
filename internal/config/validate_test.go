// internal/config/validate_test.go
package config

import (
	"strings"
	"testing"
)

// helper to build a minimal valid config quickly
func base() *Config {
	return &Config{
		Finch: FinchConfig{URL: "http://localhost:8080/rpc"},
	}
}

func intp(v int) *int { return &v }

// ---- tests ----

func TestValidate_MinimalOK(t *testing.T) {
	if err := Validate(base()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"missing url":        func(c *Config) { c.Finch.URL = "" },
		"relative url":       func(c *Config) { c.Finch.URL = "/rpc" },
		"negative timeout":   func(c *Config) { c.Finch.TimeoutMs = -1 },
		"non ascii name":     func(c *Config) { c.Finch.Name = "fïnch" },
		"negative frequency": func(c *Config) { c.Poll.FrequencyMs = intp(-1) },
		"bad mqtt mode":      func(c *Config) { c.MQTT.Mode = "carrier-pigeon" },
		"remote without url": func(c *Config) { c.MQTT.Mode = MQTTModeRemote },
		"embedded no listen": func(c *Config) { c.MQTT.Mode = MQTTModeEmbedded },
		"qos 3":              func(c *Config) { c.MQTT.QoS = 3 },
		"base slot overflow": func(c *Config) { c.Modbus.Endpoint = "x:502"; c.Modbus.BaseSlot = 65535 },
		"bad log level":      func(c *Config) { c.Logging.Level = "loud" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(c)
			if err := Validate(c); err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}
}

func TestValidate_ZeroFrequencyAllowed(t *testing.T) {
	c := base()
	c.Poll.FrequencyMs = intp(0)
	if err := Validate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNormalize_Defaults(t *testing.T) {
	c := base()
	c.Finch.Name = "a-very-long-finch-name"
	c.MQTT.Mode = MQTTModeEmbedded
	c.MQTT.Listen = ":1883"
	c.MQTT.TopicPrefix = "robots/"
	c.Modbus.Endpoint = "localhost:502"

	if err := Validate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	Normalize(c)

	if c.Finch.Name != "a-very-long-finc" {
		t.Fatalf("name not truncated: %q", c.Finch.Name)
	}
	if c.Finch.Service != DefaultService || c.Finch.TimeoutMs != DefaultTimeoutMs {
		t.Fatalf("rpc defaults not applied: %+v", c.Finch)
	}
	if c.Finch.Warmup == nil || !*c.Finch.Warmup {
		t.Fatalf("warmup should default on")
	}
	if c.MQTT.TopicPrefix != "robots" || c.MQTT.ClientID != DefaultMQTTClientID {
		t.Fatalf("mqtt defaults: %+v", c.MQTT)
	}
	if c.Modbus.TimeoutMs != DefaultModbusTimeoutMs {
		t.Fatalf("modbus timeout: %d", c.Modbus.TimeoutMs)
	}
	if c.Logging.Level != DefaultLogLevel {
		t.Fatalf("log level: %q", c.Logging.Level)
	}
}

func TestParse_YAMLAndEnvOverride(t *testing.T) {
	t.Setenv("FINCH_POLL_FREQUENCY_MS", "250")
	t.Setenv("FINCH_MODBUS_UNIT_ID", "7")

	raw := []byte(`
finch:
  name: lab
  url: http://robot:8080/rpc
poll:
  frequency_ms: 100
modbus:
  endpoint: mirror:502
`)

	c, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse err=%v", err)
	}
	if c.Finch.Name != "lab" || c.Finch.URL != "http://robot:8080/rpc" {
		t.Fatalf("yaml values lost: %+v", c.Finch)
	}
	if c.Poll.FrequencyMs == nil || *c.Poll.FrequencyMs != 250 {
		t.Fatalf("env override not applied: %v", c.Poll.FrequencyMs)
	}
	if c.Modbus.UnitID != 7 || c.Modbus.Endpoint != "mirror:502" {
		t.Fatalf("modbus: %+v", c.Modbus)
	}
}

func TestParse_UnknownKeyRejected(t *testing.T) {
	_, err := Parse([]byte("finch:\n  nmae: typo\n"))
	if err == nil || !strings.Contains(err.Error(), "nmae") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}
