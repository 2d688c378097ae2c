// internal/config/config.go
package config

type Config struct {
	Finch   FinchConfig   `yaml:"finch"`
	Poll    PollConfig    `yaml:"poll"`
	HTTP    HTTPConfig    `yaml:"http"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Modbus  ModbusConfig  `yaml:"modbus"`
	Logging LoggingConfig `yaml:"logging"`
}

// ---- ROBOT ----

type FinchConfig struct {
	Name      string `yaml:"name" env:"FINCH_NAME"`
	URL       string `yaml:"url" env:"FINCH_RPC_URL"`
	Service   string `yaml:"service" env:"FINCH_RPC_SERVICE"`
	TimeoutMs int    `yaml:"timeout_ms" env:"FINCH_RPC_TIMEOUT_MS"`

	// Warmup issues one getAllSensors at startup so the bridge
	// server attaches to the robot before the first real request.
	Warmup *bool `yaml:"warmup" env:"FINCH_WARMUP"`
}

// ---- POLL ----

type PollConfig struct {
	// FrequencyMs is the polling period; 0 polls as fast as possible.
	// nil leaves polling off until started over HTTP.
	FrequencyMs *int `yaml:"frequency_ms" env:"FINCH_POLL_FREQUENCY_MS"`
}

// ---- HTTP ----

type HTTPConfig struct {
	Listen string `yaml:"listen" env:"FINCH_HTTP_LISTEN"` // empty disables
}

// ---- MQTT ----

type MQTTConfig struct {
	// Mode is "", "remote" or "embedded". Empty disables.
	Mode        string `yaml:"mode" env:"FINCH_MQTT_MODE"`
	URL         string `yaml:"url" env:"FINCH_MQTT_URL"`       // remote
	Listen      string `yaml:"listen" env:"FINCH_MQTT_LISTEN"` // embedded
	ClientID    string `yaml:"client_id" env:"FINCH_MQTT_CLIENT_ID"`
	Username    string `yaml:"username" env:"FINCH_MQTT_USERNAME"`
	Password    string `yaml:"password" env:"FINCH_MQTT_PASSWORD"`
	TopicPrefix string `yaml:"topic_prefix" env:"FINCH_MQTT_TOPIC_PREFIX"`
	QoS         byte   `yaml:"qos" env:"FINCH_MQTT_QOS"`
}

const (
	MQTTModeRemote   = "remote"
	MQTTModeEmbedded = "embedded"
)

// ---- MODBUS MIRROR ----

type ModbusConfig struct {
	Endpoint  string `yaml:"endpoint" env:"FINCH_MODBUS_ENDPOINT"` // empty disables
	UnitID    uint8  `yaml:"unit_id" env:"FINCH_MODBUS_UNIT_ID"`
	BaseSlot  uint16 `yaml:"base_slot" env:"FINCH_MODBUS_BASE_SLOT"`
	TimeoutMs int    `yaml:"timeout_ms" env:"FINCH_MODBUS_TIMEOUT_MS"`
}

// ---- LOGGING ----

type LoggingConfig struct {
	Level string `yaml:"level" env:"FINCH_LOG_LEVEL"` // debug|info|warn|error
	File  string `yaml:"file" env:"FINCH_LOG_FILE"`   // optional JSON log file
}
