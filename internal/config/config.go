// internal/config/config.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Device  DeviceConfig  `yaml:"device"`
	Poll    PollConfig    `yaml:"poll"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Sinks   SinksConfig   `yaml:"sinks"`
}

// ---- DEVICE ----

const (
	TransportSerial = "serial"
	TransportTCP    = "tcp"
)

type DeviceConfig struct {
	Transport string `yaml:"transport"` // serial | tcp
	Port      string `yaml:"port"`      // serial device path
	Endpoint  string `yaml:"endpoint"`  // host:port of a serial bridge
	BaudRate  int    `yaml:"baud_rate"`
	DataBits  int    `yaml:"data_bits"`
	StopBits  int    `yaml:"stop_bits"`
	Parity    string `yaml:"parity"`
	Address   *uint8 `yaml:"address"` // default 1; 0 is broadcast
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs    int   `yaml:"interval_ms"`
	RetentionDays int   `yaml:"retention_days"`
	CorrectDaily  *bool `yaml:"correct_daily_stats"` // default true
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`  // trace|debug|info|warn|error
	Format string `yaml:"format"` // console|json
}

// ---- METRICS ----

type MetricsConfig struct {
	Listen string `yaml:"listen"` // empty disables the exporter
}

// ---- SINKS ----

type SinksConfig struct {
	CSV       *CSVConfig       `yaml:"csv"`
	JSON      *JSONConfig      `yaml:"json"`
	SQL       *SQLConfig       `yaml:"sql"`
	Registers *RegistersConfig `yaml:"registers"`
	Influx    *InfluxConfig    `yaml:"influx"`
	MQTT      *MQTTConfig      `yaml:"mqtt"`
}

type CSVConfig struct {
	Path string `yaml:"path"`
}

type JSONConfig struct {
	Path string `yaml:"path"` // "-" or empty = stdout
}

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type SQLConfig struct {
	Driver string `yaml:"driver"` // sqlite | mysql
	DSN    string `yaml:"dsn"`
	Table  string `yaml:"table"`
}

const (
	ProtocolModbus = "modbus"
	ProtocolIngest = "ingest"
)

type RegistersConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Protocol  string `yaml:"protocol"` // modbus | ingest
	UnitID    uint8  `yaml:"unit_id"`
	Address   uint16 `yaml:"address"`
	TimeoutMs int    `yaml:"timeout_ms"`

	// Device status block (optional, opt-in)
	StatusUnitID *uint8  `yaml:"status_unit_id"`
	StatusSlot   *uint16 `yaml:"status_slot"`
	DeviceName   string  `yaml:"device_name"`
}

type InfluxConfig struct {
	URL         string `yaml:"url"`
	Token       string `yaml:"token"`
	Org         string `yaml:"org"`
	Bucket      string `yaml:"bucket"`
	Measurement string `yaml:"measurement"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      byte   `yaml:"qos"`
	Retained bool   `yaml:"retained"`
}

// Load reads a YAML config file. It does not validate.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, rejecting unknown keys.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &cfg, nil
}
