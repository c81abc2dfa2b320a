// internal/config/validate_test.go
package config

import "testing"

// helper to build a minimal valid config quickly
func base() *Config {
	return &Config{
		Device: DeviceConfig{
			Port: "/dev/ttyUSB0",
		},
	}
}

func u8(v uint8) *uint8    { return &v }
func u16(v uint16) *uint16 { return &v }

// ---- tests ----

func TestValidate_MinimalSerial(t *testing.T) {
	if err := Validate(base()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_TCPNeedsEndpoint(t *testing.T) {
	cfg := base()
	cfg.Device.Transport = TransportTCP

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected endpoint error, got nil")
	}

	cfg.Device.Endpoint = "10.0.0.7:8899"
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_BroadcastAddressRejected(t *testing.T) {
	cfg := base()
	cfg.Device.Address = u8(0)

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected broadcast address error, got nil")
	}

	cfg.Device.Address = u8(0xF8)
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected reserved address error, got nil")
	}
}

func TestValidate_LineSettings(t *testing.T) {
	cases := []func(*DeviceConfig){
		func(d *DeviceConfig) { d.Parity = "X" },
		func(d *DeviceConfig) { d.DataBits = 9 },
		func(d *DeviceConfig) { d.StopBits = 3 },
		func(d *DeviceConfig) { d.TimeoutMs = -1 },
		func(d *DeviceConfig) { d.Transport = "usb" },
	}

	for i, mutate := range cases {
		cfg := base()
		mutate(&cfg.Device)
		if err := Validate(cfg); err == nil {
			t.Fatalf("case %d: expected error, got nil", i)
		}
	}
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := base()
	cfg.Log.Level = "chatty"

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected log level error, got nil")
	}
}

func TestValidate_SQLTableMustBeIdentifier(t *testing.T) {
	cfg := base()
	cfg.Sinks.SQL = &SQLConfig{Driver: DriverSQLite, DSN: "rover.db", Table: "x; DROP TABLE y"}

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected table name error, got nil")
	}

	cfg.Sinks.SQL.Table = "rover_2024"
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_StatusSlotNeedsUnitID(t *testing.T) {
	cfg := base()
	cfg.Sinks.Registers = &RegistersConfig{Endpoint: "mma:502", StatusSlot: u16(2)}

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected status_unit_id error, got nil")
	}

	cfg.Sinks.Registers.StatusUnitID = u8(9)
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_DeviceNameASCII(t *testing.T) {
	cfg := base()
	cfg.Sinks.Registers = &RegistersConfig{Endpoint: "mma:502", DeviceName: "röver"}

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected ascii error, got nil")
	}
}

func TestNormalize_Defaults(t *testing.T) {
	cfg := base()
	cfg.Sinks.SQL = &SQLConfig{Driver: DriverSQLite, DSN: "rover.db"}
	cfg.Sinks.Registers = &RegistersConfig{Endpoint: "mma:502", DeviceName: "ROVER-40A-GARAGE-ROOF"}

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	Normalize(cfg)

	d := cfg.Device
	if d.Transport != TransportSerial || d.BaudRate != 9600 || d.DataBits != 8 || d.StopBits != 1 || d.Parity != "N" {
		t.Fatalf("unexpected line defaults: %+v", d)
	}
	if d.Address == nil || *d.Address != 1 {
		t.Fatalf("expected default address 1")
	}
	if d.Timeout().Milliseconds() != 1000 || cfg.Poll.Interval().Seconds() != 10 {
		t.Fatalf("unexpected timing defaults: timeout=%v interval=%v", d.Timeout(), cfg.Poll.Interval())
	}
	if cfg.Poll.CorrectDaily == nil || !*cfg.Poll.CorrectDaily {
		t.Fatalf("expected daily correction on by default")
	}
	if cfg.Sinks.SQL.Table != DefaultTable {
		t.Fatalf("expected default table, got %q", cfg.Sinks.SQL.Table)
	}
	if cfg.Sinks.Registers.Protocol != ProtocolModbus || len(cfg.Sinks.Registers.DeviceName) != 16 {
		t.Fatalf("unexpected registers normalization: %+v", cfg.Sinks.Registers)
	}
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("device:\n  port: /dev/ttyUSB0\n  baud: 9600\n"))
	if err == nil {
		t.Fatalf("expected unknown key error, got nil")
	}
}

func TestParse_Full(t *testing.T) {
	doc := `
device:
  transport: serial
  port: /dev/ttyUSB0
  address: 1
  timeout_ms: 800
poll:
  interval_ms: 5000
  retention_days: 14
  correct_daily_stats: false
log:
  level: debug
  format: json
sinks:
  csv:
    path: /var/lib/rover/rover.csv
  mqtt:
    broker: tcp://localhost:1883
    topic: solar/rover
`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse err=%v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("validate err=%v", err)
	}
	Normalize(cfg)

	if *cfg.Poll.CorrectDaily {
		t.Fatalf("expected explicit false to survive normalization")
	}
	if cfg.Poll.RetentionDays != 14 || cfg.Sinks.MQTT.ClientID != DefaultMQTTClientID {
		t.Fatalf("unexpected poll/mqtt: %+v %+v", cfg.Poll, cfg.Sinks.MQTT)
	}
}
