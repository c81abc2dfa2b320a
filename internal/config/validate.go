// internal/config/validate.go
package config

import (
	"fmt"
	"regexp"

	"github.com/rs/zerolog"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks configuration correctness.
// It performs declarative validation only; zero values mean "default".
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	if err := validateDevice(cfg.Device); err != nil {
		return err
	}

	// ------------------------------------------------------------
	// POLL
	// ------------------------------------------------------------

	if cfg.Poll.IntervalMs < 0 {
		return fmt.Errorf("poll: interval_ms must be >= 0, got %d", cfg.Poll.IntervalMs)
	}
	if cfg.Poll.RetentionDays < 0 {
		return fmt.Errorf("poll: retention_days must be >= 0, got %d", cfg.Poll.RetentionDays)
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	if cfg.Log.Level != "" {
		if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
			return fmt.Errorf("log: level %q: %v", cfg.Log.Level, err)
		}
	}
	switch cfg.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("log: format must be console or json, got %q", cfg.Log.Format)
	}

	return validateSinks(cfg.Sinks)
}

func validateDevice(d DeviceConfig) error {
	switch d.Transport {
	case "", TransportSerial:
		if d.Port == "" {
			return fmt.Errorf("device: port is required for serial transport")
		}
	case TransportTCP:
		if d.Endpoint == "" {
			return fmt.Errorf("device: endpoint is required for tcp transport")
		}
	default:
		return fmt.Errorf("device: unknown transport %q", d.Transport)
	}

	switch d.Parity {
	case "", "N", "E", "O":
	default:
		return fmt.Errorf("device: parity must be N, E or O, got %q", d.Parity)
	}

	if d.DataBits != 0 && (d.DataBits < 5 || d.DataBits > 8) {
		return fmt.Errorf("device: data_bits must be 5..8, got %d", d.DataBits)
	}
	if d.StopBits != 0 && d.StopBits != 1 && d.StopBits != 2 {
		return fmt.Errorf("device: stop_bits must be 1 or 2, got %d", d.StopBits)
	}
	if d.BaudRate < 0 {
		return fmt.Errorf("device: baud_rate must be > 0, got %d", d.BaudRate)
	}
	if d.TimeoutMs < 0 {
		return fmt.Errorf("device: timeout_ms must be >= 0, got %d", d.TimeoutMs)
	}

	if d.Address != nil && (*d.Address == 0 || *d.Address > 0xF7) {
		return fmt.Errorf("device: address must be 1..247, got %d", *d.Address)
	}

	return nil
}

func validateSinks(s SinksConfig) error {
	if s.CSV != nil && s.CSV.Path == "" {
		return fmt.Errorf("sinks.csv: path is required")
	}

	if s.SQL != nil {
		switch s.SQL.Driver {
		case DriverSQLite, DriverMySQL:
		default:
			return fmt.Errorf("sinks.sql: driver must be sqlite or mysql, got %q", s.SQL.Driver)
		}
		if s.SQL.DSN == "" {
			return fmt.Errorf("sinks.sql: dsn is required")
		}
		if s.SQL.Table != "" && !tableName.MatchString(s.SQL.Table) {
			return fmt.Errorf("sinks.sql: table %q is not a plain identifier", s.SQL.Table)
		}
	}

	if r := s.Registers; r != nil {
		if r.Endpoint == "" {
			return fmt.Errorf("sinks.registers: endpoint is required")
		}
		switch r.Protocol {
		case "", ProtocolModbus, ProtocolIngest:
		default:
			return fmt.Errorf("sinks.registers: protocol must be modbus or ingest, got %q", r.Protocol)
		}
		if r.TimeoutMs < 0 {
			return fmt.Errorf("sinks.registers: timeout_ms must be >= 0, got %d", r.TimeoutMs)
		}

		// device_name sanity (ASCII only)
		for i := 0; i < len(r.DeviceName); i++ {
			if r.DeviceName[i] > 0x7F {
				return fmt.Errorf("sinks.registers: device_name must contain ASCII characters only")
			}
		}

		// status is opt-in and needs its own unit id
		if r.StatusSlot != nil && r.StatusUnitID == nil {
			return fmt.Errorf("sinks.registers: status_slot is set but status_unit_id is not")
		}
	}

	if i := s.Influx; i != nil {
		if i.URL == "" || i.Org == "" || i.Bucket == "" {
			return fmt.Errorf("sinks.influx: url, org and bucket are required")
		}
	}

	if m := s.MQTT; m != nil {
		if m.Broker == "" || m.Topic == "" {
			return fmt.Errorf("sinks.mqtt: broker and topic are required")
		}
		if m.QoS > 2 {
			return fmt.Errorf("sinks.mqtt: qos must be 0..2, got %d", m.QoS)
		}
	}

	return nil
}
