// internal/config/normalize.go
package config

import "time"

// Defaults applied by Normalize.
const (
	DefaultBaudRate     = 9600
	DefaultDataBits     = 8
	DefaultStopBits     = 1
	DefaultParity       = "N"
	DefaultAddress      = 1
	DefaultTimeoutMs    = 1000
	DefaultIntervalMs   = 10000
	DefaultSinkTimeout  = 2000
	DefaultTable        = "rover_snapshots"
	DefaultMeasurement  = "rover"
	DefaultMQTTClientID = "rover-logger"
	DeviceNameMaxChars  = 16
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	d := &cfg.Device
	if d.Transport == "" {
		d.Transport = TransportSerial
	}
	if d.BaudRate == 0 {
		d.BaudRate = DefaultBaudRate
	}
	if d.DataBits == 0 {
		d.DataBits = DefaultDataBits
	}
	if d.StopBits == 0 {
		d.StopBits = DefaultStopBits
	}
	if d.Parity == "" {
		d.Parity = DefaultParity
	}
	if d.Address == nil {
		a := uint8(DefaultAddress)
		d.Address = &a
	}
	if d.TimeoutMs == 0 {
		d.TimeoutMs = DefaultTimeoutMs
	}

	if cfg.Poll.IntervalMs == 0 {
		cfg.Poll.IntervalMs = DefaultIntervalMs
	}
	if cfg.Poll.CorrectDaily == nil {
		on := true
		cfg.Poll.CorrectDaily = &on
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}

	// ------------------------------------------------------------
	// SINKS
	// ------------------------------------------------------------

	if s := cfg.Sinks.SQL; s != nil && s.Table == "" {
		s.Table = DefaultTable
	}

	if r := cfg.Sinks.Registers; r != nil {
		if r.Protocol == "" {
			r.Protocol = ProtocolModbus
		}
		if r.TimeoutMs == 0 {
			r.TimeoutMs = DefaultSinkTimeout
		}
		if r.UnitID == 0 {
			r.UnitID = 1
		}
		// ASCII already validated; truncate to the status block capacity
		if len(r.DeviceName) > DeviceNameMaxChars {
			r.DeviceName = r.DeviceName[:DeviceNameMaxChars]
		}
	}

	if i := cfg.Sinks.Influx; i != nil && i.Measurement == "" {
		i.Measurement = DefaultMeasurement
	}

	if m := cfg.Sinks.MQTT; m != nil && m.ClientID == "" {
		m.ClientID = DefaultMQTTClientID
	}
}

// Timeout returns the device read deadline.
func (d DeviceConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutMs) * time.Millisecond
}

// Interval returns the poll interval.
func (p PollConfig) Interval() time.Duration {
	return time.Duration(p.IntervalMs) * time.Millisecond
}

// Timeout returns the sink endpoint timeout.
func (r RegistersConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutMs) * time.Millisecond
}
