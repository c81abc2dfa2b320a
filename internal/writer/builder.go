// internal/writer/builder.go
package writer

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	cfg "github.com/tamzrod/rover-logger/internal/config"
	"github.com/tamzrod/rover-logger/internal/status"
	"github.com/tamzrod/rover-logger/internal/writer/ingest"
	wmodbus "github.com/tamzrod/rover-logger/internal/writer/modbus"
)

// Build creates a fanout over every configured sink. The status writer is
// nil unless the register sink enables the status block.
// Assumes config has already been validated and normalized.
func Build(c *cfg.Config, log zerolog.Logger) (*Fanout, StatusWriter, error) {
	f := NewFanout(c.Poll.RetentionDays, time.Now(), log)
	s := c.Sinks

	if s.CSV != nil {
		f.Add("csv", newCSVSink(s.CSV.Path))
	}
	if s.JSON != nil {
		f.Add("json", newJSONSink(s.JSON.Path))
	}
	if s.SQL != nil {
		f.Add("sql/"+s.SQL.Driver, newSQLSink(s.SQL.Driver, s.SQL.DSN, s.SQL.Table))
	}
	if s.Influx != nil {
		f.Add("influx", newInfluxSink(*s.Influx))
	}
	if s.MQTT != nil {
		f.Add("mqtt", newMQTTSink(*s.MQTT, log))
	}

	var sw StatusWriter
	if r := s.Registers; r != nil {
		cli, closeFn, err := buildEndpointClient(*r)
		if err != nil {
			return nil, nil, err
		}

		f.Add("registers/"+r.Protocol, newImageSink(ImagePlan{
			Endpoint: r.Endpoint,
			UnitID:   r.UnitID,
			Address:  r.Address,
		}, cli, closeFn))

		if r.StatusUnitID != nil && r.StatusSlot != nil {
			plan, err := BuildStatusPlan(*r)
			if err != nil {
				_ = closeFn()
				return nil, nil, err
			}
			sw = NewDeviceStatusWriter(plan, cli)
		}
	}

	if f.Len() == 0 {
		log.Warn().Msg("no sinks configured, snapshots are only logged")
	}

	return f, sw, nil
}

// BuildStatusPlan converts the register sink config into a status plan.
func BuildStatusPlan(r cfg.RegistersConfig) (StatusPlan, error) {
	if r.StatusUnitID == nil || r.StatusSlot == nil {
		return StatusPlan{}, errors.New("writer: status_unit_id and status_slot required")
	}
	if int(*r.StatusSlot)*status.SlotsPerDevice+status.SlotsPerDevice > math.MaxUint16+1 {
		return StatusPlan{}, fmt.Errorf("writer: status_slot %d out of range", *r.StatusSlot)
	}
	return StatusPlan{
		Endpoint:   r.Endpoint,
		UnitID:     *r.StatusUnitID,
		BaseSlot:   *r.StatusSlot,
		DeviceName: r.DeviceName,
	}, nil
}

// buildEndpointClient creates the register endpoint client for the
// configured protocol.
func buildEndpointClient(r cfg.RegistersConfig) (endpointClient, func() error, error) {
	switch r.Protocol {
	case cfg.ProtocolModbus:
		c, err := wmodbus.NewEndpointClient(wmodbus.Config{
			Endpoint: r.Endpoint,
			Timeout:  r.Timeout(),
		})
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil

	case cfg.ProtocolIngest:
		c, err := ingest.NewEndpointClient(ingest.Config{
			Endpoint: r.Endpoint,
			Timeout:  r.Timeout(),
		})
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	}

	return nil, nil, fmt.Errorf("writer: unknown register protocol %q", r.Protocol)
}
