// internal/writer/influx.go
package writer

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	cfg "github.com/tamzrod/rover-logger/internal/config"
	"github.com/tamzrod/rover-logger/internal/poller"
)

// influxSink writes one point per snapshot.
// Model and serial number are tags; every other column is a field.
type influxSink struct {
	cfg cfg.InfluxConfig
	now func() time.Time

	client influxdb2.Client
	write  api.WriteAPIBlocking
}

func newInfluxSink(c cfg.InfluxConfig) *influxSink {
	client := influxdb2.NewClient(c.URL, c.Token)
	return &influxSink{
		cfg:    c,
		now:    time.Now,
		client: client,
		write:  client.WriteAPIBlocking(c.Org, c.Bucket),
	}
}

func (s *influxSink) Init(ctx context.Context) error {
	ok, err := s.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("influx: ping: %w", err)
	}
	if !ok {
		return errors.New("influx: server not ready")
	}
	return nil
}

func (s *influxSink) Append(ctx context.Context, res poller.PollResult) error {
	if err := s.write.WritePoint(ctx, s.point(res)); err != nil {
		return fmt.Errorf("influx: write: %w", err)
	}
	return nil
}

func (s *influxSink) point(res poller.PollResult) *write.Point {
	p := influxdb2.NewPointWithMeasurement(s.cfg.Measurement).
		AddTag("model", res.Snapshot.SystemInfo.Model).
		AddTag("serial", res.Snapshot.SystemInfo.SerialNumber).
		SetTime(res.At)

	for _, f := range snapshotFields(res.Snapshot) {
		switch f.Name {
		case "model", "serial_number":
			continue
		}
		p.AddField(f.Name, f.Value)
	}
	return p
}

func (s *influxSink) DeleteRecordsOlderThan(ctx context.Context, days int) error {
	predicate := fmt.Sprintf(`_measurement="%s"`, s.cfg.Measurement)
	err := s.client.DeleteAPI().DeleteWithName(
		ctx,
		s.cfg.Org,
		s.cfg.Bucket,
		time.Unix(0, 0).UTC(),
		cutoff(s.now(), days),
		predicate,
	)
	if err != nil {
		return fmt.Errorf("influx: delete: %w", err)
	}
	return nil
}

func (s *influxSink) Close() error {
	s.client.Close()
	return nil
}
