// internal/writer/influx_test.go
package writer

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cfg "github.com/tamzrod/rover-logger/internal/config"
	"github.com/tamzrod/rover-logger/internal/poller"
)

func TestInfluxPoint_TagsFieldsAndTime(t *testing.T) {
	s := &influxSink{cfg: cfg.InfluxConfig{Measurement: "rover"}}
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	p := s.point(poller.PollResult{At: at, Snapshot: sampleSnapshot()})

	if p.Name() != "rover" {
		t.Fatalf("expected measurement rover, got %q", p.Name())
	}
	if !p.Time().Equal(at) {
		t.Fatalf("expected time %v, got %v", at, p.Time())
	}

	tags := map[string]string{}
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	if len(tags) != 2 || tags["model"] != "RNG-CTRL-RVR40" || tags["serial"] != "1A2B3C4D" {
		t.Fatalf("unexpected tags %v", tags)
	}

	fields := map[string]any{}
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	if want := len(fieldNames()) - 2; len(fields) != want {
		t.Fatalf("expected %d fields, got %d", want, len(fields))
	}
	if _, ok := fields["model"]; ok {
		t.Fatalf("model must be a tag, not a field")
	}
	if _, ok := fields["serial_number"]; ok {
		t.Fatalf("serial_number must be a tag, not a field")
	}
	if fields["battery_voltage"] != 13.2 {
		t.Fatalf("unexpected battery_voltage %v", fields["battery_voltage"])
	}
	if fields["power_generation"] != int64(160) {
		t.Fatalf("unexpected power_generation %v", fields["power_generation"])
	}
	if fields["charging_state"] != "mppt" {
		t.Fatalf("unexpected charging_state %v", fields["charging_state"])
	}
}

func TestInfluxSink_PingAndWrite(t *testing.T) {
	bodies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/write") {
			b, _ := io.ReadAll(r.Body)
			bodies <- string(b)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := newInfluxSink(cfg.InfluxConfig{
		URL:         srv.URL,
		Token:       "t",
		Org:         "home",
		Bucket:      "solar",
		Measurement: "rover",
	})
	defer s.Close()
	ctx := context.Background()

	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init err=%v", err)
	}
	if err := s.Append(ctx, poller.PollResult{At: time.Unix(1717236000, 0), Snapshot: sampleSnapshot()}); err != nil {
		t.Fatalf("Append err=%v", err)
	}

	line := <-bodies
	if !strings.HasPrefix(line, "rover,model=RNG-CTRL-RVR40,serial=1A2B3C4D ") {
		t.Fatalf("unexpected line protocol %q", line)
	}
	if !strings.Contains(line, "power_generation=160i") {
		t.Fatalf("expected integer generation field in %q", line)
	}
}

func TestInfluxSink_InitFailsWhenServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := newInfluxSink(cfg.InfluxConfig{URL: srv.URL, Org: "home", Bucket: "solar", Measurement: "rover"})
	defer s.Close()

	if err := s.Init(context.Background()); err == nil {
		t.Fatalf("expected ping failure, got nil")
	}
}
