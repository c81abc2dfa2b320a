// internal/writer/jsonl_test.go
package writer

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tamzrod/rover-logger/internal/poller"
)

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var out []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("bad line %q: %v", sc.Text(), err)
		}
		out = append(out, m)
	}
	return out
}

func TestJSONSink_RecordShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rover.jsonl")
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	s := newJSONSink(path)
	_ = s.Init(ctx)
	if err := s.Append(ctx, poller.PollResult{At: at, Snapshot: sampleSnapshot()}); err != nil {
		t.Fatalf("append: %v", err)
	}
	_ = s.Close()

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	rec := lines[0]
	if rec["timestamp"] != "2024-06-01T10:00:00Z" {
		t.Fatalf("unexpected timestamp %v", rec["timestamp"])
	}
	status, ok := rec["status"].(map[string]any)
	if !ok || status["charging_state"] != "mppt" {
		t.Fatalf("unexpected status %v", rec["status"])
	}
	daily, ok := rec["daily_stats"].(map[string]any)
	if !ok || daily["power_generation"] != float64(160) {
		t.Fatalf("unexpected daily stats %v", rec["daily_stats"])
	}
}

func TestJSONSink_DeleteRecordsOlderThan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rover.jsonl")
	ctx := context.Background()
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

	s := newJSONSink(path)
	s.now = func() time.Time { return now }
	_ = s.Init(ctx)
	_ = s.Append(ctx, poller.PollResult{At: now.AddDate(0, 0, -40), Snapshot: sampleSnapshot()})
	_ = s.Append(ctx, poller.PollResult{At: now.AddDate(0, 0, -1), Snapshot: sampleSnapshot()})

	if err := s.DeleteRecordsOlderThan(ctx, 30); err != nil {
		t.Fatalf("prune: %v", err)
	}
	_ = s.Append(ctx, poller.PollResult{At: now, Snapshot: sampleSnapshot()})
	_ = s.Close()

	if n := len(readLines(t, path)); n != 2 {
		t.Fatalf("expected 2 lines after prune, got %d", n)
	}
}

func TestJSONSink_StdoutNeverPruned(t *testing.T) {
	s := newJSONSink("-")
	if err := s.DeleteRecordsOlderThan(context.Background(), 1); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestJSONSink_FailedPruneKeepsAppending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rover.jsonl")
	ctx := context.Background()
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

	s := newJSONSink(path)
	s.now = func() time.Time { return now }
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init err=%v", err)
	}
	_ = s.Append(ctx, poller.PollResult{At: now.AddDate(0, 0, -40), Snapshot: sampleSnapshot()})

	if err := os.Mkdir(path+".tmp", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := s.DeleteRecordsOlderThan(ctx, 30); err == nil {
		t.Fatalf("expected prune error, got nil")
	}
	if err := s.Append(ctx, poller.PollResult{At: now, Snapshot: sampleSnapshot()}); err != nil {
		t.Fatalf("expected append after failed prune to succeed, got %v", err)
	}
	_ = s.Close()

	if n := len(readLines(t, path)); n != 2 {
		t.Fatalf("expected 2 lines, got %d", n)
	}
}
