// internal/writer/csv_test.go
package writer

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tamzrod/rover-logger/internal/poller"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return rows
}

func TestCSVSink_HeaderOnceAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rover.csv")
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	s := newCSVSink(path)
	if err := s.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := s.Init(ctx); err != nil {
		t.Fatalf("second init: %v", err)
	}
	if err := s.Append(ctx, poller.PollResult{At: at, Snapshot: sampleSnapshot()}); err != nil {
		t.Fatalf("append: %v", err)
	}
	_ = s.Close()

	// reopen: header must not be repeated
	s = newCSVSink(path)
	_ = s.Init(ctx)
	_ = s.Append(ctx, poller.PollResult{At: at.Add(time.Minute), Snapshot: sampleSnapshot()})
	_ = s.Close()

	rows := readCSV(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != timestampColumn || len(rows[0]) != len(fieldNames())+1 {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "2024-06-01T10:00:00Z" {
		t.Fatalf("unexpected timestamp %q", rows[1][0])
	}
	if rows[1][1] != "RNG-CTRL-RVR40" {
		t.Fatalf("unexpected model %q", rows[1][1])
	}
}

func TestCSVSink_DeleteRecordsOlderThan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rover.csv")
	ctx := context.Background()
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

	s := newCSVSink(path)
	s.now = func() time.Time { return now }
	_ = s.Init(ctx)
	_ = s.Append(ctx, poller.PollResult{At: now.AddDate(0, 0, -20), Snapshot: sampleSnapshot()})
	_ = s.Append(ctx, poller.PollResult{At: now.AddDate(0, 0, -3), Snapshot: sampleSnapshot()})
	_ = s.Append(ctx, poller.PollResult{At: now.Add(-time.Hour), Snapshot: sampleSnapshot()})

	if err := s.DeleteRecordsOlderThan(ctx, 7); err != nil {
		t.Fatalf("prune: %v", err)
	}

	// sink stays usable after pruning
	if err := s.Append(ctx, poller.PollResult{At: now, Snapshot: sampleSnapshot()}); err != nil {
		t.Fatalf("append after prune: %v", err)
	}
	_ = s.Close()

	rows := readCSV(t, path)
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][0] != timestampColumn {
		t.Fatalf("header lost during prune")
	}
	for _, r := range rows[1:] {
		at, err := time.Parse(time.RFC3339, r[0])
		if err != nil || at.Before(now.AddDate(0, 0, -7)) {
			t.Fatalf("unexpected row after prune: %v", r[0])
		}
	}
}

func TestCSVSink_FailedPruneKeepsAppending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rover.csv")
	ctx := context.Background()
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

	s := newCSVSink(path)
	s.now = func() time.Time { return now }
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init err=%v", err)
	}
	_ = s.Append(ctx, poller.PollResult{At: now.AddDate(0, 0, -20), Snapshot: sampleSnapshot()})

	// the rewrite target cannot be created
	if err := os.Mkdir(path+".tmp", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := s.DeleteRecordsOlderThan(ctx, 7); err == nil {
		t.Fatalf("expected prune error, got nil")
	}
	if err := s.Append(ctx, poller.PollResult{At: now, Snapshot: sampleSnapshot()}); err != nil {
		t.Fatalf("expected append after failed prune to succeed, got %v", err)
	}
	_ = s.Close()

	rows := readCSV(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
}

func TestCSVSink_HeaderFailureLeavesSinkClosed(t *testing.T) {
	// writes to /dev/full always fail with ENOSPC
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	ctx := context.Background()
	s := newCSVSink("/dev/full")

	if err := s.Init(ctx); err == nil {
		t.Fatalf("expected header error, got nil")
	}
	if s.f != nil || s.w != nil {
		t.Fatalf("expected no open handle after header failure")
	}
	if err := s.Init(ctx); err == nil {
		t.Fatalf("expected second Init to retry the header and fail again")
	}
	if err := s.Append(ctx, poller.PollResult{At: time.Now(), Snapshot: sampleSnapshot()}); err == nil {
		t.Fatalf("expected append on a closed sink to fail")
	}
}
