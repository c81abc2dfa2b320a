// internal/writer/jsonl.go
package writer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tamzrod/rover-logger/internal/poller"
	"github.com/tamzrod/rover-logger/internal/rover"
)

// Record is the JSON form of one successful poll.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	rover.Snapshot
}

// NewRecord builds the JSON record of a poll result.
func NewRecord(res poller.PollResult) Record {
	return Record{Timestamp: res.At.UTC(), Snapshot: res.Snapshot}
}

// jsonSink writes one JSON object per line, to a file or to stdout.
type jsonSink struct {
	path string
	now  func() time.Time

	out io.Writer
	f   *os.File
}

func newJSONSink(path string) *jsonSink {
	return &jsonSink{path: path, now: time.Now}
}

func (s *jsonSink) stdout() bool { return s.path == "" || s.path == "-" }

func (s *jsonSink) Init(context.Context) error {
	if s.out != nil {
		return nil
	}
	if s.stdout() {
		s.out = os.Stdout
		return nil
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("json: open: %w", err)
	}
	s.f, s.out = f, f
	return nil
}

func (s *jsonSink) Append(_ context.Context, res poller.PollResult) error {
	if s.out == nil {
		return errors.New("json: not initialized")
	}

	b, err := json.Marshal(NewRecord(res))
	if err != nil {
		return fmt.Errorf("json: marshal: %w", err)
	}
	b = append(b, '\n')

	if _, err := s.out.Write(b); err != nil {
		return fmt.Errorf("json: write: %w", err)
	}
	return nil
}

// DeleteRecordsOlderThan rewrites the file without lines older than days.
// Lines that do not decode are kept. Stdout is never pruned.
// The file is reopened for appends whether or not the rewrite succeeds.
func (s *jsonSink) DeleteRecordsOlderThan(ctx context.Context, days int) (err error) {
	if s.stdout() {
		return nil
	}

	cerr := s.Close()
	defer func() {
		if ierr := s.Init(ctx); err == nil {
			err = ierr
		}
	}()
	if cerr != nil {
		return cerr
	}

	return s.rewrite(cutoff(s.now(), days))
}

func (s *jsonSink) rewrite(limit time.Time) error {
	b, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("json: prune read: %w", err)
	}

	var kept bytes.Buffer
	sc := bufio.NewScanner(bytes.NewReader(b))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var head struct {
			Timestamp time.Time `json:"timestamp"`
		}
		if json.Unmarshal(line, &head) == nil && !head.Timestamp.IsZero() && head.Timestamp.Before(limit) {
			continue
		}
		kept.Write(line)
		kept.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("json: prune scan: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, kept.Bytes(), 0o644); err != nil {
		return fmt.Errorf("json: prune write: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("json: prune rename: %w", err)
	}
	return nil
}

func (s *jsonSink) Close() error {
	s.out = nil
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
