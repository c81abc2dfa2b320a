// internal/writer/csv.go
package writer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tamzrod/rover-logger/internal/poller"
)

const timestampColumn = "timestamp"

// csvSink appends one row per snapshot to a file.
// The header is written when the file is created.
type csvSink struct {
	path string
	now  func() time.Time

	f *os.File
	w *csv.Writer
}

func newCSVSink(path string) *csvSink {
	return &csvSink{path: path, now: time.Now}
}

func (s *csvSink) Init(context.Context) error {
	if s.f != nil {
		return nil
	}

	fresh := true
	if st, err := os.Stat(s.path); err == nil && st.Size() > 0 {
		fresh = false
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("csv: open: %w", err)
	}
	w := csv.NewWriter(f)

	if fresh {
		err := w.Write(csvHeader())
		if err == nil {
			w.Flush()
			err = w.Error()
		}
		if err != nil {
			f.Close()
			return fmt.Errorf("csv: header: %w", err)
		}
	}

	s.f, s.w = f, w
	return nil
}

func (s *csvSink) Append(_ context.Context, res poller.PollResult) error {
	if s.w == nil {
		return errors.New("csv: not initialized")
	}

	fs := snapshotFields(res.Snapshot)
	row := make([]string, 0, len(fs)+1)
	row = append(row, res.At.UTC().Format(time.RFC3339))
	for _, f := range fs {
		row = append(row, formatValue(f.Value))
	}

	if err := s.w.Write(row); err != nil {
		return fmt.Errorf("csv: write: %w", err)
	}
	s.w.Flush()
	return s.w.Error()
}

// DeleteRecordsOlderThan rewrites the file without rows older than days.
// Rows whose timestamp cannot be parsed are kept.
// The file is reopened for appends whether or not the rewrite succeeds.
func (s *csvSink) DeleteRecordsOlderThan(ctx context.Context, days int) (err error) {
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

func (s *csvSink) rewrite(limit time.Time) error {
	in, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("csv: prune open: %w", err)
	}
	defer in.Close()

	tmp := s.path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("csv: prune create: %w", err)
	}

	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	w := csv.NewWriter(out)

	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			out.Close()
			os.Remove(tmp)
			return fmt.Errorf("csv: prune read: %w", err)
		}

		if first {
			first = false
			if len(rec) > 0 && rec[0] == timestampColumn {
				_ = w.Write(rec)
				continue
			}
		}

		if len(rec) > 0 {
			if at, perr := time.Parse(time.RFC3339, rec[0]); perr == nil && at.Before(limit) {
				continue
			}
		}
		_ = w.Write(rec)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("csv: prune write: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("csv: prune close: %w", err)
	}

	return os.Rename(tmp, s.path)
}

func (s *csvSink) Close() error {
	if s.f == nil {
		return nil
	}
	s.w.Flush()
	werr := s.w.Error()
	cerr := s.f.Close()
	s.f, s.w = nil, nil
	if werr != nil {
		return werr
	}
	return cerr
}

func csvHeader() []string {
	return append([]string{timestampColumn}, fieldNames()...)
}
