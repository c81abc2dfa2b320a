// internal/writer/writer.go
package writer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/rover-logger/internal/daily"
	"github.com/tamzrod/rover-logger/internal/poller"
)

type namedSink struct {
	name string
	Sink
}

// Fanout forwards every call to all configured sinks and prunes them once
// per local day. A failing sink does not stop delivery to the others.
type Fanout struct {
	sinks         []namedSink
	retentionDays int
	alarm         *daily.MidnightAlarm
	log           zerolog.Logger
}

// NewFanout creates an empty fanout. retentionDays <= 0 disables pruning.
func NewFanout(retentionDays int, now time.Time, log zerolog.Logger) *Fanout {
	return &Fanout{
		retentionDays: retentionDays,
		alarm:         daily.NewMidnightAlarm(now),
		log:           log.With().Str("component", "writer").Logger(),
	}
}

// Add registers a sink under name.
func (f *Fanout) Add(name string, s Sink) {
	f.sinks = append(f.sinks, namedSink{name: name, Sink: s})
}

// Len returns the number of sinks.
func (f *Fanout) Len() int { return len(f.sinks) }

// Init initializes every sink and stops at the first failure.
func (f *Fanout) Init(ctx context.Context) error {
	for _, s := range f.sinks {
		if err := s.Init(ctx); err != nil {
			return fmt.Errorf("writer: init %s: %w", s.name, err)
		}
		f.log.Debug().Str("sink", s.name).Msg("sink ready")
	}
	return nil
}

// Append delivers one poll result. Failed polls are never delivered.
func (f *Fanout) Append(ctx context.Context, res poller.PollResult) error {
	if res.Err != nil {
		return nil
	}

	var errs []string
	for _, s := range f.sinks {
		if err := s.Append(ctx, res); err != nil {
			errs = append(errs, fmt.Sprintf("writer: sink=%s err=%v", s.name, err))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}

// DeleteRecordsOlderThan prunes every sink.
func (f *Fanout) DeleteRecordsOlderThan(ctx context.Context, days int) error {
	var errs []string
	for _, s := range f.sinks {
		if err := s.DeleteRecordsOlderThan(ctx, days); err != nil {
			errs = append(errs, fmt.Sprintf("writer: prune sink=%s err=%v", s.name, err))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}

// Prune deletes old records the first time it is called on a new local day.
func (f *Fanout) Prune(ctx context.Context, now time.Time) error {
	if !f.alarm.Tick(now) || f.retentionDays <= 0 {
		return nil
	}
	f.log.Info().Int("retention_days", f.retentionDays).Msg("pruning old records")
	return f.DeleteRecordsOlderThan(ctx, f.retentionDays)
}

// Close closes every sink and returns the last error.
func (f *Fanout) Close() error {
	var last error
	for _, s := range f.sinks {
		if err := s.Close(); err != nil {
			f.log.Warn().Err(err).Str("sink", s.name).Msg("close failed")
			last = err
		}
	}
	return last
}
