// internal/status/tracker.go
package status

import (
	"errors"
	"time"
)

// Tracker folds poll outcomes into a Snapshot.
type Tracker struct {
	snap         Snapshot
	failingSince time.Time
}

// NewTracker starts in HealthUnknown.
func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Health: HealthUnknown}}
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot { return t.snap }

// Observe records one poll outcome at time at and reports whether the
// snapshot changed.
func (t *Tracker) Observe(at time.Time, err error) (Snapshot, bool) {
	prev := t.snap

	if err == nil {
		// Recovery / OK: reset error code and seconds-in-error.
		t.snap.Health = HealthOK
		t.snap.LastErrorCode = 0
		t.snap.SecondsInError = 0
		t.failingSince = time.Time{}
		return t.snap, t.snap != prev
	}

	if t.failingSince.IsZero() {
		t.failingSince = at
	}
	t.snap.Health = HealthError
	t.snap.LastErrorCode = ErrorCode(err)

	// HARD INVARIANT: seconds_in_error MUST NOT wrap
	secs := at.Sub(t.failingSince) / time.Second
	switch {
	case secs < 0:
		secs = 0
	case secs > SecondsInErrorMax:
		secs = SecondsInErrorMax
	}
	t.snap.SecondsInError = uint16(secs)

	return t.snap, t.snap != prev
}

// SetDaily records the daily-stats correction mode.
func (t *Tracker) SetDaily(untrusted bool, carryOverWh int) {
	t.snap.DailyUntrusted = untrusted
	switch {
	case carryOverWh < 0:
		carryOverWh = 0
	case carryOverWh > 0xFFFF:
		carryOverWh = 0xFFFF
	}
	t.snap.CarryOverWh = uint16(carryOverWh)
}

// ErrorCode extracts a best-effort uint16 code from an error without assuming concrete types.
// If the error does not expose a code, returns 1 (generic error).
func ErrorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coder interface{ Code() uint16 }

	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}

	return 1
}
