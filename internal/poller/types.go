// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/rover-logger/internal/daily"
	"github.com/tamzrod/rover-logger/internal/rover"
)

// PollResult is produced by one poll cycle.
type PollResult struct {
	At time.Time

	// Snapshot is valid only when Err is nil.
	Snapshot rover.Snapshot

	// Daily is the correction mode after this poll; nil when correction is off.
	Daily *daily.State

	Err error // non-nil means the poll cycle failed
}
