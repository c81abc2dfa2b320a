// internal/poller/runner.go
package poller

import (
	"context"
	"time"
)

// Run polls, hands the result to handle, then sleeps the remainder of
// the interval. Single goroutine, no overlap, no retries.
//
// Cancellation interrupts the sleep; a poll already started runs to
// completion so no frame is left half-exchanged.
func (p *Poller) Run(ctx context.Context, handle func(PollResult)) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if ctx.Err() != nil {
			return
		}

		start := time.Now()
		handle(p.PollOnce())

		wait := p.cfg.Interval - time.Since(start)
		if wait < 0 {
			wait = 0
		}
		timer.Reset(wait)
	}
}
