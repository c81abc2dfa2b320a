// internal/poller/poller.go
package poller

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/rover-logger/internal/daily"
	"github.com/tamzrod/rover-logger/internal/rover"
)

// Source is what the poller reads from: a session, or a corrector
// wrapping one.
type Source interface {
	SystemInfo() (rover.SystemInfo, error)
	AllData(cached *rover.SystemInfo) (rover.Snapshot, error)
}

// stateful is implemented by the daily-stats corrector.
type stateful interface {
	State() daily.State
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	Interval time.Duration
}

// Poller is a clock-driven reader. SystemInfo is read once and cached.
type Poller struct {
	cfg Config
	src Source
	log zerolog.Logger
	now func() time.Time

	info *rover.SystemInfo
}

// New creates a poller with immutable config.
func New(cfg Config, src Source, log zerolog.Logger) (*Poller, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if src == nil {
		return nil, errors.New("poller: source required")
	}
	return &Poller{
		cfg: cfg,
		src: src,
		log: log.With().Str("component", "poller").Logger(),
		now: time.Now,
	}, nil
}

// PollOnce performs exactly one poll cycle.
// All-or-nothing: any failure aborts the cycle.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{At: p.now()}

	snap, err := p.src.AllData(p.info)
	if err != nil {
		res.Err = err
		return res
	}

	if p.info == nil {
		info := snap.SystemInfo
		p.info = &info
		p.log.Info().
			Str("model", info.Model).
			Str("serial", info.SerialNumber).
			Str("software", info.SoftwareVersion).
			Str("hardware", info.HardwareVersion).
			Msg("system info cached")
	}

	if s, ok := p.src.(stateful); ok {
		st := s.State()
		res.Daily = &st
	}

	// Commit only if all reads succeeded
	res.Snapshot = snap
	return res
}
