// internal/daily/corrector.go
package daily

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/rover-logger/internal/rover"
)

// Source is the upstream the corrector wraps (normally a session).
type Source interface {
	SystemInfo() (rover.SystemInfo, error)
	AllData(cached *rover.SystemInfo) (rover.Snapshot, error)
}

// state is one of *passThrough or *untrustedPeriod.
type state interface {
	isState()
}

// passThrough trusts the device's daily stats and adds generation that
// accrued before the device performed its own reset today.
type passThrough struct {
	carryOverWh int
}

// untrustedPeriod covers local midnight up to the device's own reset.
// Extrema are tracked locally; generation is measured from the baseline.
type untrustedPeriod struct {
	baselineWh int
	minV       float64
	maxV       float64
	maxChargeA float64
	maxChargeW int
}

func (*passThrough) isState()     {}
func (*untrustedPeriod) isState() {}

func newUntrusted(baselineWh int, ps rover.PowerStatus) *untrustedPeriod {
	return &untrustedPeriod{
		baselineWh: baselineWh,
		minV:       ps.BatteryVoltage,
		maxV:       ps.BatteryVoltage,
		maxChargeA: ps.ChargingCurrent,
		maxChargeW: ps.PanelPower,
	}
}

func (u *untrustedPeriod) observe(ps rover.PowerStatus) {
	u.minV = min(u.minV, ps.BatteryVoltage)
	u.maxV = max(u.maxV, ps.BatteryVoltage)
	u.maxChargeA = max(u.maxChargeA, ps.ChargingCurrent)
	u.maxChargeW = max(u.maxChargeW, ps.PanelPower)
}

// report replaces the device's stats. Fields that cannot be derived from
// instantaneous readings are zero.
func (u *untrustedPeriod) report(device rover.DailyStats) rover.DailyStats {
	return rover.DailyStats{
		MinBatteryVoltage:  u.minV,
		MaxBatteryVoltage:  u.maxV,
		MaxChargingCurrent: u.maxChargeA,
		MaxChargingPower:   u.maxChargeW,
		PowerGeneration:    max(0, device.PowerGeneration-u.baselineWh),
	}
}

// State is a read-only view of the corrector for logs and metrics.
type State struct {
	Untrusted   bool
	BaselineWh  int
	CarryOverWh int
}

// Corrector makes DailyStats behave as if the device reset them at
// local midnight.
type Corrector struct {
	src   Source
	now   func() time.Time
	alarm *MidnightAlarm
	log   zerolog.Logger

	state  state
	prevWh int
	seen   bool
}

// NewCorrector wraps src. now defaults to time.Now.
func NewCorrector(src Source, now func() time.Time, log zerolog.Logger) *Corrector {
	if now == nil {
		now = time.Now
	}
	return &Corrector{
		src:   src,
		now:   now,
		alarm: NewMidnightAlarm(now()),
		log:   log.With().Str("component", "daily").Logger(),
		state: &passThrough{},
	}
}

// SystemInfo passes through.
func (c *Corrector) SystemInfo() (rover.SystemInfo, error) {
	return c.src.SystemInfo()
}

// AllData reads from the source and replaces DailyStats.
// Errors pass through and leave the state untouched.
func (c *Corrector) AllData(cached *rover.SystemInfo) (rover.Snapshot, error) {
	snap, err := c.src.AllData(cached)
	if err != nil {
		return rover.Snapshot{}, err
	}
	return c.apply(c.now(), snap), nil
}

// State reports the active mode.
func (c *Corrector) State() State {
	switch st := c.state.(type) {
	case *untrustedPeriod:
		return State{Untrusted: true, BaselineWh: st.baselineWh}
	case *passThrough:
		return State{CarryOverWh: st.carryOverWh}
	}
	return State{}
}

// apply advances the state machine by one poll. Midnight is checked
// before the reset so a poll that sees both does not carry anything over.
func (c *Corrector) apply(now time.Time, snap rover.Snapshot) rover.Snapshot {
	wh := snap.DailyStats.PowerGeneration

	enteredNow := false
	if c.alarm.Tick(now) {
		c.state = newUntrusted(wh, snap.PowerStatus)
		enteredNow = true
		c.log.Info().Int("baseline_wh", wh).Msg("midnight crossed, daily stats untrusted until device reset")
	}

	if c.seen && wh < c.prevWh {
		switch st := c.state.(type) {
		case *untrustedPeriod:
			carry := 0
			if !enteredNow {
				carry = max(0, c.prevWh-st.baselineWh)
			}
			c.state = &passThrough{carryOverWh: carry}
			c.log.Info().Int("prev_wh", c.prevWh).Int("wh", wh).Int("carry_over_wh", carry).Msg("device reset daily stats")
		case *passThrough:
			c.state = &passThrough{}
			c.log.Warn().Int("prev_wh", c.prevWh).Int("wh", wh).Msg("device reset daily stats outside untrusted period")
		}
	}
	c.prevWh, c.seen = wh, true

	switch st := c.state.(type) {
	case *untrustedPeriod:
		st.observe(snap.PowerStatus)
		return snap.WithDailyStats(st.report(snap.DailyStats))
	case *passThrough:
		d := snap.DailyStats
		d.PowerGeneration += st.carryOverWh
		return snap.WithDailyStats(d)
	}
	return snap
}
