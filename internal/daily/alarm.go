// internal/daily/alarm.go
package daily

import "time"

// MidnightAlarm reports a local date change exactly once per day.
type MidnightAlarm struct {
	year  int
	month time.Month
	day   int
}

// NewMidnightAlarm arms the alarm on the date of now.
func NewMidnightAlarm(now time.Time) *MidnightAlarm {
	a := &MidnightAlarm{}
	a.year, a.month, a.day = now.Date()
	return a
}

// Tick returns true if now falls on a different date than the last tick.
// The date is taken in now's location; pass local time.
func (a *MidnightAlarm) Tick(now time.Time) bool {
	y, m, d := now.Date()
	if y == a.year && m == a.month && d == a.day {
		return false
	}
	a.year, a.month, a.day = y, m, d
	return true
}
