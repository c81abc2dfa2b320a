// internal/writer/fields.go
package writer

import (
	"strconv"
	"strings"
	"time"

	"github.com/tamzrod/rover-logger/internal/rover"
)

// field is one flat column of a snapshot.
// Value is float64, int64, bool or string.
type field struct {
	Name  string
	Value any
}

// snapshotFields flattens a snapshot into a fixed column order shared by
// the tabular sinks (csv, sql, influx).
func snapshotFields(s rover.Snapshot) []field {
	ps, ds, hd, st := s.PowerStatus, s.DailyStats, s.HistoricalData, s.Status

	return []field{
		{"model", s.SystemInfo.Model},
		{"serial_number", s.SystemInfo.SerialNumber},

		{"battery_capacity", int64(ps.BatteryCapacity)},
		{"battery_voltage", ps.BatteryVoltage},
		{"charging_current", ps.ChargingCurrent},
		{"battery_temperature", int64(ps.BatteryTemperature)},
		{"controller_temperature", int64(ps.ControllerTemperature)},
		{"load_voltage", ps.LoadVoltage},
		{"load_current", ps.LoadCurrent},
		{"load_power", int64(ps.LoadPower)},
		{"panel_voltage", ps.PanelVoltage},
		{"panel_current", ps.PanelCurrent},
		{"panel_power", int64(ps.PanelPower)},

		{"min_battery_voltage", ds.MinBatteryVoltage},
		{"max_battery_voltage", ds.MaxBatteryVoltage},
		{"max_charging_current", ds.MaxChargingCurrent},
		{"max_discharging_current", ds.MaxDischargingCurrent},
		{"max_charging_power", int64(ds.MaxChargingPower)},
		{"max_discharging_power", int64(ds.MaxDischargingPower)},
		{"charging_amp_hours", int64(ds.ChargingAmpHours)},
		{"discharging_amp_hours", int64(ds.DischargingAmpHours)},
		{"power_generation", int64(ds.PowerGeneration)},
		{"power_consumption", int64(ds.PowerConsumption)},

		{"operating_days", int64(hd.OperatingDays)},
		{"over_discharges", int64(hd.OverDischarges)},
		{"full_charges", int64(hd.FullCharges)},
		{"total_charging_amp_hours", int64(hd.ChargingAmpHours)},
		{"total_discharging_amp_hours", int64(hd.DischargingAmpHours)},
		{"total_power_generation", int64(hd.PowerGeneration)},
		{"total_power_consumption", int64(hd.PowerConsumption)},

		{"street_light_on", st.StreetLightOn},
		{"street_light_brightness", int64(st.StreetLightBrightness)},
		{"charging_state", st.ChargingState.String()},
		{"faults", faultList(st.Faults)},
	}
}

// fieldNames returns the column names in snapshotFields order.
func fieldNames() []string {
	fs := snapshotFields(rover.Snapshot{})
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}
	return out
}

func faultList(m rover.Faults) string {
	active := m.Active()
	names := make([]string, len(active))
	for i, f := range active {
		names[i] = f.String()
	}
	return strings.Join(names, ";")
}

// formatValue renders a field value for text sinks.
func formatValue(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	}
	return ""
}

// cutoff is the oldest timestamp kept when pruning to days.
func cutoff(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}
