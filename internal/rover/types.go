// internal/rover/types.go
package rover

import (
	"encoding/json"
	"strconv"
)

// ProductType identifies the device family reported in the spec register.
type ProductType uint8

const (
	ProductController ProductType = 0
	ProductInverter   ProductType = 1
)

func (p ProductType) String() string {
	switch p {
	case ProductController:
		return "controller"
	case ProductInverter:
		return "inverter"
	default:
		return "unknown(" + strconv.Itoa(int(p)) + ")"
	}
}

func (p ProductType) MarshalJSON() ([]byte, error) { return json.Marshal(p.String()) }

// SystemInfo never changes for a device session.
type SystemInfo struct {
	MaxVoltage              int         `json:"max_voltage"`
	RatedChargingCurrent    int         `json:"rated_charging_current"`
	RatedDischargingCurrent int         `json:"rated_discharging_current"`
	ProductType             ProductType `json:"product_type"`
	Model                   string      `json:"model"`
	SoftwareVersion         string      `json:"software_version"`
	HardwareVersion         string      `json:"hardware_version"`
	SerialNumber            string      `json:"serial_number"`
}

// PowerStatus holds instantaneous readings.
type PowerStatus struct {
	BatteryCapacity       int     `json:"battery_capacity"` // SOC %
	BatteryVoltage        float64 `json:"battery_voltage"`
	ChargingCurrent       float64 `json:"charging_current"`
	BatteryTemperature    int     `json:"battery_temperature"`
	ControllerTemperature int     `json:"controller_temperature"`
	LoadVoltage           float64 `json:"load_voltage"`
	LoadCurrent           float64 `json:"load_current"`
	LoadPower             int     `json:"load_power"`
	PanelVoltage          float64 `json:"panel_voltage"`
	PanelCurrent          float64 `json:"panel_current"`
	PanelPower            int     `json:"panel_power"` // charging power
}

// DailyStats is reset by the device once per day, at a time of its choosing.
// PowerGeneration and PowerConsumption are watt-hours.
type DailyStats struct {
	MinBatteryVoltage     float64 `json:"min_battery_voltage"`
	MaxBatteryVoltage     float64 `json:"max_battery_voltage"`
	MaxChargingCurrent    float64 `json:"max_charging_current"`
	MaxDischargingCurrent float64 `json:"max_discharging_current"`
	MaxChargingPower      int     `json:"max_charging_power"`
	MaxDischargingPower   int     `json:"max_discharging_power"`
	ChargingAmpHours      int     `json:"charging_amp_hours"`
	DischargingAmpHours   int     `json:"discharging_amp_hours"`
	PowerGeneration       int     `json:"power_generation"`
	PowerConsumption      int     `json:"power_consumption"`
}

// HistoricalData holds lifetime counters.
type HistoricalData struct {
	OperatingDays       int    `json:"operating_days"`
	OverDischarges      int    `json:"over_discharges"`
	FullCharges         int    `json:"full_charges"`
	ChargingAmpHours    uint32 `json:"charging_amp_hours"`
	DischargingAmpHours uint32 `json:"discharging_amp_hours"`
	PowerGeneration     uint32 `json:"power_generation"`
	PowerConsumption    uint32 `json:"power_consumption"`
}

// ChargingState is the controller's charging phase.
type ChargingState uint8

const (
	ChargingDeactivated ChargingState = iota
	ChargingActivated
	ChargingMPPT
	ChargingEqualizing
	ChargingBoost
	ChargingFloating
	ChargingCurrentLimiting
)

var chargingStateNames = [...]string{
	"deactivated",
	"activated",
	"mppt",
	"equalizing",
	"boost",
	"floating",
	"current_limiting",
}

func (s ChargingState) String() string {
	if int(s) < len(chargingStateNames) {
		return chargingStateNames[s]
	}
	return "unknown(" + strconv.Itoa(int(s)) + ")"
}

func (s ChargingState) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// Fault is a bit index into the 32-bit fault mask.
type Fault uint8

const (
	FaultBatteryOverDischarge    Fault = 16
	FaultBatteryOverVoltage      Fault = 17
	FaultBatteryUnderVoltage     Fault = 18
	FaultLoadShortCircuit        Fault = 19
	FaultLoadOverPower           Fault = 20
	FaultControllerTempHigh      Fault = 21
	FaultAmbientTempHigh         Fault = 22
	FaultPVInputOverPower        Fault = 23
	FaultPVInputShortCircuit     Fault = 24
	FaultPVInputOverVoltage      Fault = 25
	FaultPanelCounterCurrent     Fault = 26
	FaultPanelWorkingOverVoltage Fault = 27
	FaultPanelReversed           Fault = 28
	FaultAntiReverseMOSShort     Fault = 29
	FaultChargeMOSShort          Fault = 30
)

var faultNames = map[Fault]string{
	FaultBatteryOverDischarge:    "battery_over_discharge",
	FaultBatteryOverVoltage:      "battery_over_voltage",
	FaultBatteryUnderVoltage:     "battery_under_voltage_warning",
	FaultLoadShortCircuit:        "load_short_circuit",
	FaultLoadOverPower:           "load_over_power_or_current",
	FaultControllerTempHigh:      "controller_temperature_too_high",
	FaultAmbientTempHigh:         "ambient_temperature_too_high",
	FaultPVInputOverPower:        "pv_input_over_power",
	FaultPVInputShortCircuit:     "pv_input_short_circuit",
	FaultPVInputOverVoltage:      "pv_input_over_voltage",
	FaultPanelCounterCurrent:     "solar_panel_counter_current",
	FaultPanelWorkingOverVoltage: "solar_panel_working_point_over_voltage",
	FaultPanelReversed:           "solar_panel_reversely_connected",
	FaultAntiReverseMOSShort:     "anti_reverse_mos_short",
	FaultChargeMOSShort:          "charge_mos_short",
}

func (f Fault) String() string {
	if n, ok := faultNames[f]; ok {
		return n
	}
	return "bit" + strconv.Itoa(int(f))
}

// Faults is the raw fault bitmask; bit n set means fault n is active.
type Faults uint32

// Active returns the named faults set in the mask, lowest bit first.
// Bits outside 16..30 are ignored.
func (m Faults) Active() []Fault {
	var out []Fault
	for bit := FaultBatteryOverDischarge; bit <= FaultChargeMOSShort; bit++ {
		if m.Has(bit) {
			out = append(out, bit)
		}
	}
	return out
}

// Has reports whether fault f is active.
func (m Faults) Has(f Fault) bool { return m&(1<<f) != 0 }

func (m Faults) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, 4)
	for _, f := range m.Active() {
		names = append(names, f.String())
	}
	return json.Marshal(names)
}

// ControllerStatus is the street light / charging / fault block.
type ControllerStatus struct {
	StreetLightOn         bool          `json:"street_light_on"`
	StreetLightBrightness int           `json:"street_light_brightness"`
	ChargingState         ChargingState `json:"charging_state"`
	Faults                Faults        `json:"faults"`
}

// Snapshot is the aggregate produced by one successful poll.
// Treat as a value: correction produces a new Snapshot.
type Snapshot struct {
	SystemInfo     SystemInfo       `json:"system_info"`
	PowerStatus    PowerStatus      `json:"power_status"`
	DailyStats     DailyStats       `json:"daily_stats"`
	HistoricalData HistoricalData   `json:"historical_data"`
	Status         ControllerStatus `json:"status"`
}

// WithDailyStats returns a copy of s with DailyStats replaced.
func (s Snapshot) WithDailyStats(d DailyStats) Snapshot {
	s.DailyStats = d
	return s
}
