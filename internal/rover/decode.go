// internal/rover/decode.go
package rover

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// All multi-byte fields are big-endian (high byte first).

func u16(b []byte, off int) uint16 { return binary.BigEndian.Uint16(b[off : off+2]) }
func u32(b []byte, off int) uint32 { return binary.BigEndian.Uint32(b[off : off+4]) }

func volts(b []byte, off int) float64 { return float64(u16(b, off)) / voltScale }
func amps(b []byte, off int) float64  { return float64(u16(b, off)) / ampScale }

// temperature decodes a sign-magnitude byte: bit7 = negative.
func temperature(v byte) int {
	t := int(v & 0x7F)
	if v&0x80 != 0 {
		return -t
	}
	return t
}

func decodeSystemInfo(spec, model, versions, serial []byte) SystemInfo {
	return SystemInfo{
		MaxVoltage:              int(spec[0]),
		RatedChargingCurrent:    int(spec[1]),
		RatedDischargingCurrent: int(spec[2]),
		ProductType:             ProductType(spec[3]),
		Model:                   strings.TrimSpace(strings.Trim(string(model), "\x00")),
		SoftwareVersion:         version(versions[0:4]),
		HardwareVersion:         version(versions[4:8]),
		SerialNumber:            fmt.Sprintf("%X", serial),
	}
}

// version formats 00 MM mm pp as "V<MM>.<mm>.<pp>".
func version(b []byte) string {
	return fmt.Sprintf("V%d.%d.%d", b[1], b[2], b[3])
}

// decodePowerStatus maps the 0x100 block.
// Byte 6 is read as controller temperature and byte 7 as battery
// temperature; this placement has not been confirmed against a device trace.
func decodePowerStatus(b []byte) PowerStatus {
	return PowerStatus{
		BatteryCapacity:       int(u16(b, 0)),
		BatteryVoltage:        volts(b, 2),
		ChargingCurrent:       amps(b, 4),
		ControllerTemperature: temperature(b[6]),
		BatteryTemperature:    temperature(b[7]),
		LoadVoltage:           volts(b, 8),
		LoadCurrent:           amps(b, 10),
		LoadPower:             int(u16(b, 12)),
		PanelVoltage:          volts(b, 14),
		PanelCurrent:          amps(b, 16),
		PanelPower:            int(u16(b, 18)),
	}
}

// decodeDailyStats maps the 0x10B block. Generation and consumption are
// raw watt-hours: the documented kWh/10000 scale does not match devices.
func decodeDailyStats(b []byte) DailyStats {
	return DailyStats{
		MinBatteryVoltage:     volts(b, 0),
		MaxBatteryVoltage:     volts(b, 2),
		MaxChargingCurrent:    amps(b, 4),
		MaxDischargingCurrent: amps(b, 6),
		MaxChargingPower:      int(u16(b, 8)),
		MaxDischargingPower:   int(u16(b, 10)),
		ChargingAmpHours:      int(u16(b, 12)),
		DischargingAmpHours:   int(u16(b, 14)),
		PowerGeneration:       int(u16(b, 16)),
		PowerConsumption:      int(u16(b, 18)),
	}
}

func decodeHistoricalData(b []byte) HistoricalData {
	return HistoricalData{
		OperatingDays:       int(u16(b, 0)),
		OverDischarges:      int(u16(b, 2)),
		FullCharges:         int(u16(b, 4)),
		ChargingAmpHours:    u32(b, 6),
		DischargingAmpHours: u32(b, 10),
		PowerGeneration:     u32(b, 14),
		PowerConsumption:    u32(b, 18),
	}
}

func decodeStatus(b []byte) ControllerStatus {
	return ControllerStatus{
		StreetLightOn:         b[0]&0x80 != 0,
		StreetLightBrightness: int(b[0] & 0x7F),
		ChargingState:         ChargingState(b[1]),
		Faults:                Faults(u32(b, 2)),
	}
}
