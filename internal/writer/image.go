// internal/writer/image.go
package writer

import (
	"context"
	"math"

	"github.com/tamzrod/rover-logger/internal/poller"
	"github.com/tamzrod/rover-logger/internal/rover"
)

// Register image layout (holding registers, offsets from the plan address).
// Scaled values use the controller's own scales: volts x10, amps x100.
const (
	ImgBatteryCapacity = 0
	ImgBatteryVoltage  = 1
	ImgChargingCurrent = 2
	ImgControllerTemp  = 3 // int16
	ImgBatteryTemp     = 4 // int16
	ImgLoadVoltage     = 5
	ImgLoadCurrent     = 6
	ImgLoadPower       = 7
	ImgPanelVoltage    = 8
	ImgPanelCurrent    = 9
	ImgPanelPower      = 10

	ImgMinBatteryVoltage     = 11
	ImgMaxBatteryVoltage     = 12
	ImgMaxChargingCurrent    = 13
	ImgMaxDischargingCurrent = 14
	ImgMaxChargingPower      = 15
	ImgMaxDischargingPower   = 16
	ImgChargingAmpHours      = 17
	ImgDischargingAmpHours   = 18
	ImgPowerGeneration       = 19
	ImgPowerConsumption      = 20

	ImgChargingState = 21
	ImgFaultsHi      = 22
	ImgFaultsLo      = 23
	ImgStreetLight   = 24 // bit15 on, bits0-6 brightness

	ImgOperatingDays      = 25
	ImgOverDischarges     = 26
	ImgFullCharges        = 27
	ImgTotalGenerationHi  = 28
	ImgTotalGenerationLo  = 29
	ImgTotalConsumptionHi = 30
	ImgTotalConsumptionLo = 31

	ImageWords = 32
)

// EncodeImage converts a snapshot into its register image.
// Values outside a register's range saturate.
func EncodeImage(s rover.Snapshot) []uint16 {
	ps, ds, hd, st := s.PowerStatus, s.DailyStats, s.HistoricalData, s.Status
	regs := make([]uint16, ImageWords)

	regs[ImgBatteryCapacity] = clampU16(ps.BatteryCapacity)
	regs[ImgBatteryVoltage] = scaled(ps.BatteryVoltage, 10)
	regs[ImgChargingCurrent] = scaled(ps.ChargingCurrent, 100)
	regs[ImgControllerTemp] = uint16(int16(ps.ControllerTemperature))
	regs[ImgBatteryTemp] = uint16(int16(ps.BatteryTemperature))
	regs[ImgLoadVoltage] = scaled(ps.LoadVoltage, 10)
	regs[ImgLoadCurrent] = scaled(ps.LoadCurrent, 100)
	regs[ImgLoadPower] = clampU16(ps.LoadPower)
	regs[ImgPanelVoltage] = scaled(ps.PanelVoltage, 10)
	regs[ImgPanelCurrent] = scaled(ps.PanelCurrent, 100)
	regs[ImgPanelPower] = clampU16(ps.PanelPower)

	regs[ImgMinBatteryVoltage] = scaled(ds.MinBatteryVoltage, 10)
	regs[ImgMaxBatteryVoltage] = scaled(ds.MaxBatteryVoltage, 10)
	regs[ImgMaxChargingCurrent] = scaled(ds.MaxChargingCurrent, 100)
	regs[ImgMaxDischargingCurrent] = scaled(ds.MaxDischargingCurrent, 100)
	regs[ImgMaxChargingPower] = clampU16(ds.MaxChargingPower)
	regs[ImgMaxDischargingPower] = clampU16(ds.MaxDischargingPower)
	regs[ImgChargingAmpHours] = clampU16(ds.ChargingAmpHours)
	regs[ImgDischargingAmpHours] = clampU16(ds.DischargingAmpHours)
	regs[ImgPowerGeneration] = clampU16(ds.PowerGeneration)
	regs[ImgPowerConsumption] = clampU16(ds.PowerConsumption)

	regs[ImgChargingState] = uint16(st.ChargingState)
	regs[ImgFaultsHi] = uint16(uint32(st.Faults) >> 16)
	regs[ImgFaultsLo] = uint16(st.Faults)
	light := clampU16(st.StreetLightBrightness) & 0x7F
	if st.StreetLightOn {
		light |= 0x8000
	}
	regs[ImgStreetLight] = light

	regs[ImgOperatingDays] = clampU16(hd.OperatingDays)
	regs[ImgOverDischarges] = clampU16(hd.OverDischarges)
	regs[ImgFullCharges] = clampU16(hd.FullCharges)
	regs[ImgTotalGenerationHi] = uint16(hd.PowerGeneration >> 16)
	regs[ImgTotalGenerationLo] = uint16(hd.PowerGeneration)
	regs[ImgTotalConsumptionHi] = uint16(hd.PowerConsumption >> 16)
	regs[ImgTotalConsumptionLo] = uint16(hd.PowerConsumption)

	return regs
}

func clampU16(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}

func scaled(v, scale float64) uint16 {
	return clampU16(int(math.Round(v * scale)))
}

// imageSink writes the register image of each snapshot.
// Registers are a live view: there is nothing to prune.
type imageSink struct {
	plan  ImagePlan
	cli   endpointClient
	close func() error
}

func newImageSink(plan ImagePlan, cli endpointClient, closeFn func() error) *imageSink {
	return &imageSink{plan: plan, cli: cli, close: closeFn}
}

func (s *imageSink) Init(context.Context) error { return nil }

func (s *imageSink) Append(_ context.Context, res poller.PollResult) error {
	return s.cli.WriteRegisters(
		areaHoldingRegisters,
		s.plan.UnitID,
		s.plan.Address,
		EncodeImage(res.Snapshot),
	)
}

func (s *imageSink) DeleteRecordsOlderThan(context.Context, int) error { return nil }

func (s *imageSink) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
