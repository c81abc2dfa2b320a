// internal/metrics/metrics.go
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tamzrod/rover-logger/internal/poller"
	"github.com/tamzrod/rover-logger/internal/rover"
	"github.com/tamzrod/rover-logger/internal/status"
)

const namespace = "rover"

// Metrics exports the latest snapshot and poll health on a private registry.
type Metrics struct {
	reg    *prometheus.Registry
	gauges map[string]prometheus.Gauge

	faults     *prometheus.GaugeVec
	polls      *prometheus.CounterVec
	pollErrors *prometheus.CounterVec
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		reg:    prometheus.NewRegistry(),
		gauges: map[string]prometheus.Gauge{},
	}

	// ---- power status ----
	m.addGauge("battery_soc_percent", "Battery state of charge (%)")
	m.addGauge("battery_voltage_volts", "Battery voltage (V)")
	m.addGauge("charging_current_amps", "Charging current (A)")
	m.addGauge("battery_temperature_celsius", "Battery temperature (°C)")
	m.addGauge("controller_temperature_celsius", "Controller temperature (°C)")
	m.addGauge("load_voltage_volts", "Load voltage (V)")
	m.addGauge("load_current_amps", "Load current (A)")
	m.addGauge("load_power_watts", "Load power (W)")
	m.addGauge("panel_voltage_volts", "Solar panel voltage (V)")
	m.addGauge("panel_current_amps", "Solar panel current (A)")
	m.addGauge("panel_power_watts", "Solar panel power (W)")

	// ---- daily stats (corrected) ----
	m.addGauge("daily_min_battery_voltage_volts", "Today's minimum battery voltage (V)")
	m.addGauge("daily_max_battery_voltage_volts", "Today's maximum battery voltage (V)")
	m.addGauge("daily_max_charging_current_amps", "Today's maximum charging current (A)")
	m.addGauge("daily_max_charging_power_watts", "Today's maximum charging power (W)")
	m.addGauge("daily_generation_watt_hours", "Energy generated today (Wh)")
	m.addGauge("daily_consumption_watt_hours", "Energy consumed today (Wh)")

	// ---- controller ----
	m.addGauge("charging_state", "Charging state (0 deactivated .. 6 current limiting)")
	m.addGauge("active_faults", "Number of active faults")
	m.addGauge("total_generation_watt_hours", "Lifetime energy generated (Wh)")

	// ---- poll health ----
	m.addGauge("health", "Poll health (0 unknown, 1 ok, 2 error)")
	m.addGauge("seconds_in_error", "Seconds polls have been failing")
	m.addGauge("daily_untrusted", "1 while daily stats are derived locally after midnight")
	m.addGauge("daily_carry_over_watt_hours", "Generation carried into today after a late device reset (Wh)")
	m.addGauge("last_success_timestamp_seconds", "Unix time of the last successful poll")

	m.polls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "polls_total",
		Help:      "Poll cycles by result",
	}, []string{"result"})
	m.faults = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "fault",
		Help:      "1 while the named controller fault is active",
	}, []string{"fault"})
	m.pollErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_errors_total",
		Help:      "Failed poll cycles by error class",
	}, []string{"class"})

	m.reg.MustRegister(m.faults, m.polls, m.pollErrors)
	for _, g := range m.gauges {
		m.reg.MustRegister(g)
	}
	return m
}

func (m *Metrics) addGauge(name, help string) {
	m.gauges[name] = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
}

func (m *Metrics) setGauge(name string, v float64) {
	if g, ok := m.gauges[name]; ok {
		g.Set(v)
	}
}

// Observe records one poll result and the health after it.
// Snapshot gauges keep their last good values while polls fail.
func (m *Metrics) Observe(res poller.PollResult, s status.Snapshot) {
	m.setGauge("health", float64(s.Health))
	m.setGauge("seconds_in_error", float64(s.SecondsInError))
	m.setGauge("daily_carry_over_watt_hours", float64(s.CarryOverWh))
	if s.DailyUntrusted {
		m.setGauge("daily_untrusted", 1)
	} else {
		m.setGauge("daily_untrusted", 0)
	}

	if res.Err != nil {
		m.polls.WithLabelValues("error").Inc()
		m.pollErrors.WithLabelValues(rover.Class(res.Err)).Inc()
		return
	}
	m.polls.WithLabelValues("ok").Inc()
	m.setGauge("last_success_timestamp_seconds", float64(res.At.Unix()))

	ps := res.Snapshot.PowerStatus
	m.setGauge("battery_soc_percent", float64(ps.BatteryCapacity))
	m.setGauge("battery_voltage_volts", ps.BatteryVoltage)
	m.setGauge("charging_current_amps", ps.ChargingCurrent)
	m.setGauge("battery_temperature_celsius", float64(ps.BatteryTemperature))
	m.setGauge("controller_temperature_celsius", float64(ps.ControllerTemperature))
	m.setGauge("load_voltage_volts", ps.LoadVoltage)
	m.setGauge("load_current_amps", ps.LoadCurrent)
	m.setGauge("load_power_watts", float64(ps.LoadPower))
	m.setGauge("panel_voltage_volts", ps.PanelVoltage)
	m.setGauge("panel_current_amps", ps.PanelCurrent)
	m.setGauge("panel_power_watts", float64(ps.PanelPower))

	ds := res.Snapshot.DailyStats
	m.setGauge("daily_min_battery_voltage_volts", ds.MinBatteryVoltage)
	m.setGauge("daily_max_battery_voltage_volts", ds.MaxBatteryVoltage)
	m.setGauge("daily_max_charging_current_amps", ds.MaxChargingCurrent)
	m.setGauge("daily_max_charging_power_watts", float64(ds.MaxChargingPower))
	m.setGauge("daily_generation_watt_hours", float64(ds.PowerGeneration))
	m.setGauge("daily_consumption_watt_hours", float64(ds.PowerConsumption))

	st := res.Snapshot.Status
	m.setGauge("charging_state", float64(st.ChargingState))
	m.setGauge("active_faults", float64(len(st.Faults.Active())))
	for f := rover.FaultBatteryOverDischarge; f <= rover.FaultChargeMOSShort; f++ {
		v := 0.0
		if st.Faults.Has(f) {
			v = 1
		}
		m.faults.WithLabelValues(f.String()).Set(v)
	}
	m.setGauge("total_generation_watt_hours", float64(res.Snapshot.HistoricalData.PowerGeneration))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, log zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("listen", addr).Msg("metrics exporter listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
