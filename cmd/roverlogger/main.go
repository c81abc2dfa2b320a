// cmd/roverlogger/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/tamzrod/rover-logger/internal/config"
	"github.com/tamzrod/rover-logger/internal/logging"
	"github.com/tamzrod/rover-logger/internal/metrics"
	"github.com/tamzrod/rover-logger/internal/poller"
	"github.com/tamzrod/rover-logger/internal/rover"
	"github.com/tamzrod/rover-logger/internal/status"
	"github.com/tamzrod/rover-logger/internal/writer"
)

func main() {
	cfgPath := flag.String("config", "rover.yaml", "path to the YAML config file")
	once := flag.Bool("once", false, "poll once, print the snapshot as JSON and exit")
	flag.Parse()

	boot, _ := logging.New(config.LogConfig{}, os.Stderr)

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		boot.Fatal().Err(err).Msg("config load failed")
	}
	if err := config.Validate(cfg); err != nil {
		boot.Fatal().Err(err).Msg("config validation failed")
	}
	config.Normalize(cfg)

	log, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		boot.Fatal().Err(err).Msg("logger setup failed")
	}

	// --------------------
	// Device pipeline
	// --------------------

	p, closeDevice, err := poller.Build(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("poller build failed")
	}

	if *once {
		os.Exit(pollOnce(p, closeDevice, log))
	}
	defer closeDevice()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Sinks + status + metrics
	// --------------------

	sinks, statusWriter, err := writer.Build(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("sink build failed")
	}
	if err := sinks.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("sink init failed")
	}
	defer sinks.Close()

	tracker := status.NewTracker()

	// Full block write on start (identity re-assert) if enabled.
	if statusWriter != nil {
		if err := statusWriter.WriteStatus(tracker.Snapshot()); err != nil {
			log.Warn().Err(err).Msg("status write failed on start")
		}
	}

	var exporter *metrics.Metrics
	if cfg.Metrics.Listen != "" {
		exporter = metrics.New()
		go func() {
			if err := exporter.Serve(ctx, cfg.Metrics.Listen, log); err != nil {
				log.Error().Err(err).Msg("metrics exporter stopped")
			}
		}()
	}

	handle := func(res poller.PollResult) {
		if res.Err != nil {
			log.Warn().Err(res.Err).Str("class", rover.Class(res.Err)).Msg("poll failed")
		} else {
			log.Debug().
				Float64("battery_v", res.Snapshot.PowerStatus.BatteryVoltage).
				Int("panel_w", res.Snapshot.PowerStatus.PanelPower).
				Int("generation_wh", res.Snapshot.DailyStats.PowerGeneration).
				Msg("poll ok")
		}

		// --- status update (device-level truth) ---
		tracker.Observe(res.At, res.Err)
		if res.Daily != nil {
			tracker.SetDaily(res.Daily.Untrusted, res.Daily.CarryOverWh)
		}
		snap := tracker.Snapshot()

		if statusWriter != nil {
			if err := statusWriter.WriteStatus(snap); err != nil {
				log.Warn().Err(err).Msg("status write failed")
			}
		}
		if exporter != nil {
			exporter.Observe(res, snap)
		}

		// --- data delivery ---
		if err := sinks.Append(ctx, res); err != nil {
			log.Error().Err(err).Msg("sink append failed")
		}
		if err := sinks.Prune(ctx, res.At); err != nil {
			log.Error().Err(err).Msg("sink prune failed")
		}
	}

	log.Info().
		Str("transport", cfg.Device.Transport).
		Uint8("address", *cfg.Device.Address).
		Dur("interval", cfg.Poll.Interval()).
		Int("sinks", sinks.Len()).
		Msg("rover logger started")

	p.Run(ctx, handle)

	log.Info().Msg("rover logger stopped")
}

// pollOnce runs a single poll, prints it and returns the exit code.
func pollOnce(p *poller.Poller, closeDevice func() error, log zerolog.Logger) int {
	defer closeDevice()

	res := p.PollOnce()
	if res.Err != nil {
		log.Error().Err(res.Err).Str("class", rover.Class(res.Err)).Msg("poll failed")
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(writer.NewRecord(res)); err != nil {
		log.Error().Err(err).Msg("encode failed")
		return 1
	}
	return 0
}
