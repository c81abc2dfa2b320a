// internal/logging/logging.go
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/rover-logger/internal/config"
)

// New builds the process logger. The level is set on the returned
// logger only; zerolog's global level is left alone.
func New(cfg config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), err
		}
		level = l
	}

	out := w
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
