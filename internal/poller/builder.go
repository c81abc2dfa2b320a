// internal/poller/builder.go
package poller

import (
	"fmt"

	"github.com/rs/zerolog"

	cfg "github.com/tamzrod/rover-logger/internal/config"
	"github.com/tamzrod/rover-logger/internal/daily"
	"github.com/tamzrod/rover-logger/internal/session"
)

// Build wires opener -> session -> (corrector) -> poller.
// The channel is opened lazily on the first poll and reopened by the
// session after a link failure. The returned closer releases it.
// Assumes config has already been validated and normalized.
func Build(c *cfg.Config, log zerolog.Logger) (*Poller, func() error, error) {
	var open session.Opener

	switch c.Device.Transport {
	case cfg.TransportSerial:
		open = session.SerialOpener(session.SerialConfig{
			Port:     c.Device.Port,
			BaudRate: c.Device.BaudRate,
			DataBits: c.Device.DataBits,
			StopBits: c.Device.StopBits,
			Parity:   c.Device.Parity,
			Timeout:  c.Device.Timeout(),
		})
	case cfg.TransportTCP:
		open = session.TCPOpener(session.TCPConfig{
			Endpoint: c.Device.Endpoint,
			Timeout:  c.Device.Timeout(),
		})
	default:
		return nil, nil, fmt.Errorf("poller: unknown transport %q", c.Device.Transport)
	}

	sess := session.New(open, *c.Device.Address, log)

	var src Source = sess
	if c.Poll.CorrectDaily == nil || *c.Poll.CorrectDaily {
		src = daily.NewCorrector(sess, nil, log)
	}

	p, err := New(Config{Interval: c.Poll.Interval()}, src, log)
	if err != nil {
		return nil, nil, err
	}

	return p, sess.Close, nil
}
