// internal/session/serial.go
package session

import (
	"errors"
	"time"

	"github.com/goburrow/serial"

	"github.com/tamzrod/rover-logger/internal/rover"
)

// SerialConfig is the line setup applied once per open.
type SerialConfig struct {
	Port     string
	BaudRate int
	DataBits int
	StopBits int
	Parity   string // N, E or O
	Timeout  time.Duration
}

// SerialOpener returns an Opener for a local serial line.
// ONE attempt per call.
func SerialOpener(cfg SerialConfig) Opener {
	return func() (rover.Channel, error) {
		if cfg.Port == "" {
			return nil, errors.New("session serial: port required")
		}
		p, err := serial.Open(&serial.Config{
			Address:  cfg.Port,
			BaudRate: cfg.BaudRate,
			DataBits: cfg.DataBits,
			StopBits: cfg.StopBits,
			Parity:   cfg.Parity,
			Timeout:  cfg.Timeout,
		})
		if err != nil {
			return nil, &rover.ChannelError{Op: "open " + cfg.Port, Err: err}
		}
		return &portChannel{port: p}, nil
	}
}

// portChannel adapts a serial.Port to rover.Channel.
// Each Read waits at most the port timeout.
type portChannel struct {
	port serial.Port
}

func (c *portChannel) Write(p []byte) error {
	for len(p) > 0 {
		n, err := c.port.Write(p)
		if err != nil {
			return &rover.ChannelError{Op: "write", Err: err}
		}
		p = p[n:]
	}
	return nil
}

func (c *portChannel) ReadExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	got := 0
	for got < n {
		k, err := c.port.Read(buf[got:])
		got += k
		if err != nil {
			if errors.Is(err, serial.ErrTimeout) {
				return buf[:got], &rover.TimeoutError{Want: n, Got: got}
			}
			return buf[:got], &rover.ChannelError{Op: "read", Err: err}
		}
		if k == 0 {
			return buf[:got], &rover.TimeoutError{Want: n, Got: got}
		}
	}
	return buf, nil
}

func (c *portChannel) Close() error {
	return c.port.Close()
}
