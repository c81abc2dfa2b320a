// internal/session/tcp.go
package session

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/tamzrod/rover-logger/internal/rover"
)

// TCPConfig describes a transparent serial server (RS485-to-Ethernet bridge).
type TCPConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// TCPOpener returns an Opener dialing a serial bridge. ONE attempt per call.
func TCPOpener(cfg TCPConfig) Opener {
	return func() (rover.Channel, error) {
		if cfg.Endpoint == "" {
			return nil, errors.New("session tcp: endpoint required")
		}
		conn, err := net.DialTimeout("tcp", cfg.Endpoint, cfg.Timeout)
		if err != nil {
			return nil, &rover.ChannelError{Op: "dial " + cfg.Endpoint, Err: err}
		}
		return &connChannel{conn: conn, timeout: cfg.Timeout}, nil
	}
}

type connChannel struct {
	conn    net.Conn
	timeout time.Duration
}

func (c *connChannel) Write(p []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	if _, err := c.conn.Write(p); err != nil {
		return &rover.ChannelError{Op: "write", Err: err}
	}
	return nil
}

func (c *connChannel) ReadExact(n int) ([]byte, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(c.timeout))

	buf := make([]byte, n)
	got, err := io.ReadFull(c.conn, buf)
	if err == nil {
		return buf, nil
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return buf[:got], &rover.TimeoutError{Want: n, Got: got}
	}
	return buf[:got], &rover.ChannelError{Op: "read", Err: err}
}

func (c *connChannel) Close() error {
	return c.conn.Close()
}
