// internal/session/session.go
package session

import (
	"github.com/rs/zerolog"

	"github.com/tamzrod/rover-logger/internal/rover"
)

// Opener opens and configures a fresh channel. ONE attempt per call.
type Opener func() (rover.Channel, error)

// maxDrain bounds a drain so a chattering line cannot stall the session.
const maxDrain = 512

// Session owns the single channel to the controller.
//
// A device, protocol or codec error means the device answered: the
// channel is drained and kept. A timeout or channel error means the line
// may be out of sync: the channel is closed and reopened on the next call.
// Nothing is retried here.
type Session struct {
	open Opener
	addr byte
	log  zerolog.Logger

	ch rover.Channel
}

// New creates a session. No channel is opened until the first call.
func New(open Opener, addr byte, log zerolog.Logger) *Session {
	return &Session{
		open: open,
		addr: addr,
		log:  log.With().Str("component", "session").Logger(),
	}
}

// SystemInfo reads the static device info.
func (s *Session) SystemInfo() (rover.SystemInfo, error) {
	var info rover.SystemInfo
	err := s.execute(func(c *rover.Client) error {
		var err error
		info, err = c.SystemInfo()
		return err
	})
	return info, err
}

// AllData reads a full snapshot, reusing cached system info when given.
func (s *Session) AllData(cached *rover.SystemInfo) (rover.Snapshot, error) {
	var snap rover.Snapshot
	err := s.execute(func(c *rover.Client) error {
		var err error
		snap, err = c.AllData(cached)
		return err
	})
	return snap, err
}

// Close releases the channel if open.
func (s *Session) Close() error {
	if s.ch == nil {
		return nil
	}
	err := s.ch.Close()
	s.ch = nil
	return err
}

func (s *Session) ensureOpen() error {
	if s.ch != nil {
		return nil
	}

	ch, err := s.open()
	if err != nil {
		return err
	}
	s.ch = ch
	s.log.Info().Msg("channel opened")

	// leftovers from an aborted exchange on a previous handle
	return s.drain()
}

// execute runs op against a fresh client bound to the current channel.
func (s *Session) execute(op func(*rover.Client) error) error {
	if err := s.ensureOpen(); err != nil {
		s.log.Error().Err(err).Msg("channel open failed")
		return err
	}

	c, err := rover.NewClient(s.ch, s.addr)
	if err != nil {
		return err
	}

	err = op(c)
	switch {
	case err == nil:
		return nil

	case rover.IsTimeout(err), rover.IsChannel(err):
		s.log.Warn().Err(err).Msg("link failure, closing channel")
		if cerr := s.Close(); cerr != nil {
			s.log.Debug().Err(cerr).Msg("channel close failed")
		}

	case rover.IsResponse(err):
		s.log.Warn().Err(err).Msg("device answered with error, draining channel")
		if derr := s.drain(); derr != nil {
			s.log.Debug().Err(derr).Msg("drain failed")
		}

	default:
		s.log.Error().Err(err).Msg("request failed")
	}

	return err
}

// drain discards bytes until the line stays quiet for one read deadline.
// A channel failure while draining closes the channel and is returned.
func (s *Session) drain() error {
	n := 0
	var err error
	for n < maxDrain {
		var b []byte
		b, err = s.ch.ReadExact(1)
		if err != nil || len(b) == 0 {
			break
		}
		n++
	}
	if n > 0 {
		s.log.Debug().Int("bytes", n).Msg("drained stray bytes")
	}

	if rover.IsChannel(err) {
		s.log.Warn().Err(err).Msg("channel failed while draining, closing")
		if cerr := s.Close(); cerr != nil {
			s.log.Debug().Err(cerr).Msg("channel close failed")
		}
		return err
	}
	return nil
}
