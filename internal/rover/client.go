// internal/rover/client.go
package rover

import (
	"fmt"
)

// Channel is the duplex byte stream to the controller.
// ReadExact blocks up to the configured per-read deadline and returns a
// *TimeoutError when fewer than n bytes arrived in time.
type Channel interface {
	Write(p []byte) error
	ReadExact(n int) ([]byte, error)
	Close() error
}

// Client performs one request/response exchange per register group.
// It never retries; callers own the retry policy.
type Client struct {
	ch   Channel
	addr byte
}

// NewClient binds a client to an open channel and a device address.
// Address 0 is broadcast and is rejected.
func NewClient(ch Channel, addr byte) (*Client, error) {
	if ch == nil {
		return nil, fmt.Errorf("rover client: channel required")
	}
	if addr == 0 || addr > maxDeviceID {
		return nil, fmt.Errorf("rover client: device address %d out of range 1..%d", addr, maxDeviceID)
	}
	return &Client{ch: ch, addr: addr}, nil
}

// ReadRegister reads byteCount bytes starting at register start.
func (c *Client) ReadRegister(start uint16, byteCount int) ([]byte, error) {
	if byteCount <= 0 || byteCount%2 != 0 {
		return nil, &ProtocolError{Msg: fmt.Sprintf("byte count %d must be even and positive", byteCount)}
	}
	words := byteCount / 2
	if words > maxWords {
		return nil, &ProtocolError{Msg: fmt.Sprintf("word count %d out of range 1..%d", words, maxWords)}
	}
	if start > maxAddress {
		return nil, &ProtocolError{Msg: fmt.Sprintf("start address 0x%04x out of range", start)}
	}

	if err := c.ch.Write(BuildReadRequest(c.addr, start, uint16(words))); err != nil {
		return nil, err
	}

	// Addr(1) FC(1) Len|Exception(1)
	hdr, err := c.read(3)
	if err != nil {
		return nil, err
	}
	if hdr[0] != c.addr {
		return nil, &ProtocolError{Msg: fmt.Sprintf("device address mismatch: got=%d want=%d", hdr[0], c.addr)}
	}

	if hdr[1] == FuncReadHoldingRegistersException {
		crc, err := c.read(2)
		if err != nil {
			return nil, err
		}
		if !VerifyCRC(hdr, crc) {
			return nil, &CodecError{Msg: "exception response crc mismatch"}
		}
		return nil, &DeviceError{Exception: ExceptionCode(hdr[2])}
	}

	if hdr[1] != FuncReadHoldingRegisters {
		return nil, &ProtocolError{Msg: fmt.Sprintf("function mismatch: got=0x%02x want=0x%02x", hdr[1], FuncReadHoldingRegisters)}
	}

	n := int(hdr[2])
	if n < 1 || n > maxPayload {
		return nil, &ProtocolError{Msg: fmt.Sprintf("declared length %d out of range 1..%d", n, maxPayload)}
	}
	if n != byteCount {
		return nil, &ProtocolError{Msg: fmt.Sprintf("declared length mismatch: got=%d want=%d", n, byteCount)}
	}

	payload, err := c.read(n)
	if err != nil {
		return nil, err
	}
	crc, err := c.read(2)
	if err != nil {
		return nil, err
	}

	frame := make([]byte, 0, 3+n)
	frame = append(frame, hdr...)
	frame = append(frame, payload...)
	if !VerifyCRC(frame, crc) {
		return nil, &CodecError{Msg: "response crc mismatch"}
	}

	return payload, nil
}

func (c *Client) read(n int) ([]byte, error) {
	b, err := c.ch.ReadExact(n)
	if err != nil {
		return nil, err
	}
	if len(b) < n {
		return nil, &TimeoutError{Want: n, Got: len(b)}
	}
	if len(b) > n {
		return nil, &CodecError{Msg: fmt.Sprintf("channel returned %d bytes, want %d", len(b), n)}
	}
	return b, nil
}

func (c *Client) readBlock(r Register) ([]byte, error) {
	b, err := c.ReadRegister(r.Start, r.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Name, err)
	}
	return b, nil
}

// ---- typed accessors ----

// SystemInfo issues the four static-info reads.
func (c *Client) SystemInfo() (SystemInfo, error) {
	var info SystemInfo

	spec, err := c.readBlock(RegSystemSpec)
	if err != nil {
		return info, err
	}
	model, err := c.readBlock(RegSystemModel)
	if err != nil {
		return info, err
	}
	versions, err := c.readBlock(RegSystemVersions)
	if err != nil {
		return info, err
	}
	serial, err := c.readBlock(RegSystemSerial)
	if err != nil {
		return info, err
	}

	return decodeSystemInfo(spec, model, versions, serial), nil
}

func (c *Client) PowerStatus() (PowerStatus, error) {
	b, err := c.readBlock(RegPowerStatus)
	if err != nil {
		return PowerStatus{}, err
	}
	return decodePowerStatus(b), nil
}

func (c *Client) DailyStats() (DailyStats, error) {
	b, err := c.readBlock(RegDailyStats)
	if err != nil {
		return DailyStats{}, err
	}
	return decodeDailyStats(b), nil
}

func (c *Client) HistoricalData() (HistoricalData, error) {
	b, err := c.readBlock(RegHistoricalData)
	if err != nil {
		return HistoricalData{}, err
	}
	return decodeHistoricalData(b), nil
}

func (c *Client) Status() (ControllerStatus, error) {
	b, err := c.readBlock(RegStatus)
	if err != nil {
		return ControllerStatus{}, err
	}
	return decodeStatus(b), nil
}

// AllData reads every block into one Snapshot.
// A non-nil cached SystemInfo is reused and its registers are not read.
func (c *Client) AllData(cached *SystemInfo) (Snapshot, error) {
	var snap Snapshot

	if cached != nil {
		snap.SystemInfo = *cached
	} else {
		info, err := c.SystemInfo()
		if err != nil {
			return Snapshot{}, err
		}
		snap.SystemInfo = info
	}

	var err error
	if snap.PowerStatus, err = c.PowerStatus(); err != nil {
		return Snapshot{}, err
	}
	if snap.DailyStats, err = c.DailyStats(); err != nil {
		return Snapshot{}, err
	}
	if snap.HistoricalData, err = c.HistoricalData(); err != nil {
		return Snapshot{}, err
	}
	if snap.Status, err = c.Status(); err != nil {
		return Snapshot{}, err
	}

	return snap, nil
}
