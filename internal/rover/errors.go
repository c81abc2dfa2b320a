// internal/rover/errors.go
package rover

import (
	"errors"
	"fmt"

	"github.com/goburrow/modbus"
)

// Error codes exposed through Code() for non-device failures.
// Device errors report the raw exception byte (1..255) instead.
const (
	CodeCodec    uint16 = 0x0100
	CodeProtocol uint16 = 0x0101
	CodeTimeout  uint16 = 0x0102
	CodeChannel  uint16 = 0x0103
)

// ExceptionCode is the vendor exception byte of a rejected request.
type ExceptionCode byte

const (
	ExceptionUnsupportedFunction ExceptionCode = modbus.ExceptionCodeIllegalFunction
	ExceptionBadAddress          ExceptionCode = modbus.ExceptionCodeIllegalDataAddress
	ExceptionLengthTooLarge      ExceptionCode = modbus.ExceptionCodeIllegalDataValue
	ExceptionReadWriteFailure    ExceptionCode = modbus.ExceptionCodeServerDeviceFailure
	ExceptionBadChecksum         ExceptionCode = 0x05
)

func (c ExceptionCode) String() string {
	switch c {
	case ExceptionUnsupportedFunction:
		return "function code not supported"
	case ExceptionBadAddress:
		return "PDU start address not correct or start address + data length"
	case ExceptionLengthTooLarge:
		return "data length in reading or writing register is too large"
	case ExceptionReadWriteFailure:
		return "client fails to read or write register"
	case ExceptionBadChecksum:
		return "data check code sent by server is not correct"
	default:
		return "unknown error"
	}
}

// CodecError is a malformed frame: wrong size or CRC mismatch.
type CodecError struct {
	Msg string
}

func (e *CodecError) Error() string { return "rover codec: " + e.Msg }
func (e *CodecError) Code() uint16  { return CodeCodec }

// ProtocolError is a well-framed response that does not answer the request.
type ProtocolError struct {
	Msg string
}

func (e *ProtocolError) Error() string { return "rover protocol: " + e.Msg }
func (e *ProtocolError) Code() uint16  { return CodeProtocol }

// DeviceError is an exception response: the device rejected the request.
type DeviceError struct {
	Exception ExceptionCode
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("rover device: exception 0x%02x (%s)", byte(e.Exception), e.Exception)
}

func (e *DeviceError) Code() uint16 { return uint16(e.Exception) }

// TimeoutError means no bytes arrived within the read deadline.
type TimeoutError struct {
	Want int
	Got  int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("rover timeout: read %d of %d bytes", e.Got, e.Want)
}

func (e *TimeoutError) Code() uint16  { return CodeTimeout }
func (e *TimeoutError) Timeout() bool { return true }

// ChannelError wraps an OS-level I/O failure of the byte channel.
type ChannelError struct {
	Op  string
	Err error
}

func (e *ChannelError) Error() string { return "rover channel: " + e.Op + ": " + e.Err.Error() }
func (e *ChannelError) Unwrap() error { return e.Err }
func (e *ChannelError) Code() uint16  { return CodeChannel }

// IsTimeout reports whether err is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	var t *TimeoutError
	return errors.As(err, &t)
}

// IsChannel reports whether err is (or wraps) a ChannelError.
func IsChannel(err error) bool {
	var c *ChannelError
	return errors.As(err, &c)
}

// IsResponse reports whether the device answered, even if not usefully:
// codec, protocol and device errors.
func IsResponse(err error) bool {
	var (
		c *CodecError
		p *ProtocolError
		d *DeviceError
	)
	return errors.As(err, &c) || errors.As(err, &p) || errors.As(err, &d)
}

// Class names the error class of err for logs and metrics:
// codec, protocol, device, timeout, channel or other.
func Class(err error) string {
	var (
		c  *CodecError
		p  *ProtocolError
		d  *DeviceError
		t  *TimeoutError
		ch *ChannelError
	)
	switch {
	case errors.As(err, &d):
		return "device"
	case errors.As(err, &p):
		return "protocol"
	case errors.As(err, &c):
		return "codec"
	case errors.As(err, &t):
		return "timeout"
	case errors.As(err, &ch):
		return "channel"
	}
	return "other"
}
