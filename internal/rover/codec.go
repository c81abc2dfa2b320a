// internal/rover/codec.go
package rover

import (
	"encoding/binary"

	"github.com/goburrow/modbus"
	"github.com/sigurn/crc16"
)

// FuncReadHoldingRegisters is the only function the controller is asked for.
const FuncReadHoldingRegisters byte = modbus.FuncCodeReadHoldingRegisters

// FuncReadHoldingRegistersException is the echoed function on a rejected read.
const FuncReadHoldingRegistersException = FuncReadHoldingRegisters | 0x80

// RequestSize is the fixed size of a read request frame.
const RequestSize = 8

var crcTable = crc16.MakeTable(crc16.CRC16_MODBUS)

// CRC16 computes the reflected CRC16 (poly 0xA001, seed 0xFFFF).
func CRC16(b []byte) uint16 {
	return crc16.Checksum(b, crcTable)
}

// BuildReadRequest builds a "read holding registers" frame.
//
// Layout:
//
//	Addr(1) FC(1) Start(2, BE) Words(2, BE) CRC(2, LE)
//
// CRC covers the first 6 bytes.
func BuildReadRequest(addr byte, start, words uint16) []byte {
	frame := make([]byte, RequestSize)
	frame[0] = addr
	frame[1] = FuncReadHoldingRegisters
	binary.BigEndian.PutUint16(frame[2:4], start)
	binary.BigEndian.PutUint16(frame[4:6], words)
	binary.LittleEndian.PutUint16(frame[6:8], CRC16(frame[:6]))
	return frame
}

// VerifyCRC checks the two trailing bytes (low byte first) against frame.
func VerifyCRC(frame, crc []byte) bool {
	if len(crc) != 2 {
		return false
	}
	return binary.LittleEndian.Uint16(crc) == CRC16(frame)
}
