// internal/writer/modbus/client_test.go
package modbus

import (
	"bytes"
	"testing"
	"time"
)

func TestNewEndpointClient_RequiresEndpoint(t *testing.T) {
	if _, err := NewEndpointClient(Config{}); err == nil {
		t.Fatalf("expected endpoint error, got nil")
	}
}

func TestWriteRegisters_RejectsNonHoldingArea(t *testing.T) {
	c, err := NewEndpointClient(Config{Endpoint: "127.0.0.1:1", Timeout: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewEndpointClient() err=%v", err)
	}
	defer c.Close()

	if err := c.WriteRegisters(4, 1, 0, []uint16{1}); err == nil {
		t.Fatalf("expected area error, got nil")
	}
}

func TestPackRegisters_BigEndian(t *testing.T) {
	got := packRegisters([]uint16{0x0102, 0xA0B0})
	if !bytes.Equal(got, []byte{0x01, 0x02, 0xA0, 0xB0}) {
		t.Fatalf("unexpected payload % X", got)
	}
}
