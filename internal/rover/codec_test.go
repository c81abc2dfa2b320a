// internal/rover/codec_test.go
package rover

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestCRC16_Vectors(t *testing.T) {
	cases := []struct {
		in   []byte
		want uint16
	}{
		{in: nil, want: 0xFFFF},
		{in: []byte{0x01, 0x03, 0x00, 0x0A, 0x00, 0x01}, want: 0x08A4},
		{in: []byte{0x01, 0x03, 0x02, 0x18, 0x14}, want: 0x4BB2},
		{in: []byte{0x01, 0x83, 0x02}, want: 0xF1C0},
	}

	for _, c := range cases {
		if got := CRC16(c.in); got != c.want {
			t.Fatalf("CRC16(% X): expected 0x%04X, got 0x%04X", c.in, c.want, got)
		}
	}
}

func TestBuildReadRequest_Vector(t *testing.T) {
	got := BuildReadRequest(1, 0x0A, 1)
	want := []byte{0x01, 0x03, 0x00, 0x0A, 0x00, 0x01, 0xA4, 0x08}

	if !bytes.Equal(got, want) {
		t.Fatalf("expected % X, got % X", want, got)
	}
}

func TestBuildReadRequest_CRCCoversHeader(t *testing.T) {
	for _, start := range []uint16{0, 0x0A, 0x100, 0x10B, 0x120, 0x1000} {
		for _, words := range []uint16{1, 2, 10, 11, 0x7D} {
			f := BuildReadRequest(1, start, words)
			if len(f) != RequestSize {
				t.Fatalf("start=0x%X words=%d: expected %d bytes, got %d", start, words, RequestSize, len(f))
			}
			if got := binary.LittleEndian.Uint16(f[6:]); got != CRC16(f[:6]) {
				t.Fatalf("start=0x%X words=%d: trailing crc 0x%04X does not match header", start, words, got)
			}
			if binary.BigEndian.Uint16(f[2:4]) != start || binary.BigEndian.Uint16(f[4:6]) != words {
				t.Fatalf("start=0x%X words=%d: geometry not big-endian in % X", start, words, f)
			}
		}
	}
}

func TestVerifyCRC(t *testing.T) {
	hdr := []byte{0x01, 0x03, 0x02, 0x18, 0x14}

	if !VerifyCRC(hdr, []byte{0xB2, 0x4B}) {
		t.Fatalf("expected crc B2 4B to verify")
	}
	if VerifyCRC(hdr, []byte{0x4B, 0xB2}) {
		t.Fatalf("expected byte-swapped crc to fail")
	}
	if VerifyCRC(hdr, []byte{0xB2}) {
		t.Fatalf("expected short crc to fail")
	}
}
