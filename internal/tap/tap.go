// Package tap reads TAP v1 tape capture containers.
//
// The pipeline core is agnostic to the container: it consumes an ordered
// sequence of pulse events. This package is the adapter for the common
// "C64-TAPE-RAW" capture format.
package tap

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"untape/internal/pulse"
	"untape/internal/tapfmt"
)

var (
	ErrNotTAP     = errors.New("tap: missing C64-TAPE-RAW signature")
	ErrBadVersion = errors.New("tap: unsupported version")
	ErrTruncated  = errors.New("tap: truncated pulse stream")
)

var signature = []byte("C64-TAPE-RAW")

// Container header layout:
//
//	+0x00: signature  [12]byte "C64-TAPE-RAW"
//	+0x0c: version    byte     (1)
//	+0x0d: platform   byte
//	+0x0e: video      byte
//	+0x0f: reserved   byte
//	+0x10: data size  uint32 LE
const headerSize = 20

// ReadFile reads a TAP v1 file and returns its pulse events.
func ReadFile(path string) ([]pulse.Event, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tap: read: %w", err)
	}
	return Parse(b)
}

// Parse decodes a TAP v1 container. Each nonzero stream byte is one pulse
// duration in TAP units; a zero byte escapes a 24-bit little-endian duration
// for overlong pulses (inter-block gaps). TAP carries no polarity, so every
// event reads as a HIGH half-wave.
func Parse(b []byte) ([]pulse.Event, error) {
	if len(b) < headerSize || !bytes.Equal(b[:len(signature)], signature) {
		return nil, ErrNotTAP
	}
	if ver := b[12]; ver != 1 {
		return nil, fmt.Errorf("%w: %d (want 1)", ErrBadVersion, ver)
	}

	s := tapfmt.NewStreamAt(b, 16)
	size, err := s.ReadUint16()
	if err != nil {
		return nil, ErrTruncated
	}
	sizeHi, err := s.ReadUint16()
	if err != nil {
		return nil, ErrTruncated
	}
	dataLen := int(size) | int(sizeHi)<<16

	end := headerSize + dataLen
	if end > len(b) {
		end = len(b)
	}
	s = tapfmt.NewStreamAt(b[:end], headerSize)

	var events []pulse.Event
	for s.Remaining() > 0 {
		x, err := s.ReadByte()
		if err != nil {
			break
		}
		if x != 0 {
			events = append(events, pulse.Event{Duration: int(x), Polarity: pulse.High})
			continue
		}
		v, err := s.ReadUint24()
		if err != nil {
			// A dangling escape at the end of the stream carries no pulse.
			break
		}
		events = append(events, pulse.Event{Duration: int(v), Polarity: pulse.High})
	}
	return events, nil
}
