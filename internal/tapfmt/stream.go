// Decoded byte buffer reader.
// Implements the little-endian primitives used by the program image format.
package tapfmt

import (
	"encoding/binary"
	"errors"
)

var (
	ErrStreamEOF = errors.New("stream: unexpected end of data")
)

// Stream reads a decoded byte buffer using the target platform's conventions.
type Stream struct {
	data []byte
	pos  int
	end  int
}

// NewStream creates a stream over the given data.
func NewStream(data []byte) *Stream {
	return &Stream{data: data, pos: 0, end: len(data)}
}

// NewStreamAt creates a stream starting at offset within data.
func NewStreamAt(data []byte, offset int) *Stream {
	if offset > len(data) {
		offset = len(data)
	}
	return &Stream{data: data, pos: offset, end: len(data)}
}

// Position returns the current read position.
func (s *Stream) Position() int { return s.pos }

// SetPosition sets the read position.
func (s *Stream) SetPosition(pos int) {
	if pos > s.end {
		pos = s.end
	}
	s.pos = pos
}

// Remaining returns bytes left to read.
func (s *Stream) Remaining() int { return s.end - s.pos }

// ReadByte reads a single byte.
func (s *Stream) ReadByte() (byte, error) {
	if s.pos >= s.end {
		return 0, ErrStreamEOF
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil
}

// ReadBytes reads n bytes into a new slice.
func (s *Stream) ReadBytes(n int) ([]byte, error) {
	if s.pos+n > s.end {
		return nil, ErrStreamEOF
	}
	out := make([]byte, n)
	copy(out, s.data[s.pos:s.pos+n])
	s.pos += n
	return out, nil
}

// ReadUint16 reads a little-endian uint16.
func (s *Stream) ReadUint16() (uint16, error) {
	if s.pos+2 > s.end {
		return 0, ErrStreamEOF
	}
	v := binary.LittleEndian.Uint16(s.data[s.pos:])
	s.pos += 2
	return v, nil
}

// ReadUint24 reads a little-endian 24-bit value.
func (s *Stream) ReadUint24() (uint32, error) {
	if s.pos+3 > s.end {
		return 0, ErrStreamEOF
	}
	v := uint32(s.data[s.pos]) | uint32(s.data[s.pos+1])<<8 | uint32(s.data[s.pos+2])<<16
	s.pos += 3
	return v, nil
}

// ScanTerminator returns the offset of the next occurrence of term at or
// after the current position, searching at most window bytes. Returns -1 if
// no terminator is found inside the window. The position is not advanced.
func (s *Stream) ScanTerminator(term byte, window int) int {
	end := s.pos + window
	if end > s.end {
		end = s.end
	}
	for i := s.pos; i < end; i++ {
		if s.data[i] == term {
			return i
		}
	}
	return -1
}

// Skip advances the position by n bytes.
func (s *Stream) Skip(n int) error {
	if s.pos+n > s.end {
		return ErrStreamEOF
	}
	s.pos += n
	return nil
}
