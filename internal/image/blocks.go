package image

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// KERNAL tape blocks: each block is a 9-byte countdown marker, a 192-byte
// payload, and an XOR checksum byte. Every block is written twice; the first
// copy counts down $89..$81, the repeat copy $09..$01.
var (
	countdownFirst  = []byte{0x89, 0x88, 0x87, 0x86, 0x85, 0x84, 0x83, 0x82, 0x81}
	countdownRepeat = []byte{0x09, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}
)

const (
	countdownLen     = 9
	blockPayloadSize = 192
)

var ErrNoHeader = errors.New("image: no plausible header block")

// Block is one KERNAL tape block found in the decoded buffer.
type Block struct {
	Offset   int    `json:"offset"` // payload start within the decoded buffer
	Payload  []byte `json:"-"`
	Checksum byte   `json:"checksum"`
	Repeat   bool   `json:"repeat"` // true for the $09..$01 duplicate copy
}

// ChecksumOK reports whether the XOR checksum matches the payload. Blocks
// with bad checksums are kept (the structural scan is the real validator);
// the flag is for diagnostics.
func (b *Block) ChecksumOK() bool {
	var x byte
	for _, v := range b.Payload {
		x ^= v
	}
	return x == b.Checksum
}

// ScanBlocks finds all countdown-marked blocks in the decoded buffer.
func ScanBlocks(buf []byte) []Block {
	var blocks []Block
	i := 0
	for i+countdownLen+blockPayloadSize+1 <= len(buf) {
		var repeat bool
		switch {
		case bytes.Equal(buf[i:i+countdownLen], countdownFirst):
			repeat = false
		case bytes.Equal(buf[i:i+countdownLen], countdownRepeat):
			repeat = true
		default:
			i++
			continue
		}
		off := i + countdownLen
		payload := make([]byte, blockPayloadSize)
		copy(payload, buf[off:off+blockPayloadSize])
		blocks = append(blocks, Block{
			Offset:   off,
			Payload:  payload,
			Checksum: buf[off+blockPayloadSize],
			Repeat:   repeat,
		})
		i = off + blockPayloadSize + 1
	}
	return blocks
}

// Header is a parsed KERNAL header block payload.
//
//	+0x00: file type
//	+0x01: start address uint16 LE
//	+0x03: end address uint16 LE
//	+0x05: file name, 16 bytes padded with $20
type Header struct {
	FileType byte   `json:"file_type"`
	Start    uint16 `json:"start"`
	End      uint16 `json:"end"`
	RawName  []byte `json:"-"`
	Name     string `json:"name"`
}

// Length returns the declared payload length.
func (h *Header) Length() int { return int(h.End) - int(h.Start) }

// ParseHeader reads header fields from a block payload.
func ParseHeader(payload []byte) (*Header, error) {
	if len(payload) < 21 {
		return nil, fmt.Errorf("image: header payload too short (%d bytes)", len(payload))
	}
	raw := make([]byte, 16)
	copy(raw, payload[5:21])
	return &Header{
		FileType: payload[0],
		Start:    binary.LittleEndian.Uint16(payload[1:]),
		End:      binary.LittleEndian.Uint16(payload[3:]),
		RawName:  raw,
		Name:     decodeName(raw),
	}, nil
}

// decodeName strips trailing pad bytes and keeps the printable band;
// anything else becomes '.'.
func decodeName(raw []byte) string {
	end := len(raw)
	for end > 0 && raw[end-1] == 0x20 {
		end--
	}
	out := make([]byte, end)
	for i, b := range raw[:end] {
		if b >= 0x20 && b <= 0x7E {
			out[i] = b
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}

// scoreHeader rates how plausible a payload is as a real header block.
// Returns a negative score for implausible payloads.
func scoreHeader(h *Header) int {
	length := h.Length()
	if length < 512 || length > 32768 {
		return -1
	}
	if h.Start < 0x0200 || h.Start > 0x8000 {
		return -1
	}

	score := 0
	if h.Start >= 0x0F00 && h.Start <= 0x2000 {
		score += 20
	}
	nonspace := 0
	for _, c := range h.RawName {
		if c != 0x20 {
			nonspace++
		}
		if (c >= 0x20 && c <= 0x5A) || (c >= 0x61 && c <= 0x7A) || c == 0x2D || c == 0x2E || c == 0x5F {
			score++
		}
	}
	if nonspace == 0 {
		return -1
	}
	score += min(40, length/512)
	return score
}

// FindHeader picks the best-scoring header block. Blocks from the repeat
// copy are considered only when no first-copy block scores.
func FindHeader(blocks []Block) (int, *Header, error) {
	bestIdx, bestScore := -1, -1
	var bestHdr *Header
	for _, wantRepeat := range []bool{false, true} {
		for i, b := range blocks {
			if b.Repeat != wantRepeat {
				continue
			}
			h, err := ParseHeader(b.Payload)
			if err != nil {
				continue
			}
			if s := scoreHeader(h); s > bestScore {
				bestIdx, bestScore, bestHdr = i, s, h
			}
		}
		if bestIdx >= 0 {
			break
		}
	}
	if bestIdx < 0 {
		return 0, nil, ErrNoHeader
	}
	return bestIdx, bestHdr, nil
}

// AssembleProgram concatenates the data blocks following the header block
// (same copy stream) into a program image buffer: load address, then payload
// truncated to the header's declared length. The result feeds Locate, which
// remains the structural authority.
func AssembleProgram(blocks []Block, hdrIdx int, hdr *Header) []byte {
	repeat := blocks[hdrIdx].Repeat
	var payload []byte
	for _, b := range blocks[hdrIdx+1:] {
		if b.Repeat != repeat {
			continue
		}
		payload = append(payload, b.Payload...)
	}
	if length := hdr.Length(); len(payload) > length {
		payload = payload[:length]
	}

	out := make([]byte, 0, 2+len(payload))
	out = binary.LittleEndian.AppendUint16(out, hdr.Start)
	return append(out, payload...)
}
