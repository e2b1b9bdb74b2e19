// Package image locates and represents recovered program images.
//
// A program image is a 2-byte load address followed by a linked list of
// tokenized lines: each line is a 2-byte next-line pointer, a 2-byte line
// number, the body bytes, and a 0x00 terminator. The list ends with a zero
// next-pointer.
package image

import "encoding/binary"

// Line is one program line. Offset is the line's byte offset within the
// decoded buffer it was recovered from.
type Line struct {
	NextPointer uint16 `json:"next_pointer"`
	Number      int    `json:"number"`
	Body        []byte `json:"-"`
	Offset      int    `json:"offset"`
}

// Image is a validated program image. It is created once by Locate and is
// read-only downstream; only charset tagging of literal runs happens later,
// and that never alters pointers, line numbers, or token identity.
type Image struct {
	LoadAddress uint16 `json:"load_address"`
	Lines       []Line `json:"lines"`
	Offset      int    `json:"offset"` // candidate start within the decoded buffer
	Span        int    `json:"span"`   // bytes covered, including terminator
}

// Bytes re-emits the binary program image: load address, then each line
// (pointer, number, body, 0x00), then the zero end pointer. The result is
// loadable by a target-platform loader or emulator.
func (img *Image) Bytes() []byte {
	size := 2
	for _, ln := range img.Lines {
		size += 4 + len(ln.Body) + 1
	}
	size += 2

	out := make([]byte, 0, size)
	out = binary.LittleEndian.AppendUint16(out, img.LoadAddress)
	for _, ln := range img.Lines {
		out = binary.LittleEndian.AppendUint16(out, ln.NextPointer)
		out = binary.LittleEndian.AppendUint16(out, uint16(ln.Number))
		out = append(out, ln.Body...)
		out = append(out, 0x00)
	}
	out = binary.LittleEndian.AppendUint16(out, 0)
	return out
}

// LineByNumber returns the line with the given number, or nil.
func (img *Image) LineByNumber(n int) *Line {
	for i := range img.Lines {
		if img.Lines[i].Number == n {
			return &img.Lines[i]
		}
	}
	return nil
}
