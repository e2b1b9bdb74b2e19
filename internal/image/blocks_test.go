package image

import (
	"bytes"
	"errors"
	"testing"
)

// makeBlock emits one countdown-marked block with a correct XOR checksum.
func makeBlock(payload []byte, repeat bool) []byte {
	if len(payload) != blockPayloadSize {
		panic("payload must be 192 bytes")
	}
	marker := countdownFirst
	if repeat {
		marker = countdownRepeat
	}
	var x byte
	for _, b := range payload {
		x ^= b
	}
	out := append([]byte{}, marker...)
	out = append(out, payload...)
	return append(out, x)
}

// headerPayload builds a header block payload: type, start/end addresses,
// 16-byte space-padded name.
func headerPayload(fileType byte, start, end uint16, name string) []byte {
	p := make([]byte, blockPayloadSize)
	p[0] = fileType
	p[1] = byte(start)
	p[2] = byte(start >> 8)
	p[3] = byte(end)
	p[4] = byte(end >> 8)
	for i := 0; i < 16; i++ {
		if i < len(name) {
			p[5+i] = name[i]
		} else {
			p[5+i] = 0x20
		}
	}
	return p
}

func TestScanBlocks(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, blockPayloadSize)

	var buf []byte
	buf = append(buf, 0x12, 0x34) // leading noise
	buf = append(buf, makeBlock(payload, false)...)
	buf = append(buf, 0xFF) // gap
	buf = append(buf, makeBlock(payload, true)...)

	blocks := ScanBlocks(buf)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if blocks[0].Repeat || !blocks[1].Repeat {
		t.Errorf("copy flags = %v/%v, want first then repeat", blocks[0].Repeat, blocks[1].Repeat)
	}
	for i, b := range blocks {
		if !b.ChecksumOK() {
			t.Errorf("block %d checksum should verify", i)
		}
	}

	// Corrupt one payload byte: the block is still found, checksum flagged.
	buf[2+countdownLen] ^= 0x01
	blocks = ScanBlocks(buf)
	if len(blocks) != 2 {
		t.Fatalf("corrupted buffer: got %d blocks, want 2", len(blocks))
	}
	if blocks[0].ChecksumOK() {
		t.Error("corrupted block checksum should fail")
	}
}

func TestParseHeader(t *testing.T) {
	h, err := ParseHeader(headerPayload(0x01, 0x1001, 0x1401, "BOULDER DASH"))
	if err != nil {
		t.Fatal(err)
	}
	if h.FileType != 0x01 || h.Start != 0x1001 || h.End != 0x1401 {
		t.Errorf("header = %+v", h)
	}
	if h.Name != "BOULDER DASH" {
		t.Errorf("name = %q, want BOULDER DASH", h.Name)
	}
	if h.Length() != 0x400 {
		t.Errorf("length = %d, want 1024", h.Length())
	}

	if _, err := ParseHeader([]byte{0x01, 0x02}); err == nil {
		t.Error("short payload should fail")
	}
}

func TestFindHeader(t *testing.T) {
	hdr := headerPayload(0x01, 0x1001, 0x1401, "GAME")
	junk := bytes.Repeat([]byte{0x00}, blockPayloadSize) // scores negative

	blocks := []Block{
		{Payload: junk},
		{Payload: hdr},
		{Payload: hdr, Repeat: true},
	}
	idx, h, err := FindHeader(blocks)
	if err != nil {
		t.Fatal(err)
	}
	if idx != 1 {
		t.Errorf("idx = %d, want the first-copy header", idx)
	}
	if h.Name != "GAME" {
		t.Errorf("name = %q", h.Name)
	}

	// Only the repeat copy present: it must still be found.
	idx, _, err = FindHeader([]Block{{Payload: junk}, {Payload: hdr, Repeat: true}})
	if err != nil || idx != 1 {
		t.Errorf("repeat-only header: idx=%d err=%v", idx, err)
	}

	if _, _, err := FindHeader([]Block{{Payload: junk}}); !errors.Is(err, ErrNoHeader) {
		t.Errorf("err = %v, want ErrNoHeader", err)
	}
}

func TestAssembleProgram(t *testing.T) {
	// Two data blocks after the header on the same copy stream; a repeat-copy
	// block in between must be skipped. Declared length truncates the tail.
	data1 := bytes.Repeat([]byte{0x11}, blockPayloadSize)
	data2 := bytes.Repeat([]byte{0x22}, blockPayloadSize)
	length := blockPayloadSize + 50

	hdr := &Header{Start: 0x1001, End: uint16(0x1001 + length)}
	blocks := []Block{
		{Payload: headerPayload(0x01, hdr.Start, hdr.End, "X")},
		{Payload: data1},
		{Payload: data2, Repeat: true},
		{Payload: data2},
	}

	out := AssembleProgram(blocks, 0, hdr)
	if len(out) != 2+length {
		t.Fatalf("assembled %d bytes, want %d", len(out), 2+length)
	}
	if out[0] != 0x01 || out[1] != 0x10 {
		t.Errorf("load address bytes = %02x %02x, want 01 10", out[0], out[1])
	}
	if out[2] != 0x11 || out[2+blockPayloadSize] != 0x22 {
		t.Error("payloads assembled out of order or from the wrong copy")
	}
}
