package listing

import (
	"bytes"
	"errors"
	"testing"

	"untape/internal/image"
)

func TestRepair_SingleCorruptByte(t *testing.T) {
	// "he?lo" with an unreadable third byte, against the known string "hello".
	run := []byte{0xC8, 0xC5, 0x10, 0xCC, 0xCF}
	ref := []byte("hello")

	var log []RepairEntry
	got, err := Repair(run, ref, 40, &log)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0xC8, 0xC5, 0xCC, 0xCC, 0xCF}
	if !bytes.Equal(got, want) {
		t.Errorf("repaired = % x, want % x", got, want)
	}
	if run[2] != 0x10 {
		t.Error("Repair must not mutate its input")
	}

	if len(log) != 1 {
		t.Fatalf("got %d log entries, want 1", len(log))
	}
	e := log[0]
	if e.Location != 42 || e.OldByte != 0x10 || e.NewByte != 0xCC {
		t.Errorf("log entry = %+v", e)
	}
}

func TestRepair_Preconditions(t *testing.T) {
	ref := []byte("hello")
	tests := []struct {
		name string
		run  []byte
	}{
		{"length mismatch", []byte{0xC8, 0x10}},
		{"no mismatch", []byte{0xC8, 0xC5, 0xCC, 0xCC, 0xCF}},
		{"two mismatches", []byte{0xC8, 0x10, 0x10, 0xCC, 0xCF}},
		// 'a' (0xC1) is a valid character: a mismatch, but not corruption.
		{"mismatch byte mappable", []byte{0xC8, 0xC1, 0xCC, 0xCC, 0xCF}},
	}
	for _, tt := range tests {
		var log []RepairEntry
		if _, err := Repair(tt.run, ref, 0, &log); !errors.Is(err, ErrNoRepair) {
			t.Errorf("%s: err = %v, want ErrNoRepair", tt.name, err)
		}
		if len(log) != 0 {
			t.Errorf("%s: refused repair must not log", tt.name)
		}
	}
}

func TestRepair_ReferenceByteUnmappable(t *testing.T) {
	run := []byte{0xC8, 0x10}
	ref := []byte{'h', 0x05} // reference byte with no source-charset form
	var log []RepairEntry
	if _, err := Repair(run, ref, 0, &log); !errors.Is(err, ErrNoRepair) {
		t.Errorf("err = %v, want ErrNoRepair", err)
	}
}

func TestRepairImage(t *testing.T) {
	// 10 PRINT "O?" with a corrupt byte inside the quoted literal.
	body := []byte{0x99, 0x20, Quote, 'O', 0x10, Quote}
	img := &image.Image{
		LoadAddress: 0x1001,
		Lines:       []image.Line{{Number: 10, Body: body, Offset: 2}},
	}

	var log []RepairEntry
	applied := RepairImage(img, [][]byte{[]byte("NO"), []byte("OK")}, &log)
	if applied != 1 {
		t.Fatalf("applied = %d, want 1", applied)
	}
	if img.Lines[0].Body[4] != 'K' {
		t.Errorf("body = % x, corrupt byte should now be 'K'", img.Lines[0].Body)
	}
	if len(log) != 1 {
		t.Fatalf("got %d log entries, want 1", len(log))
	}
	// Line starts at buffer offset 2; body at 6; quoted text at 9; the
	// corrupt byte is its second character.
	if log[0].Location != 10 {
		t.Errorf("location = %d, want 10", log[0].Location)
	}

	// No references match: nothing changes, nothing logged.
	img2 := &image.Image{Lines: []image.Line{{Number: 10, Body: append([]byte{}, body...)}}}
	var log2 []RepairEntry
	if n := RepairImage(img2, [][]byte{[]byte("LONGER")}, &log2); n != 0 || len(log2) != 0 {
		t.Errorf("applied %d repairs with %d log entries, want none", n, len(log2))
	}
}
