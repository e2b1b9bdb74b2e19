package tap

import (
	"encoding/binary"
	"errors"
	"testing"
)

// makeTAP builds a v1 container around the given stream bytes.
func makeTAP(version byte, stream []byte) []byte {
	out := append([]byte{}, signature...)
	out = append(out, version, 0, 0, 0)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(stream)))
	return append(out, stream...)
}

func TestParse_Pulses(t *testing.T) {
	b := makeTAP(1, []byte{
		0x2D,             // plain pulse, 45 units
		0x5A,             // 90 units
		0x00, 0x10, 0x27, 0x00, // escaped 24-bit pulse: 0x002710 = 10000
	})
	events, err := Parse(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	want := []int{45, 90, 10000}
	for i, w := range want {
		if events[i].Duration != w {
			t.Errorf("event %d duration = %d, want %d", i, events[i].Duration, w)
		}
	}
}

func TestParse_BadContainers(t *testing.T) {
	if _, err := Parse([]byte("not a tape file, not at all")); !errors.Is(err, ErrNotTAP) {
		t.Errorf("bad signature: err = %v, want ErrNotTAP", err)
	}
	if _, err := Parse(makeTAP(2, nil)); !errors.Is(err, ErrBadVersion) {
		t.Errorf("version 2: err = %v, want ErrBadVersion", err)
	}
	if _, err := Parse([]byte("C64-TAPE")); !errors.Is(err, ErrNotTAP) {
		t.Errorf("short file: err = %v, want ErrNotTAP", err)
	}
}

func TestParse_DanglingEscape(t *testing.T) {
	// A zero escape with only two trailing bytes carries no pulse.
	events, err := Parse(makeTAP(1, []byte{0x2D, 0x00, 0x10}))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Duration != 45 {
		t.Errorf("events = %v, want the single plain pulse", events)
	}
}

func TestParse_DeclaredLengthBoundsStream(t *testing.T) {
	// Declared length 2 cuts off the trailing byte.
	b := makeTAP(1, []byte{0x2D, 0x2D, 0x2D})
	binary.LittleEndian.PutUint32(b[16:], 2)
	events, err := Parse(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2", len(events))
	}
}
