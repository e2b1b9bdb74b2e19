package frame

import (
	"testing"

	"untape/internal/pulse"
	"untape/internal/tapfmt"
)

func sym(k pulse.Kind) pulse.Symbol { return pulse.Symbol{Kind: k, Confidence: 1} }

// byteSyms encodes one value as a full frame: sync, 8 data bits LSB-first,
// short stop.
func byteSyms(v byte) []pulse.Symbol {
	out := []pulse.Symbol{sym(pulse.Sync)}
	for bit := 0; bit < 8; bit++ {
		if v&(1<<bit) != 0 {
			out = append(out, sym(pulse.Long))
		} else {
			out = append(out, sym(pulse.Short))
		}
	}
	return append(out, sym(pulse.Short))
}

func TestFrame_CleanBytes(t *testing.T) {
	want := []byte{0x00, 0xFF, 0xA5, 0x01, 0x80}
	var syms []pulse.Symbol
	for _, v := range want {
		syms = append(syms, byteSyms(v)...)
	}

	var diags tapfmt.Diags
	recs := Frame(syms, &diags)

	if len(recs) != len(want) {
		t.Fatalf("got %d records, want %d", len(recs), len(want))
	}
	for i, r := range recs {
		if r.Value != want[i] {
			t.Errorf("record %d = 0x%02x, want 0x%02x", i, r.Value, want[i])
		}
		if r.Confidence != ConfHigh {
			t.Errorf("record %d confidence = %s, want high", i, r.Confidence)
		}
	}
	if diags.Len() != 0 {
		t.Errorf("clean stream produced %d diagnostics", diags.Len())
	}
}

func TestFrame_SyncMidByte(t *testing.T) {
	// 3 data bits (101 LSB-first = 0x05), then a sync: the partial byte must
	// be committed LOW, and the sync must open the next frame.
	syms := []pulse.Symbol{
		sym(pulse.Sync), sym(pulse.Long), sym(pulse.Short), sym(pulse.Long),
	}
	syms = append(syms, byteSyms(0x42)...)

	var diags tapfmt.Diags
	recs := Frame(syms, &diags)

	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Value != 0x05 || recs[0].Confidence != ConfLow {
		t.Errorf("partial byte = 0x%02x/%s, want 0x05/low", recs[0].Value, recs[0].Confidence)
	}
	if recs[1].Value != 0x42 || recs[1].Confidence != ConfHigh {
		t.Errorf("following byte = 0x%02x/%s, want 0x42/high", recs[1].Value, recs[1].Confidence)
	}
	if diags.Len() != 1 || diags.Items()[0].Kind != tapfmt.DiagDesync {
		t.Errorf("want one %s diagnostic, got %v", tapfmt.DiagDesync, diags.Items())
	}
}

func TestFrame_UnknownBitTaints(t *testing.T) {
	// 0x03 with bit 2 unreadable: still one record, LOW confidence.
	syms := []pulse.Symbol{
		sym(pulse.Sync),
		sym(pulse.Long), sym(pulse.Long), sym(pulse.Unknown),
		sym(pulse.Short), sym(pulse.Short), sym(pulse.Short), sym(pulse.Short), sym(pulse.Short),
		sym(pulse.Short), // stop
	}

	var diags tapfmt.Diags
	recs := Frame(syms, &diags)

	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].Value != 0x03 || recs[0].Confidence != ConfLow {
		t.Errorf("got 0x%02x/%s, want 0x03/low", recs[0].Value, recs[0].Confidence)
	}
	if diags.Len() != 1 || diags.Items()[0].Kind != tapfmt.DiagLowConf {
		t.Errorf("want one %s diagnostic, got %v", tapfmt.DiagLowConf, diags.Items())
	}
}

func TestFrame_MissingStop(t *testing.T) {
	// Full 8 bits but a LONG where the stop should be.
	syms := byteSyms(0x0F)
	syms[9] = sym(pulse.Long)
	syms = append(syms, byteSyms(0x10)...)

	var diags tapfmt.Diags
	recs := Frame(syms, &diags)

	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Value != 0x0F || recs[0].Confidence != ConfLow {
		t.Errorf("bad-stop byte = 0x%02x/%s, want 0x0F/low", recs[0].Value, recs[0].Confidence)
	}
	if recs[1].Confidence != ConfHigh {
		t.Errorf("recovery byte should be high confidence")
	}
}

func TestFrame_StreamEndsMidFrame(t *testing.T) {
	syms := []pulse.Symbol{sym(pulse.Sync), sym(pulse.Long), sym(pulse.Short)}

	var diags tapfmt.Diags
	recs := Frame(syms, &diags)

	if len(recs) != 1 || recs[0].Confidence != ConfLow {
		t.Fatalf("truncated frame should still emit one LOW record, got %v", recs)
	}
}

// Length conservation: every frame that accumulates at least one data bit
// emits exactly one record, whatever violations follow.
func TestFrame_LengthConservation(t *testing.T) {
	tests := []struct {
		name string
		syms []pulse.Symbol
		want int
	}{
		{"three clean bytes", append(append(byteSyms(1), byteSyms(2)...), byteSyms(3)...), 3},
		{"desync between two frames", append([]pulse.Symbol{
			sym(pulse.Sync), sym(pulse.Long), sym(pulse.Long),
		}, byteSyms(9)...), 2},
		{"bare sync emits nothing", []pulse.Symbol{sym(pulse.Sync), sym(pulse.Sync)}, 0},
		{"leading shorts ignored before sync", append([]pulse.Symbol{
			sym(pulse.Short), sym(pulse.Short),
		}, byteSyms(7)...), 1},
	}
	for _, tt := range tests {
		var diags tapfmt.Diags
		recs := Frame(tt.syms, &diags)
		if len(recs) != tt.want {
			t.Errorf("%s: got %d records, want %d", tt.name, len(recs), tt.want)
		}
	}
}

func TestValues(t *testing.T) {
	recs := []ByteRecord{{Value: 0x01}, {Value: 0x10, Confidence: ConfLow}}
	got := Values(recs)
	if len(got) != 2 || got[0] != 0x01 || got[1] != 0x10 {
		t.Errorf("Values = %v", got)
	}
}
