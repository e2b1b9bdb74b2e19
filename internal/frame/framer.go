// Package frame assembles classified symbols into bytes.
package frame

import (
	"untape/internal/pulse"
	"untape/internal/tapfmt"
)

// Confidence marks how trustworthy a decoded byte is.
type Confidence int

const (
	ConfHigh Confidence = iota
	ConfLow
)

func (c Confidence) String() string {
	if c == ConfLow {
		return "low"
	}
	return "high"
}

// ByteRecord is one decoded byte. LOW-confidence bytes are retained, never
// dropped: every frame that started accumulating data bits emits exactly one
// record. SourceOffset is the event offset of the opening SYNC symbol.
type ByteRecord struct {
	Value        byte       `json:"value"`
	Confidence   Confidence `json:"confidence"`
	SourceOffset int        `json:"source_offset"`
}

// Frame runs the byte-framing state machine over a symbol stream.
//
// A frame is: SYNC, then 8 data symbols (SHORT=0, LONG=1, LSB-first), then a
// SHORT stop symbol. Violations mark the in-progress byte LOW confidence and
// resynchronize at the next SYNC; decoding never halts for one bad frame.
// Single forward pass, no backtracking across committed bytes.
func Frame(syms []pulse.Symbol, diags *tapfmt.Diags) []ByteRecord {
	var out []ByteRecord

	var (
		open    bool
		start   int  // event offset of the opening sync
		bits    int  // data bits collected
		value   byte // LSB-first accumulator
		tainted bool // any unknown bit seen
	)

	emit := func(conf Confidence) {
		out = append(out, ByteRecord{Value: value, Confidence: conf, SourceOffset: start})
		open, bits, value, tainted = false, 0, 0, false
	}

	i := 0
	for i < len(syms) {
		s := syms[i]

		if !open {
			if s.Kind == pulse.Sync {
				open = true
				start = s.Offset
			}
			i++
			continue
		}

		if bits < 8 {
			switch s.Kind {
			case pulse.Short:
				bits++
			case pulse.Long:
				value |= 1 << bits
				bits++
			case pulse.Unknown:
				// Keep the bit slot (as 0) so the byte is emitted, but
				// the whole byte is suspect.
				tainted = true
				bits++
			case pulse.Sync:
				// Sync mid-byte: commit what we have and let this sync
				// open the next frame.
				diags.Addf(s.Offset, tapfmt.DiagDesync, "sync after %d data bits, byte at event %d flagged", bits, start)
				if bits > 0 {
					emit(ConfLow)
				} else {
					open = false
				}
				continue // reprocess s as a frame opener
			}
			i++
			continue
		}

		// 8 bits collected; require the stop symbol.
		switch s.Kind {
		case pulse.Short:
			if tainted {
				diags.Addf(start, tapfmt.DiagLowConf, "byte 0x%02x decoded with unknown bits", value)
				emit(ConfLow)
			} else {
				emit(ConfHigh)
			}
			i++
		case pulse.Sync:
			diags.Addf(s.Offset, tapfmt.DiagDesync, "stop missing for byte at event %d", start)
			emit(ConfLow)
			// reprocess s as a frame opener
		default:
			diags.Addf(s.Offset, tapfmt.DiagDesync, "bad stop symbol %s for byte at event %d", s.Kind, start)
			emit(ConfLow)
			i++
		}
	}

	if open && bits > 0 {
		diags.Addf(start, tapfmt.DiagDesync, "stream ended after %d data bits", bits)
		emit(ConfLow)
	}

	return out
}

// Values extracts the raw byte values from records. The result is the shared
// decoded buffer the rest of the pipeline reads; records themselves keep the
// per-byte confidence and provenance.
func Values(recs []ByteRecord) []byte {
	out := make([]byte, len(recs))
	for i, r := range recs {
		out[i] = r.Value
	}
	return out
}
