// Package pulse classifies raw tape pulse-duration events into symbols.
package pulse

import "errors"

// ErrUndecodable reports a stream where too many pulses fall outside the
// classification thresholds to trust any downstream decode.
var ErrUndecodable = errors.New("pulse: signal undecodable")

// Polarity is the level of the half-wave a duration was measured on.
type Polarity int

const (
	High Polarity = iota
	Low
)

func (p Polarity) String() string {
	if p == Low {
		return "low"
	}
	return "high"
}

// Event is one pulse-duration measurement from the capture, in TAP units
// (system clock cycles / 8). Events are immutable and ordered; ordering is
// their only relationship to neighbors.
type Event struct {
	Duration int
	Polarity Polarity
}

// Kind classifies a symbol.
type Kind int

const (
	Short Kind = iota
	Long
	Sync
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Short:
		return "short"
	case Long:
		return "long"
	case Sync:
		return "sync"
	default:
		return "unknown"
	}
}

// Symbol is the classification of one or more events. Offset is the index of
// the first originating event. Confidence is 1.0 for in-band symbols; for
// UNKNOWN it is the normalized distance from the dead-zone center to the
// nearer threshold (close to a boundary reads as "almost classifiable").
type Symbol struct {
	Kind       Kind
	Confidence float64
	Offset     int
}
