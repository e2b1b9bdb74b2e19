package pulse

import (
	"fmt"
	"iter"

	"untape/internal/profile"
)

// Classifier turns pulse events into symbols using a timing profile.
type Classifier struct {
	prof profile.Profile
}

// NewClassifier returns a classifier for the given profile. If the profile
// requests calibration the thresholds should be derived first via Calibrate.
func NewClassifier(prof profile.Profile) *Classifier {
	return &Classifier{prof: prof}
}

// classifyOne maps a single duration to a kind and confidence.
//
// Thresholds with hysteresis: durations at or below TShortMax are SHORT,
// durations in [TLongMin, TSyncMin) are LONG, durations at or above TSyncMin
// are SYNC. The dead zone (TShortMax, TLongMin) tolerates tape wow/flutter:
// such pulses are UNKNOWN rather than force-fit to either side.
func (c *Classifier) classifyOne(d int) (Kind, float64) {
	p := c.prof
	switch {
	case d < p.MinPulse:
		return Unknown, 0 // dropout
	case d <= p.TShortMax:
		return Short, 1
	case d >= p.TSyncMin:
		return Sync, 1
	case d >= p.TLongMin:
		return Long, 1
	}
	// Dead zone: confidence grows toward either boundary.
	span := float64(p.TLongMin-p.TShortMax) / 2
	mid := float64(p.TShortMax+p.TLongMin) / 2
	dist := float64(d) - mid
	if dist < 0 {
		dist = -dist
	}
	return Unknown, dist / span
}

// Symbols lazily classifies events into symbols. Consecutive sync-range
// pulses (the leader tone and inter-block gaps) collapse into a single SYNC
// symbol, so the output is the same length as the input or shorter.
func (c *Classifier) Symbols(events []Event) iter.Seq[Symbol] {
	return func(yield func(Symbol) bool) {
		inSync := false
		for i, ev := range events {
			kind, conf := c.classifyOne(ev.Duration)
			if kind == Sync {
				if inSync {
					continue
				}
				inSync = true
				if !yield(Symbol{Kind: Sync, Confidence: conf, Offset: i}) {
					return
				}
				continue
			}
			inSync = false
			if !yield(Symbol{Kind: kind, Confidence: conf, Offset: i}) {
				return
			}
		}
	}
}

// Classify materializes the symbol stream and enforces the undecodable
// threshold: if more than MaxUnknownFrac of the symbols are UNKNOWN the
// stream is reported as undecodable rather than guessed at.
func (c *Classifier) Classify(events []Event) ([]Symbol, error) {
	syms := make([]Symbol, 0, len(events))
	unknown := 0
	for s := range c.Symbols(events) {
		if s.Kind == Unknown {
			unknown++
		}
		syms = append(syms, s)
	}
	if len(syms) > 0 {
		frac := float64(unknown) / float64(len(syms))
		if frac > c.prof.MaxUnknownFrac {
			return nil, fmt.Errorf("%w: %d of %d symbols unknown (%.1f%% > %.1f%%)",
				ErrUndecodable, unknown, len(syms), frac*100, c.prof.MaxUnknownFrac*100)
		}
	}
	return syms, nil
}

// Inverted reports whether the capture polarity looks flipped. A correctly
// digitized capture measures HIGH half-waves; sync-length pulses dominate any
// real tape (leader tone), so a LOW majority among them means the whole
// stream was inverted. The flag applies to the stream as a whole, never to
// individual events.
func (c *Classifier) Inverted(events []Event) bool {
	high, low := 0, 0
	for _, ev := range events {
		if ev.Duration < c.prof.TSyncMin {
			continue
		}
		if ev.Polarity == Low {
			low++
		} else {
			high++
		}
	}
	return low > high
}

// Normalize returns events with polarity flipped when inverted is set.
// Durations are symmetric across half-waves and are left untouched.
func Normalize(events []Event, inverted bool) []Event {
	if !inverted {
		return events
	}
	out := make([]Event, len(events))
	for i, ev := range events {
		flipped := ev
		if ev.Polarity == High {
			flipped.Polarity = Low
		} else {
			flipped.Polarity = High
		}
		out[i] = flipped
	}
	return out
}
