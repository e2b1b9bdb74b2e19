// Package profile defines per-platform tape timing profiles.
package profile

// ID identifies a target-platform timing profile.
type ID string

const (
	ProfileVIC20PAL ID = "vic20-pal"
	ProfileC64PAL   ID = "c64-pal"
	ProfileUnknown  ID = "unknown"
)

// Profile holds the timing and layout constants for one target platform.
// Durations are in TAP units (system clock cycles / 8).
type Profile struct {
	ID ID `json:"id"`

	// Pulse classification thresholds.
	TShortMax int `json:"t_short_max"` // longest duration still SHORT
	TLongMin  int `json:"t_long_min"`  // shortest duration that is LONG
	TSyncMin  int `json:"t_sync_min"`  // shortest duration that is SYNC
	MinPulse  int `json:"min_pulse"`   // below this: dropout noise
	MaxPulse  int `json:"max_pulse"`   // above this: inter-block gap

	// Acceptance policy.
	MaxUnknownFrac float64 `json:"max_unknown_frac"` // undecodable above this
	Calibrate      bool    `json:"calibrate"`        // derive thresholds from cluster centers

	// Program image layout.
	LoadLo      uint16 `json:"load_lo"`       // lowest plausible load address
	LoadHi      uint16 `json:"load_hi"`       // highest plausible load address
	MaxLineBody int    `json:"max_line_body"` // line terminator scan window
}

// Builtin returns the builtin profile for the given ID.
func Builtin(id ID) (Profile, bool) {
	switch id {
	case ProfileVIC20PAL:
		return Profile{
			ID:             ProfileVIC20PAL,
			TShortMax:      56,
			TLongMin:       60,
			TSyncMin:       76,
			MinPulse:       10,
			MaxPulse:       250,
			MaxUnknownFrac: 0.20,
			LoadLo:         0x0400,
			LoadHi:         0x4000,
			MaxLineBody:    256,
		}, true
	case ProfileC64PAL:
		return Profile{
			ID:             ProfileC64PAL,
			TShortMax:      56,
			TLongMin:       60,
			TSyncMin:       76,
			MinPulse:       10,
			MaxPulse:       250,
			MaxUnknownFrac: 0.20,
			LoadLo:         0x0400,
			LoadHi:         0x8000,
			MaxLineBody:    256,
		}, true
	}
	return Profile{ID: ProfileUnknown}, false
}

// Default returns the profile used when none is specified.
func Default() Profile {
	p, _ := Builtin(ProfileVIC20PAL)
	return p
}
