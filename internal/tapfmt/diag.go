// Package tapfmt provides shared types and diagnostics for tape decoding.
package tapfmt

import "fmt"

// DiagKind classifies a diagnostic message.
type DiagKind string

const (
	DiagDesync    DiagKind = "frame_desync"
	DiagUnmapped  DiagKind = "unmapped_char"
	DiagLowConf   DiagKind = "low_confidence"
	DiagTruncated DiagKind = "truncated"
	DiagInvalid   DiagKind = "invalid"
)

// Diag records a non-fatal issue encountered during decoding.
type Diag struct {
	Offset int      `json:"offset"`
	Kind   DiagKind `json:"kind"`
	Msg    string   `json:"msg"`
}

func (d Diag) String() string {
	return fmt.Sprintf("[%s] %d: %s", d.Kind, d.Offset, d.Msg)
}

// Diags accumulates diagnostics.
type Diags struct {
	items []Diag
}

func (d *Diags) Add(offset int, kind DiagKind, msg string) {
	d.items = append(d.items, Diag{Offset: offset, Kind: kind, Msg: msg})
}

func (d *Diags) Addf(offset int, kind DiagKind, format string, args ...any) {
	d.items = append(d.items, Diag{Offset: offset, Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

func (d *Diags) Items() []Diag { return d.items }
func (d *Diags) Len() int      { return len(d.items) }

// Mode controls error handling behavior.
type Mode int

const (
	ModeStrict     Mode = iota // first structural error returns error
	ModeBestEffort             // continue, accumulate diags
)

// Options controls decoding behavior across packages.
type Options struct {
	Mode     Mode
	MaxSteps int // global loop cap; 0 = use default
}

// DefaultMaxSteps is the global default loop cap.
const DefaultMaxSteps = 10_000_000

func (o Options) EffectiveMaxSteps() int {
	if o.MaxSteps > 0 {
		return o.MaxSteps
	}
	return DefaultMaxSteps
}
