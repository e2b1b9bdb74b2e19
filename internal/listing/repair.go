package listing

import (
	"errors"
	"fmt"

	"untape/internal/image"
)

// RepairEntry is one audit-log record for a literal-text repair.
type RepairEntry struct {
	Location      int    `json:"location"` // byte offset within the decoded program image
	OldByte       byte   `json:"old_byte"`
	NewByte       byte   `json:"new_byte"`
	Justification string `json:"justification"`
}

var (
	// ErrNoRepair reports that the run does not meet the repair
	// preconditions. The preconditions are hard requirements, not
	// judgment calls: repair is the only operation in the pipeline
	// allowed to alter a byte value.
	ErrNoRepair = errors.New("listing: run does not qualify for repair")
)

// Repair substitutes exactly one byte in a source-charset literal run.
//
// Preconditions, all enforced: the run and the externally known reference
// (target charset) have equal length; they differ in exactly one position
// once the run is translated; and the differing source byte maps to no valid
// character in either charset — the corruption signature. The substitution
// is appended to log with its location and old/new values. Any other literal
// is never altered.
func Repair(run []byte, reference []byte, location int, log *[]RepairEntry) ([]byte, error) {
	if len(run) != len(reference) {
		return nil, fmt.Errorf("%w: length %d vs reference %d", ErrNoRepair, len(run), len(reference))
	}

	translated := TranslateRun(run, SourceCharset, nil, 0)
	mismatch := -1
	for i := range translated {
		if translated[i] == reference[i] {
			continue
		}
		if mismatch >= 0 {
			return nil, fmt.Errorf("%w: more than one mismatch against reference", ErrNoRepair)
		}
		mismatch = i
	}
	if mismatch < 0 {
		return nil, fmt.Errorf("%w: run already matches reference", ErrNoRepair)
	}
	if !Unmappable(run[mismatch]) {
		return nil, fmt.Errorf("%w: byte 0x%02x at %d is a valid character, not corruption",
			ErrNoRepair, run[mismatch], mismatch)
	}

	repl, ok := ToSource(reference[mismatch])
	if !ok {
		return nil, fmt.Errorf("%w: reference byte 0x%02x has no source-charset form",
			ErrNoRepair, reference[mismatch])
	}

	out := make([]byte, len(run))
	copy(out, run)
	out[mismatch] = repl

	*log = append(*log, RepairEntry{
		Location:      location + mismatch,
		OldByte:       run[mismatch],
		NewByte:       repl,
		Justification: fmt.Sprintf("single unmapped byte; rest of run matches reference %q", reference),
	})
	return out, nil
}

// RepairImage tries each reference against every literal run in the image and
// applies the repairs that qualify, rewriting the affected line bodies in
// place. Runs that meet no reference's preconditions are left untouched.
// Returns the number of repairs applied.
func RepairImage(img *image.Image, refs [][]byte, log *[]RepairEntry) int {
	applied := 0
	for li := range img.Lines {
		ln := &img.Lines[li]
		for _, seg := range SplitBody(ln.Body) {
			if seg.IsToken || !seg.Literal {
				continue
			}
			// The segment text includes the quote delimiters; references
			// are bare strings, so strip them before matching.
			text, segOff := seg.Text, seg.Offset
			if len(text) > 0 && text[0] == Quote {
				text, segOff = text[1:], segOff+1
			}
			if len(text) > 0 && text[len(text)-1] == Quote {
				text = text[:len(text)-1]
			}
			if len(text) == 0 {
				continue
			}
			// Body bytes sit 4 bytes past the line start (pointer + number).
			loc := ln.Offset + 4 + segOff
			for _, ref := range refs {
				fixed, err := Repair(text, ref, loc, log)
				if err != nil {
					continue
				}
				copy(ln.Body[segOff:], fixed)
				applied++
				break
			}
		}
	}
	return applied
}
