package image

import (
	"encoding/binary"
	"errors"
	"fmt"

	"untape/internal/profile"
	"untape/internal/tapfmt"
)

var (
	// ErrNotFound reports that no byte offset yields a valid program
	// structure. Absence of structure is reported, never papered over.
	ErrNotFound = errors.New("image: no valid program structure found")

	// ErrAmbiguous reports that more than one candidate survives full
	// validation at maximal span. Ties are rejected, never broken by
	// preference: correctness rests on uniqueness.
	ErrAmbiguous = errors.New("image: ambiguous program structure")

	// ErrBudget reports that the scan exceeded the configured step cap.
	ErrBudget = errors.New("image: scan step budget exhausted")
)

// maxLineNumber is the largest line number the target interpreters accept.
const maxLineNumber = 63999

// Locate scans the decoded buffer for the unique program image.
//
// Every byte offset is tried as a candidate start: a 2-byte load address
// inside the profile's program region, followed by a linked list whose
// next-pointers must equal the computed address of each following line start
// and whose line numbers must be strictly increasing. Internal
// self-consistency is the sole acceptance criterion; there is no external
// reference copy. Survivors are scored by span; a unique maximum wins.
func Locate(buf []byte, prof profile.Profile, opts tapfmt.Options) (*Image, error) {
	var survivors []*Image
	steps := 0
	budget := opts.EffectiveMaxSteps()

	for off := 0; off+4 <= len(buf); off++ {
		img, err := walk(buf, off, prof, &steps, budget)
		if err != nil {
			return nil, err
		}
		if img != nil {
			survivors = append(survivors, img)
		}
	}

	if len(survivors) == 0 {
		return nil, ErrNotFound
	}

	best := survivors[0]
	ties := 1
	for _, s := range survivors[1:] {
		switch {
		case s.Span > best.Span:
			best, ties = s, 1
		case s.Span == best.Span:
			ties++
		}
	}
	if ties > 1 {
		return nil, fmt.Errorf("%w: %d survivors of span %d", ErrAmbiguous, ties, best.Span)
	}
	return best, nil
}

// walk attempts the linked-list walk from one candidate offset. It returns
// nil on the first pointer mismatch, non-increasing line number, or missing
// terminator; a candidate either survives to the zero end pointer or is
// rejected outright.
func walk(buf []byte, off int, prof profile.Profile, steps *int, budget int) (*Image, error) {
	load := binary.LittleEndian.Uint16(buf[off:])
	if load < prof.LoadLo || load > prof.LoadHi {
		return nil, nil
	}

	s := tapfmt.NewStreamAt(buf, off+2)
	var lines []Line
	lastNum := -1

	for {
		*steps++
		if *steps > budget {
			return nil, ErrBudget
		}

		lineOff := s.Position()
		next, err := s.ReadUint16()
		if err != nil {
			return nil, nil
		}
		if next == 0 {
			// Global end-of-program terminator: full survivor.
			if len(lines) == 0 {
				return nil, nil
			}
			return &Image{
				LoadAddress: load,
				Lines:       lines,
				Offset:      off,
				Span:        s.Position() - off,
			}, nil
		}

		num, err := s.ReadUint16()
		if err != nil {
			return nil, nil
		}
		if int(num) > maxLineNumber || int(num) <= lastNum {
			return nil, nil
		}

		term := s.ScanTerminator(0x00, prof.MaxLineBody)
		if term < 0 {
			return nil, nil
		}

		// The stored pointer must equal the memory address of the next
		// line's start: load + (buffer offset − start of program payload).
		nextOff := term + 1
		want := int(load) + nextOff - (off + 2)
		if want > 0xFFFF || int(next) != want {
			return nil, nil
		}

		body := make([]byte, term-s.Position())
		copy(body, buf[s.Position():term])
		lines = append(lines, Line{
			NextPointer: next,
			Number:      int(num),
			Body:        body,
			Offset:      lineOff,
		})
		lastNum = int(num)
		s.SetPosition(nextOff)
	}
}
