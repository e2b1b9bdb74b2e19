package main

import (
	"flag"
	"fmt"

	"untape/internal/frame"
	"untape/internal/listing"
	"untape/internal/pulse"
	"untape/internal/tap"
	"untape/internal/tapfmt"
)

// cmdStrings dumps every readable text run from the decoded byte stream,
// without requiring a locatable program image. Useful on tapes too damaged
// for full recovery.
func cmdStrings(args []string) error {
	fs := flag.NewFlagSet("strings", flag.ExitOnError)
	tapPath := fs.String("tap", "", "input tape dump")
	profileID := fs.String("profile", "", "machine profile id")
	cuePath := fs.String("profile-cue", "", "profile CUE file")
	calibrate := fs.Bool("calibrate", false, "derive thresholds from the stream")
	minLen := fs.Int("min-len", 4, "minimum string length")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tapPath == "" {
		return fmt.Errorf("--tap is required")
	}

	prof, err := resolveProfile(*profileID, *cuePath, *calibrate)
	if err != nil {
		return err
	}

	events, err := tap.ReadFile(*tapPath)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if prof.Calibrate {
		prof, _, err = pulse.Calibrate(events, prof)
		if err != nil {
			return fmt.Errorf("calibrate: %w", err)
		}
	}

	cls := pulse.NewClassifier(prof)
	events = pulse.Normalize(events, cls.Inverted(events))

	// Best effort on purpose: collect whatever symbols classify, frame what
	// frames, and scan the bytes for readable runs.
	var syms []pulse.Symbol
	for sym := range cls.Symbols(events) {
		syms = append(syms, sym)
	}
	var diags tapfmt.Diags
	buf := frame.Values(frame.Frame(syms, &diags))

	run := make([]byte, 0, 64)
	flush := func(end int) {
		if len(run) >= *minLen {
			fmt.Printf("%8d  %s\n", end-len(run), run)
		}
		run = run[:0]
	}
	for i, b := range buf {
		if t, ok := listing.ToTarget(b); ok && t >= 0x20 && t < 0x7F {
			run = append(run, t)
			continue
		}
		flush(i)
	}
	flush(len(buf))
	return nil
}
