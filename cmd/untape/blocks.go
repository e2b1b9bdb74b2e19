package main

import (
	"flag"
	"fmt"

	"untape/internal/frame"
	"untape/internal/image"
	"untape/internal/pulse"
	"untape/internal/tap"
	"untape/internal/tapfmt"
)

func cmdBlocks(args []string) error {
	fs := flag.NewFlagSet("blocks", flag.ExitOnError)
	tapPath := fs.String("tap", "", "input tape dump")
	profileID := fs.String("profile", "", "machine profile id")
	cuePath := fs.String("profile-cue", "", "profile CUE file")
	calibrate := fs.Bool("calibrate", false, "derive thresholds from the stream")

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
	syms, err := cls.Classify(events)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}

	var diags tapfmt.Diags
	buf := frame.Values(frame.Frame(syms, &diags))

	blocks := image.ScanBlocks(buf)
	if len(blocks) == 0 {
		fmt.Println("no transfer blocks found")
		return nil
	}

	for i, b := range blocks {
		copyKind := "first"
		if b.Repeat {
			copyKind = "repeat"
		}
		status := "checksum ok"
		if !b.ChecksumOK() {
			status = "CHECKSUM BAD"
		}
		fmt.Printf("block %d: offset %d, %s copy, %d payload bytes, %s\n",
			i, b.Offset, copyKind, len(b.Payload), status)
	}

	hdrIdx, hdr, err := image.FindHeader(blocks)
	if err != nil {
		fmt.Println("no plausible header block")
		return nil
	}
	fmt.Printf("header (block %d): type 0x%02x, %q, $%04X-$%04X (%d bytes)\n",
		hdrIdx, hdr.FileType, hdr.Name, hdr.Start, hdr.End, hdr.Length())
	return nil
}
