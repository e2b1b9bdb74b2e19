package main

import (
	"flag"
	"fmt"
	"os"

	"untape/internal/image"
	"untape/internal/listing"
	"untape/internal/tapfmt"
)

func cmdListing(args []string) error {
	fs := flag.NewFlagSet("listing", flag.ExitOnError)
	prgPath := fs.String("prg", "", "input program image")
	profileID := fs.String("profile", "", "machine profile id")
	cuePath := fs.String("profile-cue", "", "profile CUE file")
	maxSteps := fs.Int("max-steps", 0, "global loop cap")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *prgPath == "" {
		return fmt.Errorf("--prg is required")
	}

	prof, err := resolveProfile(*profileID, *cuePath, false)
	if err != nil {
		return err
	}

	buf, err := os.ReadFile(*prgPath)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	img, err := image.Locate(buf, prof, tapfmt.Options{Mode: tapfmt.ModeStrict, MaxSteps: *maxSteps})
	if err != nil {
		return fmt.Errorf("locate: %w", err)
	}

	var diags tapfmt.Diags
	fmt.Print(listing.Render(img, &diags))
	for _, d := range diags.Items() {
		fmt.Fprintf(os.Stderr, "%s\n", d)
	}
	return nil
}
