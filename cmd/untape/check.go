package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/zboralski/lattice/render"

	"untape/internal/check"
	"untape/internal/image"
	"untape/internal/tapfmt"
)

func cmdCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	prgPath := fs.String("prg", "", "input program image")
	profileID := fs.String("profile", "", "machine profile id")
	cuePath := fs.String("profile-cue", "", "profile CUE file")
	maxSteps := fs.Int("max-steps", 0, "global loop cap")
	jsonOut := fs.Bool("json", false, "output as JSON")
	dotOut := fs.String("dot", "", "write control-flow graph DOT file")

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

	findings := check.Run(img)

	if *dotOut != "" {
		g := check.Graph(img)
		if err := os.WriteFile(*dotOut, []byte(render.DOT(g, "flow")), 0644); err != nil {
			return fmt.Errorf("write dot: %w", err)
		}
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(findings)
	}
	for _, f := range findings {
		fmt.Printf("[%s] %s: %s\n", f.Status, f.Check, f.Detail)
	}
	return nil
}
