package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"untape/internal/pulse"
	"untape/internal/tap"
)

func cmdScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	tapPath := fs.String("tap", "", "input tape dump")
	profileID := fs.String("profile", "", "machine profile id")
	cuePath := fs.String("profile-cue", "", "profile CUE file")
	calibrate := fs.Bool("calibrate", false, "derive thresholds from the stream")
	jsonOut := fs.Bool("json", false, "output as JSON")

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

	centers := []float64(nil)
	if prof.Calibrate {
		prof, centers, err = pulse.Calibrate(events, prof)
		if err != nil {
			return fmt.Errorf("calibrate: %w", err)
		}
	}

	cls := pulse.NewClassifier(prof)
	inverted := cls.Inverted(events)
	events = pulse.Normalize(events, inverted)

	counts := map[string]int{}
	total := 0
	for sym := range cls.Symbols(events) {
		counts[sym.Kind.String()]++
		total++
	}

	stats := struct {
		Profile   string         `json:"profile"`
		Pulses    int            `json:"pulses"`
		Symbols   int            `json:"symbols"`
		Counts    map[string]int `json:"counts"`
		Centers   []float64      `json:"centers,omitempty"`
		Inverted  bool           `json:"inverted"`
		TShortMax int            `json:"t_short_max"`
		TLongMin  int            `json:"t_long_min"`
		TSyncMin  int            `json:"t_sync_min"`
	}{
		Profile: string(prof.ID), Pulses: len(events), Symbols: total,
		Counts: counts, Centers: centers, Inverted: inverted,
		TShortMax: prof.TShortMax, TLongMin: prof.TLongMin, TSyncMin: prof.TSyncMin,
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("profile: %s  pulses: %d  inverted: %v\n", stats.Profile, stats.Pulses, inverted)
	if centers != nil {
		fmt.Printf("cluster centers: %.1f\n", centers)
	}
	fmt.Printf("thresholds: short<=%d  long>=%d  sync>=%d\n", prof.TShortMax, prof.TLongMin, prof.TSyncMin)
	fmt.Printf("symbols: %d\n", total)
	for _, k := range []string{"short", "long", "sync", "unknown"} {
		fmt.Printf("  %-8s %d\n", k, counts[k])
	}
	return nil
}
