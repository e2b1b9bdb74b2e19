package main

import (
	"fmt"

	"untape/internal/profile"
	"untape/internal/tapfmt"
)

// resolveProfile picks the machine profile: a CUE file wins over a builtin id.
func resolveProfile(id, cuePath string, calibrate bool) (profile.Profile, error) {
	var prof profile.Profile
	switch {
	case cuePath != "":
		p, err := profile.LoadCUE(cuePath)
		if err != nil {
			return profile.Profile{}, err
		}
		prof = p
	case id != "":
		p, ok := profile.Builtin(profile.ID(id))
		if !ok {
			return profile.Profile{}, fmt.Errorf("unknown profile %q", id)
		}
		prof = p
	default:
		prof = profile.Default()
	}
	if calibrate {
		prof.Calibrate = true
	}
	return prof, nil
}

func buildOptions(strict bool, maxSteps int) tapfmt.Options {
	opts := tapfmt.Options{Mode: tapfmt.ModeBestEffort, MaxSteps: maxSteps}
	if strict {
		opts.Mode = tapfmt.ModeStrict
	}
	return opts
}
