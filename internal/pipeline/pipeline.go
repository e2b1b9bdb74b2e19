// Package pipeline runs the full tape recovery: classification, framing,
// structure location, validation, and listing generation.
package pipeline

import (
	"fmt"
	"log/slog"

	"untape/internal/check"
	"untape/internal/frame"
	"untape/internal/image"
	"untape/internal/listing"
	"untape/internal/profile"
	"untape/internal/pulse"
	"untape/internal/tapfmt"
)

// Config holds the pipeline inputs besides the pulse stream.
type Config struct {
	Profile    profile.Profile
	Options    tapfmt.Options
	References [][]byte // externally known literal strings, for scoped text repair
	Logger     *slog.Logger
}

// Result is everything one recovery run produced.
type Result struct {
	Profile  profile.Profile       `json:"profile"` // thresholds actually used
	Inverted bool                  `json:"inverted"`
	Records  []frame.ByteRecord    `json:"-"`
	Image    *image.Image          `json:"image"`
	Findings []check.Finding       `json:"findings"`
	Repairs  []listing.RepairEntry `json:"repairs"`
	Listing  string                `json:"-"`
	Diags    []tapfmt.Diag         `json:"diags"`
}

// Run recovers a program from a raw pulse stream. The stages are strictly
// ordered; a stage that cannot produce usable output stops the run, but
// validation findings never do.
func Run(events []pulse.Event, cfg Config) (*Result, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	prof := cfg.Profile

	if prof.Calibrate {
		calibrated, centers, err := pulse.Calibrate(events, prof)
		if err != nil {
			return nil, fmt.Errorf("pipeline: calibrate: %w", err)
		}
		log.Info("calibrated thresholds from pulse clusters",
			"centers", centers,
			"t_short_max", calibrated.TShortMax,
			"t_long_min", calibrated.TLongMin,
			"t_sync_min", calibrated.TSyncMin)
		prof = calibrated
	}

	cls := pulse.NewClassifier(prof)
	inverted := cls.Inverted(events)
	if inverted {
		log.Info("inverted polarity detected, normalizing globally")
		events = pulse.Normalize(events, inverted)
	}

	syms, err := cls.Classify(events)
	if err != nil {
		return nil, fmt.Errorf("pipeline: classify: %w", err)
	}
	log.Debug("classified pulses", "symbols", len(syms))

	var diags tapfmt.Diags
	recs := frame.Frame(syms, &diags)
	buf := frame.Values(recs)
	log.Info("framed byte stream", "bytes", len(buf), "diagnostics", diags.Len())

	if cfg.Options.Mode == tapfmt.ModeStrict && diags.Len() > 0 {
		return nil, fmt.Errorf("pipeline: strict mode: %s", diags.Items()[0])
	}

	img, err := locate(buf, prof, cfg.Options, log)
	if err != nil {
		return nil, err
	}
	log.Info("located program image",
		"load", fmt.Sprintf("$%04X", img.LoadAddress),
		"lines", len(img.Lines),
		"offset", img.Offset,
		"span", img.Span)

	res := &Result{
		Profile:  prof,
		Inverted: inverted,
		Records:  recs,
		Image:    img,
	}

	if len(cfg.References) > 0 {
		applied := listing.RepairImage(img, cfg.References, &res.Repairs)
		if applied > 0 {
			log.Info("applied literal repairs", "count", applied)
		}
	}

	res.Findings = check.Run(img)
	for _, f := range res.Findings {
		if f.Status == check.Fail {
			log.Warn("validation failed", "check", f.Check, "detail", f.Detail)
		}
	}

	res.Listing = listing.Render(img, &diags)
	res.Diags = diags.Items()
	return res, nil
}

// locate finds the program image in the decoded byte stream. When the stream
// carries checksummed transfer blocks, the program is reassembled from block
// payloads first; a raw scan over the whole stream is the fallback.
func locate(buf []byte, prof profile.Profile, opts tapfmt.Options, log *slog.Logger) (*image.Image, error) {
	blocks := image.ScanBlocks(buf)
	if len(blocks) > 0 {
		log.Debug("found transfer blocks", "count", len(blocks))
		if hdrIdx, hdr, err := image.FindHeader(blocks); err == nil {
			log.Info("transfer header found",
				"name", hdr.Name,
				"start", fmt.Sprintf("$%04X", hdr.Start),
				"end", fmt.Sprintf("$%04X", hdr.End))
			assembled := image.AssembleProgram(blocks, hdrIdx, hdr)
			if img, err := image.Locate(assembled, prof, opts); err == nil {
				return img, nil
			}
			log.Warn("assembled block payload holds no valid program, rescanning raw stream")
		}
	}

	img, err := image.Locate(buf, prof, opts)
	if err != nil {
		return nil, fmt.Errorf("pipeline: locate: %w", err)
	}
	return img, nil
}
