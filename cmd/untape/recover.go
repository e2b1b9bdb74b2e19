package main

import (
	"flag"
	"fmt"
	"os"

	"untape/internal/check"
	"untape/internal/logs"
	"untape/internal/output"
	"untape/internal/pipeline"
	"untape/internal/tap"
)

func cmdRecover(args []string) error {
	fs := flag.NewFlagSet("recover", flag.ExitOnError)
	tapPath := fs.String("tap", "", "input tape dump")
	outDir := fs.String("out", "", "output directory")
	profileID := fs.String("profile", "", "machine profile id")
	cuePath := fs.String("profile-cue", "", "profile CUE file")
	calibrate := fs.Bool("calibrate", false, "derive thresholds from the stream")
	strict := fs.Bool("strict", false, "fail on first structural error")
	maxSteps := fs.Int("max-steps", 0, "global loop cap")
	audit := fs.String("audit", "", "append JSON audit log")
	debug := fs.Bool("debug", false, "debug-level logging")
	var refs refList
	fs.Var(&refs, "reference", "known literal string for scoped repair (repeatable)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tapPath == "" {
		return fmt.Errorf("--tap is required")
	}
	if *outDir == "" {
		return fmt.Errorf("--out is required")
	}

	if *debug {
		logs.SetDebug()
	}
	log, closeLog, err := logs.New(*audit)
	if err != nil {
		return err
	}
	defer closeLog()

	prof, err := resolveProfile(*profileID, *cuePath, *calibrate)
	if err != nil {
		return err
	}

	events, err := tap.ReadFile(*tapPath)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	res, err := pipeline.Run(events, pipeline.Config{
		Profile:    prof,
		Options:    buildOptions(*strict, *maxSteps),
		References: refs.bytes(),
		Logger:     log,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := output.WriteProgram(*outDir, res.Image); err != nil {
		return err
	}
	if err := output.WriteListing(*outDir, res.Listing); err != nil {
		return err
	}
	if err := output.WriteImageJSON(*outDir, res.Image); err != nil {
		return err
	}
	if err := output.WriteFindingsJSON(*outDir, res.Findings); err != nil {
		return err
	}
	if err := output.WriteRepairLog(*outDir, res.Repairs); err != nil {
		return err
	}
	if err := output.WriteDiagsJSON(*outDir, res.Diags); err != nil {
		return err
	}
	if err := output.WriteGraphDOT(*outDir, "flow", check.Graph(res.Image)); err != nil {
		return err
	}

	fmt.Printf("recovered %d lines, load $%04X\n", len(res.Image.Lines), res.Image.LoadAddress)
	for _, f := range res.Findings {
		fmt.Printf("  [%s] %s: %s\n", f.Status, f.Check, f.Detail)
	}
	fmt.Printf("outputs written to %s\n", *outDir)
	return nil
}

// refList collects repeatable --reference flags.
type refList []string

func (r *refList) String() string { return fmt.Sprint(*r) }

func (r *refList) Set(v string) error {
	*r = append(*r, v)
	return nil
}

func (r refList) bytes() [][]byte {
	out := make([][]byte, len(r))
	for i, s := range r {
		out[i] = []byte(s)
	}
	return out
}
