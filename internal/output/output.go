// Package output writes untape recovery results to files.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zboralski/lattice"
	"github.com/zboralski/lattice/render"

	"untape/internal/check"
	"untape/internal/image"
	"untape/internal/listing"
	"untape/internal/tapfmt"
)

// WriteProgram writes the machine-loadable program image to program.prg.
func WriteProgram(dir string, img *image.Image) error {
	return os.WriteFile(filepath.Join(dir, "program.prg"), img.Bytes(), 0644)
}

// WriteListing writes the rendered listing to listing.txt.
func WriteListing(dir string, text string) error {
	return os.WriteFile(filepath.Join(dir, "listing.txt"), []byte(text), 0644)
}

// WriteImageJSON writes the image's structural metadata to image.json.
func WriteImageJSON(dir string, img *image.Image) error {
	return writeJSON(filepath.Join(dir, "image.json"), img)
}

// WriteFindingsJSON writes validation findings to findings.json.
func WriteFindingsJSON(dir string, findings []check.Finding) error {
	return writeJSON(filepath.Join(dir, "findings.json"), findings)
}

// WriteRepairLog writes the repair audit log to repairs.json. An empty log
// still produces the file so the absence of repairs is itself recorded.
func WriteRepairLog(dir string, entries []listing.RepairEntry) error {
	if entries == nil {
		entries = []listing.RepairEntry{}
	}
	return writeJSON(filepath.Join(dir, "repairs.json"), entries)
}

// WriteDiagsJSON writes decode diagnostics to diags.json.
func WriteDiagsJSON(dir string, diags []tapfmt.Diag) error {
	if diags == nil {
		diags = []tapfmt.Diag{}
	}
	return writeJSON(filepath.Join(dir, "diags.json"), diags)
}

// WriteGraphDOT renders the control-flow graph to flow.dot.
func WriteGraphDOT(dir string, name string, g *lattice.Graph) error {
	return os.WriteFile(filepath.Join(dir, "flow.dot"), []byte(render.DOT(g, name)), 0644)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("output: encode %s: %w", path, err)
	}
	return nil
}
