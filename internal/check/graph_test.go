package check

import (
	"slices"
	"testing"

	"untape/internal/image"
	"untape/internal/listing"
)

func TestGraph(t *testing.T) {
	img := &image.Image{Lines: []image.Line{
		line(10, append([]byte{listing.TokGoto}, code("30")...)),
		line(20, code("A=1")),
		line(30, append([]byte{listing.TokGoto}, code("99")...)), // dangling target
	}}

	g := Graph(img)

	for _, want := range []string{"L10", "L20", "L30"} {
		if !slices.Contains(g.Nodes, want) {
			t.Errorf("node %s missing from %v", want, g.Nodes)
		}
	}

	type edge struct{ from, to string }
	var got []edge
	for _, e := range g.Edges {
		got = append(got, edge{e.Caller, e.Callee})
	}
	wantEdges := []edge{
		{"L10", "L30"}, // explicit transfer
		{"L20", "L30"}, // fallthrough
		{"L30", "L99"}, // dangling, kept visible
	}
	for _, w := range wantEdges {
		if !slices.Contains(got, w) {
			t.Errorf("edge %s->%s missing from %v", w.from, w.to, got)
		}
	}
	// Line 10 diverts: no fallthrough edge to line 20.
	if slices.Contains(got, edge{"L10", "L20"}) {
		t.Error("unexpected fallthrough edge from a diverting line")
	}
}
