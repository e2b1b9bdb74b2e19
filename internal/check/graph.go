package check

import (
	"fmt"

	"github.com/zboralski/lattice"

	"untape/internal/image"
)

// Graph builds the program's control-flow graph. Each line becomes a node;
// transfer targets and sequential fallthrough become edges. Targets that
// resolve to no line still appear as dangling nodes so the rendered graph
// shows them.
func Graph(img *image.Image) *lattice.Graph {
	g := &lattice.Graph{}
	exists := make(map[int]bool, len(img.Lines))
	for _, ln := range img.Lines {
		exists[ln.Number] = true
	}

	for i, ln := range img.Lines {
		g.Nodes = append(g.Nodes, nodeName(ln.Number))

		targets, diverts := lineTransfers(ln.Body)
		for _, t := range targets {
			g.Edges = append(g.Edges, lattice.Edge{
				Caller: nodeName(ln.Number),
				Callee: nodeName(t),
			})
		}
		if !diverts && i+1 < len(img.Lines) {
			g.Edges = append(g.Edges, lattice.Edge{
				Caller: nodeName(ln.Number),
				Callee: nodeName(img.Lines[i+1].Number),
			})
		}
	}
	g.Dedup()
	return g
}

func nodeName(n int) string {
	return fmt.Sprintf("L%d", n)
}
