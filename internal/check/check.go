// Package check cross-validates a recovered program image: declared data
// tables against literal data present, control-transfer targets, and line
// reachability. It reports findings and never mutates the image.
package check

import (
	"fmt"
	"sort"
	"strings"

	"untape/internal/image"
	"untape/internal/listing"
)

// Status of one finding.
type Status string

const (
	Pass Status = "PASS"
	Fail Status = "FAIL"
)

// Check names.
const (
	CheckDataTables   = "data_table_arity"
	CheckTransfers    = "transfer_targets"
	CheckReachability = "reachability"
)

// Finding is one validation result, consumed by an external reporter.
type Finding struct {
	Check  string `json:"check"`
	Status Status `json:"status"`
	Detail string `json:"detail"`
}

// TableDecl is a declared data-table dimension, recovered from a DIM
// statement.
type TableDecl struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"` // entries, subscripts are zero-based
}

// Run performs all checks. Structural invariants (pointer arithmetic, line
// number monotonicity) are guaranteed by the locator and not re-checked;
// failures here signal semantic-level issues and never block listing
// generation.
func Run(img *image.Image) []Finding {
	return []Finding{
		checkDataTables(img),
		checkTransfers(img),
		checkReachability(img),
	}
}

// checkDataTables compares DIM-declared table capacities against the count
// of literal DATA items. A program with no declarations or no data has
// nothing to cross-check. The counts match when any declared capacity, or
// the sum of all of them, equals the data item count.
func checkDataTables(img *image.Image) Finding {
	var decls []TableDecl
	items := 0
	for _, ln := range img.Lines {
		decls = append(decls, lineTableDecls(ln.Body)...)
		items += lineDataItems(ln.Body)
	}

	if len(decls) == 0 || items == 0 {
		return Finding{Check: CheckDataTables, Status: Pass,
			Detail: fmt.Sprintf("%d declarations, %d data items; nothing to cross-check", len(decls), items)}
	}

	sum := 0
	for _, d := range decls {
		sum += d.Capacity
		if d.Capacity == items {
			return Finding{Check: CheckDataTables, Status: Pass,
				Detail: fmt.Sprintf("table %s declares %d entries, %d data items present", d.Name, d.Capacity, items)}
		}
	}
	if sum == items {
		return Finding{Check: CheckDataTables, Status: Pass,
			Detail: fmt.Sprintf("declared capacities total %d, %d data items present", sum, items)}
	}

	var caps []string
	for _, d := range decls {
		caps = append(caps, fmt.Sprintf("%s=%d", d.Name, d.Capacity))
	}
	return Finding{Check: CheckDataTables, Status: Fail,
		Detail: fmt.Sprintf("declared %s (sum %d), found %d data items", strings.Join(caps, " "), sum, items)}
}

// checkTransfers verifies that every control-transfer line-number operand
// resolves to an existing line.
func checkTransfers(img *image.Image) Finding {
	exists := make(map[int]bool, len(img.Lines))
	for _, ln := range img.Lines {
		exists[ln.Number] = true
	}

	var missing []string
	count := 0
	for _, ln := range img.Lines {
		targets, _ := lineTransfers(ln.Body)
		for _, t := range targets {
			count++
			if !exists[t] {
				missing = append(missing, fmt.Sprintf("%d (from line %d)", t, ln.Number))
			}
		}
	}

	if len(missing) > 0 {
		return Finding{Check: CheckTransfers, Status: Fail,
			Detail: fmt.Sprintf("unresolved targets: %s", strings.Join(missing, ", "))}
	}
	return Finding{Check: CheckTransfers, Status: Pass,
		Detail: fmt.Sprintf("%d transfer targets, all resolved", count)}
}

// checkReachability walks control-transfer and fallthrough edges from the
// entry line. The format defines no dead-code marker, so every unreachable
// line is a failure, not silently ignored.
func checkReachability(img *image.Image) Finding {
	if len(img.Lines) == 0 {
		return Finding{Check: CheckReachability, Status: Pass, Detail: "empty program"}
	}

	adj := adjacency(img)
	reached := map[int]bool{img.Lines[0].Number: true}
	queue := []int{img.Lines[0].Number}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, t := range adj[n] {
			if !reached[t] {
				reached[t] = true
				queue = append(queue, t)
			}
		}
	}

	var unreachable []int
	for _, ln := range img.Lines {
		if !reached[ln.Number] {
			unreachable = append(unreachable, ln.Number)
		}
	}
	if len(unreachable) > 0 {
		sort.Ints(unreachable)
		var s []string
		for _, n := range unreachable {
			s = append(s, fmt.Sprintf("%d", n))
		}
		return Finding{Check: CheckReachability, Status: Fail,
			Detail: fmt.Sprintf("%d unreachable lines: %s", len(unreachable), strings.Join(s, ", "))}
	}
	return Finding{Check: CheckReachability, Status: Pass,
		Detail: fmt.Sprintf("all %d lines reachable from line %d", len(img.Lines), img.Lines[0].Number)}
}

// adjacency builds the control-flow edges: explicit transfer targets that
// exist, plus sequential fallthrough unless the line unconditionally
// diverts (ends in GOTO/RETURN/END/STOP with no IF on the line).
func adjacency(img *image.Image) map[int][]int {
	exists := make(map[int]bool, len(img.Lines))
	for _, ln := range img.Lines {
		exists[ln.Number] = true
	}

	adj := make(map[int][]int, len(img.Lines))
	for i, ln := range img.Lines {
		targets, diverts := lineTransfers(ln.Body)
		for _, t := range targets {
			if exists[t] {
				adj[ln.Number] = append(adj[ln.Number], t)
			}
		}
		if !diverts && i+1 < len(img.Lines) {
			adj[ln.Number] = append(adj[ln.Number], img.Lines[i+1].Number)
		}
	}
	return adj
}

// lineTransfers extracts line-number operands of GOTO/GOSUB/THEN/RUN
// (including ON..GOTO/GOSUB lists) and reports whether control never falls
// through to the next line.
func lineTransfers(body []byte) (targets []int, diverts bool) {
	segs := listing.SplitBody(body)

	var (
		pending   bool // a transfer token awaits its operand list
		hasIf     bool
		stmtFirst byte // first token of the current statement
		stmtOpen  bool // current statement has content
	)

	for _, seg := range segs {
		if seg.IsToken {
			if !stmtOpen {
				stmtFirst, stmtOpen = seg.Token, true
			}
			switch seg.Token {
			case listing.TokIf:
				hasIf = true
				pending = false
			case listing.TokGoto, listing.TokGosub, listing.TokRun, listing.TokThen:
				pending = true
			default:
				pending = false
			}
			continue
		}
		if seg.Literal {
			continue
		}
		if pending {
			targets = append(targets, parseNumberList(seg.Text)...)
			pending = false
		}
		for _, b := range seg.Text {
			switch {
			case b == listing.Colon:
				stmtFirst, stmtOpen = 0, false
			case b != ' ':
				if !stmtOpen {
					stmtOpen = true
					stmtFirst = 0
				}
			}
		}
	}

	diverts = !hasIf && stmtOpen &&
		(stmtFirst == listing.TokGoto || stmtFirst == listing.TokReturn ||
			stmtFirst == listing.TokEnd || stmtFirst == listing.TokStop)
	return targets, diverts
}

// parseNumberList reads leading comma-separated line numbers from code text.
func parseNumberList(text []byte) []int {
	var out []int
	i := 0
	skip := func() {
		for i < len(text) && text[i] == ' ' {
			i++
		}
	}
	for {
		skip()
		start := i
		n := 0
		for i < len(text) && text[i] >= '0' && text[i] <= '9' {
			n = n*10 + int(text[i]-'0')
			i++
		}
		if i == start {
			break
		}
		out = append(out, n)
		skip()
		if i >= len(text) || text[i] != listing.Comma {
			break
		}
		i++
	}
	return out
}

// lineTableDecls parses DIM declarations: name, then a parenthesized
// subscript list. Capacity is the product of (subscript+1) since subscripts
// are zero-based.
func lineTableDecls(body []byte) []TableDecl {
	var decls []TableDecl
	segs := listing.SplitBody(body)
	for si, seg := range segs {
		if !seg.IsToken || seg.Token != listing.TokDim {
			continue
		}
		if si+1 >= len(segs) || segs[si+1].IsToken || segs[si+1].Literal {
			continue
		}
		decls = append(decls, parseDims(segs[si+1].Text)...)
	}
	return decls
}

func parseDims(text []byte) []TableDecl {
	var decls []TableDecl
	i := 0
	skip := func() {
		for i < len(text) && text[i] == ' ' {
			i++
		}
	}
	for {
		skip()
		start := i
		for i < len(text) {
			b := text[i]
			if (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9' && i > start) || b == '$' || b == '%' {
				i++
				continue
			}
			break
		}
		if i == start {
			break
		}
		name := string(text[start:i])
		skip()
		if i >= len(text) || text[i] != '(' {
			break
		}
		i++
		capacity := 1
		for {
			skip()
			dstart := i
			n := 0
			for i < len(text) && text[i] >= '0' && text[i] <= '9' {
				n = n*10 + int(text[i]-'0')
				i++
			}
			if i == dstart {
				return decls // non-constant subscript, give up on this DIM
			}
			capacity *= n + 1
			skip()
			if i < len(text) && text[i] == listing.Comma {
				i++
				continue
			}
			break
		}
		if i >= len(text) || text[i] != ')' {
			break
		}
		i++
		decls = append(decls, TableDecl{Name: name, Capacity: capacity})
		skip()
		if i >= len(text) || text[i] != listing.Comma {
			break
		}
		i++
	}
	return decls
}

// lineDataItems counts literal items in the line's DATA fields. Items are
// separated by commas outside quotes.
func lineDataItems(body []byte) int {
	items := 0
	segs := listing.SplitBody(body)
	for si, seg := range segs {
		if !seg.IsToken || seg.Token != listing.TokData {
			continue
		}
		if si+1 >= len(segs) || !segs[si+1].Literal {
			continue
		}
		items += countItems(segs[si+1].Text)
	}
	return items
}

func countItems(text []byte) int {
	trimmed := strings.TrimSpace(string(text))
	if trimmed == "" {
		return 0
	}
	count := 1
	quoted := false
	for i := 0; i < len(trimmed); i++ {
		switch trimmed[i] {
		case listing.Quote:
			quoted = !quoted
		case listing.Comma:
			if !quoted {
				count++
			}
		}
	}
	return count
}
