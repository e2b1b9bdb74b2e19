package listing

import (
	"fmt"
	"strings"

	"untape/internal/image"
	"untape/internal/tapfmt"
)

// Segment is one element of a line body: a single token byte, or a text run.
// Literal marks runs inside quoted strings, DATA fields, or REM comments;
// non-literal runs are code text (identifiers, numbers, operators).
type Segment struct {
	IsToken bool
	Token   byte
	Text    []byte
	Literal bool
	Charset Charset
	Offset  int // byte offset within the line body
}

// SplitBody walks a line body with the delimiter-tracking state machine and
// returns its segments. Context rules: a 0x22 quote toggles quoted context;
// DATA puts the rest of the statement (to an unquoted colon) in literal
// context; REM swallows the rest of the line. Token bytes are tokens only
// outside literal context.
func SplitBody(body []byte) []Segment {
	var segs []Segment

	var (
		quoted bool
		data   bool
		remark bool
	)

	runStart := -1
	runLiteral := false

	flush := func(end int) {
		if runStart < 0 {
			return
		}
		text := make([]byte, end-runStart)
		copy(text, body[runStart:end])
		segs = append(segs, Segment{
			Text:    text,
			Literal: runLiteral,
			Charset: SourceCharset,
			Offset:  runStart,
		})
		runStart = -1
	}

	extend := func(i int, literal bool) {
		if runStart >= 0 && runLiteral != literal {
			flush(i)
		}
		if runStart < 0 {
			runStart = i
			runLiteral = literal
		}
	}

	for i := 0; i < len(body); i++ {
		b := body[i]

		// The quote delimiter itself renders as literal text.
		if b == Quote && !remark {
			quoted = !quoted
			extend(i, true)
			continue
		}

		// An unquoted colon closes a DATA field before it is classified.
		if b == Colon && !quoted && !remark {
			data = false
		}

		literal := quoted || data || remark
		if !literal {
			switch b {
			case TokData:
				data = true
			case TokRem:
				remark = true
			}
			if IsToken(b) {
				flush(i)
				segs = append(segs, Segment{IsToken: true, Token: b, Offset: i})
				continue
			}
		}

		extend(i, literal)
	}
	flush(len(body))
	return segs
}

// TranslateRun converts a literal run between charsets through the bijective
// table. Bytes outside the mapped range pass through unchanged and are
// flagged; base is the run's offset for diagnostics. Translating
// source→target→source reproduces the original bytes for every mapped byte.
func TranslateRun(run []byte, from Charset, diags *tapfmt.Diags, base int) []byte {
	out := make([]byte, len(run))
	for i, b := range run {
		var v byte
		var ok bool
		if from == SourceCharset {
			v, ok = ToTarget(b)
		} else {
			v, ok = ToSource(b)
		}
		if !ok && diags != nil {
			diags.Addf(base+i, tapfmt.DiagUnmapped, "byte 0x%02x outside the %s charset map", b, from)
		}
		out[i] = v
	}
	return out
}

// Render produces the human-readable listing: one line per program line,
// `<number> <expanded keywords and literal text>`, literals in the target
// charset. The machine-loadable form (Image.Bytes) keeps raw token bytes.
func Render(img *image.Image, diags *tapfmt.Diags) string {
	var b strings.Builder
	for _, ln := range img.Lines {
		fmt.Fprintf(&b, "%d %s\n", ln.Number, RenderLine(ln.Body, diags))
	}
	return b.String()
}

// RenderLine expands one line body to listing text.
func RenderLine(body []byte, diags *tapfmt.Diags) string {
	var b strings.Builder
	for _, seg := range SplitBody(body) {
		if seg.IsToken {
			if kw, ok := Keyword(seg.Token); ok {
				b.WriteString(kw)
			} else {
				fmt.Fprintf(&b, "{%02X}", seg.Token)
			}
			continue
		}
		b.Write(TranslateRun(seg.Text, SourceCharset, diags, seg.Offset))
	}
	return b.String()
}
