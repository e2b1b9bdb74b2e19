// Package listing expands a recovered program image into human-readable
// source text and translates literal runs between charsets.
package listing

// Token byte values referenced by name elsewhere in the pipeline.
const (
	TokEnd    = 0x80
	TokData   = 0x83
	TokDim    = 0x86
	TokGoto   = 0x89
	TokRun    = 0x8A
	TokIf     = 0x8B
	TokGosub  = 0x8D
	TokReturn = 0x8E
	TokRem    = 0x8F
	TokStop   = 0x90
	TokOn     = 0x91
	TokThen   = 0xA7
)

// Statement delimiters in code context.
const (
	Quote = 0x22
	Colon = 0x3A
	Comma = 0x2C
)

// tokens is the BASIC V2 keyword table. A body byte in 0x80..0xCB is a token
// in code context and plain text inside a quoted string or literal field.
var tokens = map[byte]string{
	0x80: "END", 0x81: "FOR", 0x82: "NEXT", 0x83: "DATA", 0x84: "INPUT#", 0x85: "INPUT",
	0x86: "DIM", 0x87: "READ", 0x88: "LET", 0x89: "GOTO", 0x8A: "RUN", 0x8B: "IF",
	0x8C: "RESTORE", 0x8D: "GOSUB", 0x8E: "RETURN", 0x8F: "REM", 0x90: "STOP", 0x91: "ON",
	0x92: "WAIT", 0x93: "LOAD", 0x94: "SAVE", 0x95: "VERIFY", 0x96: "DEF", 0x97: "POKE",
	0x98: "PRINT#", 0x99: "PRINT", 0x9A: "CONT", 0x9B: "LIST", 0x9C: "CLR", 0x9D: "CMD",
	0x9E: "SYS", 0x9F: "OPEN", 0xA0: "CLOSE", 0xA1: "GET", 0xA2: "NEW", 0xA3: "TAB(",
	0xA4: "TO", 0xA5: "FN", 0xA6: "SPC(", 0xA7: "THEN", 0xA8: "NOT", 0xA9: "STEP",
	0xAA: "+", 0xAB: "-", 0xAC: "*", 0xAD: "/", 0xAE: "^", 0xAF: "AND", 0xB0: "OR",
	0xB1: ">", 0xB2: "=", 0xB3: "<", 0xB4: "SGN", 0xB5: "INT", 0xB6: "ABS", 0xB7: "USR",
	0xB8: "FRE", 0xB9: "POS", 0xBA: "SQR", 0xBB: "RND", 0xBC: "LOG", 0xBD: "EXP",
	0xBE: "COS", 0xBF: "SIN", 0xC0: "TAN", 0xC1: "ATN", 0xC2: "PEEK", 0xC3: "LEN",
	0xC4: "STR$", 0xC5: "VAL", 0xC6: "ASC", 0xC7: "CHR$", 0xC8: "LEFT$", 0xC9: "RIGHT$",
	0xCA: "MID$", 0xCB: "GO",
}

// Keyword returns the keyword text for a token byte.
func Keyword(b byte) (string, bool) {
	s, ok := tokens[b]
	return s, ok
}

// IsToken reports whether the byte is in the reserved keyword range.
func IsToken(b byte) bool {
	_, ok := tokens[b]
	return ok
}
