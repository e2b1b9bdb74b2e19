package listing

// Charset tags the encoding of a literal text run.
type Charset int

const (
	SourceCharset Charset = iota // PETSCII, as stored on tape
	TargetCharset                // ASCII, as rendered in the listing
)

func (c Charset) String() string {
	if c == TargetCharset {
		return "target"
	}
	return "source"
}

// The translation table is a fixed bijection over the printable range the
// recovered programs actually use: the 0x20..0x5F band (digits, punctuation,
// unshifted letters) is shared by both charsets, and the source's shifted
// letters 0xC1..0xDA pair with the target's lowercase 0x61..0x7A. Everything
// else is unmapped and passes through unchanged, flagged by the caller.

// ToTarget maps one source-charset byte to the target charset.
func ToTarget(b byte) (byte, bool) {
	switch {
	case b >= 0x20 && b <= 0x5F:
		return b, true
	case b >= 0xC1 && b <= 0xDA:
		return b - 0xC1 + 'a', true
	}
	return b, false
}

// ToSource maps one target-charset byte to the source charset.
func ToSource(b byte) (byte, bool) {
	switch {
	case b >= 0x20 && b <= 0x5F:
		return b, true
	case b >= 'a' && b <= 'z':
		return b - 'a' + 0xC1, true
	}
	return b, false
}

// Unmappable reports whether the byte maps to no valid character in either
// charset — the corruption signature the repair path keys on.
func Unmappable(b byte) bool {
	if _, ok := ToTarget(b); ok {
		return false
	}
	if _, ok := ToSource(b); ok {
		return false
	}
	return true
}
