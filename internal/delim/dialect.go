package delim

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Separator sentinels. Both lie outside the Unicode range so they never
// collide with a real separator rune.
const (
	// SepUninferred marks a separator that has not been inferred yet.
	SepUninferred rune = -1

	// SepWhitespace splits on any run of whitespace.
	SepWhitespace rune = -2
)

// Defaults used when a reader is not configured otherwise.
const (
	DefaultThreshold         = 25
	DefaultHeaderSample      = 25
	DefaultSampleLines       = 500
	DefaultCommentIndicators = "#;"
)

// DefaultSeparators is the priority-ordered candidate list tested when the
// separator is not fixed.
var DefaultSeparators = []rune{'\t', ',', ';', '|', '/', ' ', SepWhitespace}

// Dialect describes how a delimited text file is structured.
type Dialect struct {
	// Separator is a concrete rune or SepWhitespace once inferred.
	Separator rune

	// Collapse treats a run of consecutive separators as one.
	Collapse bool

	// StripQuotes removes a matching pair of surrounding quotes from cells.
	StripQuotes bool

	// Headers reports whether the content-start line holds column names.
	Headers bool

	// SkipLines is the number of leading lines skipped unconditionally.
	SkipLines int

	// ContentStart is the zero-based physical line index where tabular
	// content begins. With Headers it is the header line.
	ContentStart int

	// Columns is the column count implied by the winning separator count.
	Columns int
}

// DataStart returns the physical line index of the first data row.
func (d Dialect) DataStart() int {
	if d.Headers {
		return d.ContentStart + 1
	}
	return d.ContentStart
}

// String returns a compact description for logs.
func (d Dialect) String() string {
	return fmt.Sprintf("separator=%s collapse=%t headers=%t columns=%d content_start=%d skip=%d",
		SeparatorName(d.Separator), d.Collapse, d.Headers, d.Columns, d.ContentStart, d.SkipLines)
}

// SeparatorName returns a human-readable name for a separator.
func SeparatorName(sep rune) string {
	switch sep {
	case SepUninferred:
		return "uninferred"
	case SepWhitespace:
		return "whitespace"
	case '\t':
		return "tab"
	case ',':
		return "comma"
	case ';':
		return "semicolon"
	case '|':
		return "pipe"
	case '/':
		return "slash"
	case ' ':
		return "space"
	default:
		return string(sep)
	}
}

// ParseSeparator accepts a separator name as produced by SeparatorName, an
// escaped tab ("\t") or a single character. An empty string means the
// separator should be inferred.
func ParseSeparator(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return SepUninferred, nil
	case "whitespace", "ws":
		return SepWhitespace, nil
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	case "slash":
		return '/', nil
	case "space":
		return ' ', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return SepUninferred, fmt.Errorf("%w %q: want a name or a single character", ErrInvalidSeparator, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\n' || r == '\r' {
		return SepUninferred, fmt.Errorf("%w %q", ErrInvalidSeparator, s)
	}
	return r, nil
}
