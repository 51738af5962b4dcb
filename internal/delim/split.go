package delim

import (
	"strings"
	"unicode"
)

// Cell is one field of a row. A discarded column is an invalid Cell.
type Cell struct {
	Value string
	Valid bool
}

// String returns the cell value, or "" for an absent cell.
func (c Cell) String() string {
	return c.Value
}

// Row is one line's worth of cells.
type Row []Cell

// Get returns the cell at col, or an absent Cell when col is out of range.
func (r Row) Get(col int) Cell {
	if col < 0 || col >= len(r) {
		return Cell{}
	}
	return r[col]
}

// Strings returns the row values. Absent cells become "".
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Value
	}
	return out
}

func isWhitespace(sep rune) bool {
	return sep == SepWhitespace
}

// tokenize splits line into raw fields. A double quote toggles a quoted span
// in which separators are literal; the quote characters stay in the field.
// With collapse, consecutive separators outside quotes produce one split.
func tokenize(line string, sep rune, collapse bool) []string {
	ws := isWhitespace(sep)
	if ws {
		line = strings.TrimFunc(line, unicode.IsSpace)
		collapse = true
	}

	var (
		fields  []string
		field   strings.Builder
		inQuote bool
		lastSep bool
	)

	for _, r := range line {
		if r == '"' {
			inQuote = !inQuote
			field.WriteRune(r)
			lastSep = false
			continue
		}
		isSep := !inQuote && (r == sep || (ws && unicode.IsSpace(r)))
		if !isSep {
			field.WriteRune(r)
			lastSep = false
			continue
		}
		if collapse && lastSep {
			continue
		}
		fields = append(fields, field.String())
		field.Reset()
		lastSep = true
	}

	// Unterminated quotes are flushed here as the final field.
	return append(fields, field.String())
}

// countSeparators returns the number of split points tokenize would produce.
func countSeparators(line string, sep rune, collapse bool) int {
	return len(tokenize(line, sep, collapse)) - 1
}

// Splitter turns raw lines into rows for a fixed dialect.
type Splitter struct {
	Separator   rune
	Collapse    bool
	StripQuotes bool

	discard map[int]bool
}

// NewSplitter returns a Splitter for the dialect's separator, collapse mode and
// quote handling. Columns listed in discard are blanked after splitting.
func NewSplitter(d Dialect, discard ...int) *Splitter {
	s := &Splitter{
		Separator:   d.Separator,
		Collapse:    d.Collapse,
		StripQuotes: d.StripQuotes,
	}
	for _, col := range discard {
		s.Discard(col)
	}
	return s
}

// Discard marks col to be blanked in every split row.
func (s *Splitter) Discard(col int) {
	if s.discard == nil {
		s.discard = make(map[int]bool)
	}
	s.discard[col] = true
}

// Keep reverses Discard.
func (s *Splitter) Keep(col int) {
	delete(s.discard, col)
}

// Split splits one line into a row.
func (s *Splitter) Split(line string) Row {
	fields := tokenize(line, s.Separator, s.Collapse)
	row := make(Row, len(fields))
	for i, f := range fields {
		if s.discard[i] {
			continue
		}
		f = strings.TrimSpace(f)
		if s.StripQuotes {
			f = stripQuotes(f)
		}
		row[i] = Cell{Value: f, Valid: true}
	}
	return row
}

// stripQuotes removes one matching pair of surrounding quotes. Doubled
// double quotes inside a stripped double-quoted cell are unescaped.
func stripQuotes(s string) string {
	if len(s) < 2 {
		return s
	}
	q := s[0]
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return s
	}
	inner := s[1 : len(s)-1]
	if q == '"' {
		inner = strings.ReplaceAll(inner, `""`, `"`)
	}
	return inner
}
