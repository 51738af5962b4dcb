package delim

import (
	"bufio"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Writer writes delimited text that a Reader with the same separator reads
// back cell for cell.
type Writer struct {
	w   *bufio.Writer
	sep rune
}

// NewWriter returns a Writer using sep. The whitespace and uninferred
// sentinels fall back to a tab.
func NewWriter(w io.Writer, sep rune) *Writer {
	if sep == SepWhitespace || sep == SepUninferred {
		sep = '\t'
	}
	return &Writer{w: bufio.NewWriter(w), sep: sep}
}

// Separator returns the separator in use.
func (w *Writer) Separator() rune { return w.sep }

// WritePreamble writes preamble text verbatim, adding a final newline if it
// lacks one.
func (w *Writer) WritePreamble(preamble string) error {
	if preamble == "" {
		return nil
	}
	if _, err := w.w.WriteString(preamble); err != nil {
		return err
	}
	if !strings.HasSuffix(preamble, "\n") {
		return w.w.WriteByte('\n')
	}
	return nil
}

// WriteHeader writes the header line.
func (w *Writer) WriteHeader(header []string) error {
	return w.WriteRow(header)
}

// WriteRow writes one line of cells.
func (w *Writer) WriteRow(cells []string) error {
	for i, c := range cells {
		if i > 0 {
			if _, err := w.w.WriteRune(w.sep); err != nil {
				return err
			}
		}
		if w.needsQuotes(c, i, len(cells)) {
			c = `"` + strings.ReplaceAll(c, `"`, `""`) + `"`
		}
		if _, err := w.w.WriteString(c); err != nil {
			return err
		}
	}
	return w.w.WriteByte('\n')
}

// Write writes a row. Absent cells are written empty.
func (w *Writer) Write(row Row) error {
	return w.WriteRow(row.Strings())
}

// WriteTable writes the preamble, the header if present, and every row, then
// flushes.
func (w *Writer) WriteTable(t *Table) error {
	if err := w.WritePreamble(t.Preamble); err != nil {
		return err
	}
	if len(t.Header) > 0 {
		if err := w.WriteHeader(t.Header); err != nil {
			return err
		}
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

func (w *Writer) needsQuotes(c string, col, width int) bool {
	if c == "" {
		// A lone empty cell would be read back as a blank line.
		return width == 1
	}
	if strings.ContainsRune(c, w.sep) || strings.ContainsAny(c, "\"\r\n") {
		return true
	}
	first, _ := utf8.DecodeRuneInString(c)
	last, _ := utf8.DecodeLastRuneInString(c)
	if unicode.IsSpace(first) || unicode.IsSpace(last) {
		return true
	}
	// Stripped as a quote pair on the way back in.
	if len(c) >= 2 && first == '\'' && last == '\'' {
		return true
	}
	// Read back as a comment line.
	return col == 0 && strings.ContainsRune(DefaultCommentIndicators, first)
}
