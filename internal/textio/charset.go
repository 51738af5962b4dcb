package textio

// charset.go turns raw uploads into UTF-8 text for the delimited reader.
//
// Spreadsheet exports arrive in a handful of encodings:
//   - UTF-8, with or without a BOM (Excel adds one)
//   - UTF-16 with a BOM ("Unicode text" exports)
//   - Windows-1252 / Latin-1 from older tools
//
// NewDecoder strips any BOM and replaces invalid sequences with U+FFFD so the
// reader never sees malformed UTF-8.

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names a supported text encoding.
type Charset string

const (
	// Auto sniffs the first bytes of the stream.
	Auto        Charset = "auto"
	UTF8        Charset = "utf-8"
	UTF16LE     Charset = "utf-16le"
	UTF16BE     Charset = "utf-16be"
	Latin1      Charset = "iso-8859-1"
	Windows1252 Charset = "windows-1252"
)

// ErrUnsupportedCharset is returned for an encoding name NewDecoder does not
// know.
var ErrUnsupportedCharset = errors.New("unsupported character encoding")

// sniffSize is how much of the stream Auto inspects.
const sniffSize = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// ParseCharset normalizes an encoding name. The empty string means Auto.
func ParseCharset(name string) (Charset, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return Auto, nil
	case "utf-8", "utf8":
		return UTF8, nil
	case "utf-16", "utf-16le", "utf16le", "utf16":
		return UTF16LE, nil
	case "utf-16be", "utf16be":
		return UTF16BE, nil
	case "iso-8859-1", "latin1", "latin-1":
		return Latin1, nil
	case "windows-1252", "cp1252":
		return Windows1252, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedCharset, name)
}

// DetectCharset guesses the encoding of the first bytes of a stream. BOMs win,
// then valid UTF-8. Anything else is treated as Windows-1252, which accepts
// every byte.
func DetectCharset(prefix []byte) Charset {
	switch {
	case bytes.HasPrefix(prefix, bomUTF8):
		return UTF8
	case bytes.HasPrefix(prefix, bomUTF16LE):
		return UTF16LE
	case bytes.HasPrefix(prefix, bomUTF16BE):
		return UTF16BE
	}

	// The sniffed prefix may end inside a multi-byte rune.
	if utf8.Valid(prefix[:len(prefix)-incompleteTrailingBytes(prefix)]) {
		return UTF8
	}
	return Windows1252
}

func decoderFor(cs Charset) (transform.Transformer, error) {
	switch cs {
	case UTF8:
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder(), nil
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder(), nil
	case Latin1:
		return charmap.ISO8859_1.NewDecoder(), nil
	case Windows1252:
		return charmap.Windows1252.NewDecoder(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedCharset, cs)
}

// NewDecoder wraps r so that it yields UTF-8 without a BOM.
func NewDecoder(r io.Reader, cs Charset) (io.Reader, error) {
	if cs == "" || cs == Auto {
		br := bufio.NewReaderSize(r, sniffSize)
		prefix, err := br.Peek(sniffSize)
		if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
			return nil, fmt.Errorf("sniff encoding: %w", err)
		}
		cs = DetectCharset(prefix)
		r = br
	}
	dec, err := decoderFor(cs)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, dec), nil
}

// incompleteTrailingBytes returns the number of bytes at the end of data
// that could be the start of an incomplete multi-byte UTF-8 sequence.
func incompleteTrailingBytes(data []byte) int {
	for i := 1; i <= 3 && i <= len(data); i++ {
		b := data[len(data)-i]
		if b >= 0xC0 {
			if i < runeLen(b) {
				return i
			}
			return 0
		}
		// Continuation byte (10xxxxxx), keep looking for the lead byte.
		if b&0xC0 != 0x80 {
			return 0
		}
	}
	return 0
}

// runeLen returns the expected length of a UTF-8 sequence starting with b.
func runeLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 0
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	}
	return 4
}
