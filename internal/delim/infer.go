package delim

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Toggle is a boolean setting that may be left to inference.
type Toggle int8

const (
	Auto Toggle = iota
	On
	Off
)

// ToggleOf returns On or Off for b.
func ToggleOf(b bool) Toggle {
	if b {
		return On
	}
	return Off
}

// Fixed reports whether the setting was given explicitly.
func (t Toggle) Fixed() bool { return t != Auto }

// Bool reports whether the setting is On.
func (t Toggle) Bool() bool { return t == On }

func (t Toggle) String() string {
	switch t {
	case On:
		return "on"
	case Off:
		return "off"
	default:
		return "auto"
	}
}

// ParseToggle accepts "", "auto", or anything strconv.ParseBool understands
// plus "yes", "no", "on" and "off".
func ParseToggle(s string) (Toggle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "yes", "on":
		return On, nil
	case "no", "off":
		return Off, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return Auto, err
	}
	return ToggleOf(b), nil
}

// Hints carry the explicitly configured parts of a dialect into inference.
type Hints struct {
	// Separator is fixed unless it is SepUninferred.
	Separator rune

	Collapse Toggle
	Headers  Toggle

	// StripQuotes applies to the returned header cells.
	StripQuotes bool

	// Comments lists the comment indicator runes.
	Comments string

	// Threshold stops scanning once a run exceeds it. Zero means
	// DefaultThreshold.
	Threshold int

	// HeaderSample bounds the data lines examined by header detection. Zero
	// means DefaultHeaderSample.
	HeaderSample int
}

// DefaultHints returns hints with nothing fixed and default tuning.
func DefaultHints() Hints {
	return Hints{
		Separator:    SepUninferred,
		StripQuotes:  true,
		Comments:     DefaultCommentIndicators,
		Threshold:    DefaultThreshold,
		HeaderSample: DefaultHeaderSample,
	}
}

// Inference is the result of InferDialect. ContentStart in Dialect is an
// index into the line sample.
type Inference struct {
	Dialect Dialect

	// Header holds the column names when Dialect.Headers is set.
	Header []string

	// Run is the length of the winning consistent run.
	Run int

	// Votes is the header detection tally, zero when headers were fixed or
	// decided by a comment-prefixed start line.
	Votes Votes
}

type candidate struct {
	sep      rune
	collapse bool
	run      int
	count    int
	start    int
	text     string
}

func (c *candidate) reset(count, line int, text string) {
	c.count = count
	c.start = line
	c.text = text
	c.run = 0
	if count > 0 {
		c.run = 1
	}
}

func candidates(h Hints) []*candidate {
	seps := DefaultSeparators
	if h.Separator != SepUninferred {
		seps = []rune{h.Separator}
	}

	var out []*candidate
	for _, sep := range seps {
		switch {
		case sep == SepWhitespace:
			out = append(out, &candidate{sep: sep, collapse: true})
		case h.Collapse.Fixed():
			out = append(out, &candidate{sep: sep, collapse: h.Collapse.Bool()})
		default:
			out = append(out,
				&candidate{sep: sep, collapse: false},
				&candidate{sep: sep, collapse: true},
			)
		}
	}
	return out
}

// isComment reports whether line starts with a comment indicator other than
// sep.
func isComment(line, comments string, sep rune) bool {
	r, size := utf8.DecodeRuneInString(line)
	if size == 0 || r == sep {
		return false
	}
	if sep == SepWhitespace && (r == ' ' || r == '\t') {
		return false
	}
	return strings.ContainsRune(comments, r)
}

// stripComment removes a leading comment indicator from line.
func stripComment(line, comments string, sep rune) string {
	if !isComment(line, comments, sep) {
		return line
	}
	_, size := utf8.DecodeRuneInString(line)
	return line[size:]
}

// InferDialect determines separator, collapse mode, content start, column
// count and header presence from a sample of lines. The sample starts after
// any explicitly skipped lines.
func InferDialect(lines []string, h Hints) (Inference, error) {
	if h.Threshold <= 0 {
		h.Threshold = DefaultThreshold
	}
	if h.HeaderSample <= 0 {
		h.HeaderSample = DefaultHeaderSample
	}

	cands := candidates(h)
	var best candidate

scan:
	for i, line := range lines {
		for _, c := range cands {
			if isComment(line, h.Comments, c.sep) {
				c.reset(countSeparators(stripComment(line, h.Comments, c.sep), c.sep, c.collapse), i, line)
			} else {
				n := countSeparators(line, c.sep, c.collapse)
				switch {
				case n == 0:
					c.run, c.count = 0, 0
				case n == c.count && c.run > 0:
					c.run++
				default:
					c.reset(n, i, line)
				}
			}

			if c.run > best.run || (c.run > 0 && c.run == best.run && c.count < best.count) {
				best = *c
			}
			if best.run > h.Threshold {
				break scan
			}
		}
	}

	if best.run == 0 {
		return Inference{}, ErrNotDelimited
	}

	d := Dialect{
		Separator:    best.sep,
		Collapse:     best.collapse,
		StripQuotes:  h.StripQuotes,
		ContentStart: best.start,
		Columns:      best.count + 1,
	}
	split := NewSplitter(d)
	commentStart := isComment(best.text, h.Comments, best.sep)
	header := split.Split(stripComment(best.text, h.Comments, best.sep)).Strings()

	inf := Inference{Dialect: d, Run: best.run}
	switch {
	case h.Headers.Fixed():
		inf.Dialect.Headers = h.Headers.Bool()
	case commentStart:
		inf.Dialect.Headers = true
	default:
		var rows [][]string
		for _, line := range lines[best.start+1:] {
			if len(rows) >= h.HeaderSample {
				break
			}
			if strings.TrimSpace(line) == "" || isComment(line, h.Comments, best.sep) {
				continue
			}
			rows = append(rows, split.Split(line).Strings())
		}
		inf.Votes = VoteHeaders(header, rows)
		inf.Dialect.Headers = inf.Votes.Headers()
	}

	if inf.Dialect.Headers {
		inf.Header = header
	}
	return inf, nil
}
