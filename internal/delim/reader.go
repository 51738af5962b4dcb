package delim

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/JonMunkholm/csvsniff/internal/textio"
)

// State is the position of a Reader in its session lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateOpened
	StateIterating
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateOpened:
		return "opened"
	case StateIterating:
		return "iterating"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option configures a Reader at construction.
type Option func(*Reader)

// WithSeparator fixes the separator. SepUninferred leaves it to inference.
func WithSeparator(sep rune) Option {
	return func(r *Reader) { r.separator = sep }
}

// WithCollapse fixes collapse mode.
func WithCollapse(t Toggle) Option {
	return func(r *Reader) { r.collapse = t }
}

// WithHeaders fixes header presence.
func WithHeaders(t Toggle) Option {
	return func(r *Reader) { r.headers = t }
}

// WithSkipLines skips the first n physical lines.
func WithSkipLines(n int) Option {
	return func(r *Reader) { r.skipLines = n }
}

// WithSkipUntil skips every line up to and including the first line equal to
// marker, compared after trimming surrounding whitespace.
func WithSkipUntil(marker string) Option {
	return func(r *Reader) { r.skipUntil = marker }
}

// WithCommentIndicators replaces the comment indicator set.
func WithCommentIndicators(chars string) Option {
	return func(r *Reader) { r.comments = chars }
}

// WithStripQuotes sets whether a matching pair of surrounding quotes is
// removed from cells. It is on by default.
func WithStripQuotes(strip bool) Option {
	return func(r *Reader) { r.stripQuotes = strip }
}

// WithDiscardColumns blanks the given columns in every row.
func WithDiscardColumns(cols ...int) Option {
	return func(r *Reader) {
		for _, c := range cols {
			r.discard[c] = true
		}
	}
}

// WithOpener sets how the source name is opened. The default is a FileOpener
// that sniffs the character encoding.
func WithOpener(o Opener) Option {
	return func(r *Reader) { r.opener = o }
}

// WithLogger sets the logger used for inference diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) { r.logger = l }
}

// WithThreshold sets the run length after which inference stops early.
func WithThreshold(n int) Option {
	return func(r *Reader) { r.threshold = n }
}

// WithSampleLines bounds the number of lines read for inference.
func WithSampleLines(n int) Option {
	return func(r *Reader) { r.sampleLines = n }
}

// WithHeaderSample bounds the data lines examined by header detection.
func WithHeaderSample(n int) Option {
	return func(r *Reader) { r.headerSample = n }
}

// Reader is a session over one delimited text source.
type Reader struct {
	name   string
	opener Opener
	logger *slog.Logger

	separator    rune
	collapse     Toggle
	headers      Toggle
	skipLines    int
	skipUntil    string
	comments     string
	stripQuotes  bool
	discard      map[int]bool
	threshold    int
	sampleLines  int
	headerSample int

	state    State
	dialect  Dialect
	header   []string
	preamble string
	votes    Votes

	rc       io.ReadCloser
	br       *bufio.Reader
	splitter *Splitter
	line     int
}

// NewReader returns a Reader for the named source. Nothing is read until a
// dialect-dependent accessor, Open or Next is called.
func NewReader(name string, opts ...Option) *Reader {
	r := &Reader{
		name:         name,
		opener:       FileOpener{Charset: textio.Auto},
		logger:       slog.Default(),
		separator:    SepUninferred,
		comments:     DefaultCommentIndicators,
		stripQuotes:  true,
		discard:      make(map[int]bool),
		threshold:    DefaultThreshold,
		sampleLines:  DefaultSampleLines,
		headerSample: DefaultHeaderSample,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the source name.
func (r *Reader) Name() string { return r.name }

// State returns the current lifecycle state.
func (r *Reader) State() State { return r.state }

// LineNumber returns the number of physical lines consumed by the open
// session.
func (r *Reader) LineNumber() int { return r.line }

// invalidate drops the memoized dialect and any open stream.
func (r *Reader) invalidate() {
	r.closeStream()
	r.state = StateUninitialized
	r.dialect = Dialect{}
	r.header = nil
	r.preamble = ""
	r.votes = Votes{}
}

// SetSeparator fixes the separator.
func (r *Reader) SetSeparator(sep rune) {
	r.separator = sep
	r.invalidate()
}

// SetCollapse fixes collapse mode.
func (r *Reader) SetCollapse(collapse bool) {
	r.collapse = ToggleOf(collapse)
	r.invalidate()
}

// SetHeaders fixes header presence.
func (r *Reader) SetHeaders(headers bool) {
	r.headers = ToggleOf(headers)
	r.invalidate()
}

// SetSkipLines skips the first n physical lines.
func (r *Reader) SetSkipLines(n int) {
	r.skipLines = n
	r.invalidate()
}

// SetSkipUntil skips lines up to and including marker. An empty marker turns
// this off.
func (r *Reader) SetSkipUntil(marker string) {
	r.skipUntil = marker
	r.invalidate()
}

// AddCommentIndicator adds c to the comment indicator set.
func (r *Reader) AddCommentIndicator(c rune) {
	if !strings.ContainsRune(r.comments, c) {
		r.comments += string(c)
	}
	r.invalidate()
}

// RemoveCommentIndicator removes c from the comment indicator set.
func (r *Reader) RemoveCommentIndicator(c rune) {
	r.comments = strings.ReplaceAll(r.comments, string(c), "")
	r.invalidate()
}

// SetStripQuotes sets quote stripping.
func (r *Reader) SetStripQuotes(strip bool) {
	r.stripQuotes = strip
	r.invalidate()
}

// DiscardColumn blanks col in rows read from now on. Indices do not shift.
func (r *Reader) DiscardColumn(col int) {
	r.discard[col] = true
	if r.splitter != nil {
		r.splitter.Discard(col)
	}
}

// KeepColumn reverses DiscardColumn.
func (r *Reader) KeepColumn(col int) {
	delete(r.discard, col)
	if r.splitter != nil {
		r.splitter.Keep(col)
	}
}

func (r *Reader) hints() Hints {
	return Hints{
		Separator:    r.separator,
		Collapse:     r.collapse,
		Headers:      r.headers,
		StripQuotes:  r.stripQuotes,
		Comments:     r.comments,
		Threshold:    r.threshold,
		HeaderSample: r.headerSample,
	}
}

func (r *Reader) discarded() []int {
	cols := make([]int, 0, len(r.discard))
	for c := range r.discard {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	return cols
}

// readLine reads one physical line without its terminator. A final line
// without a newline is returned with a nil error; io.EOF follows.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		if line == "" {
			return "", io.EOF
		}
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// skipLeading consumes the configured skip region and returns its lines.
func (r *Reader) skipLeading(br *bufio.Reader) ([]string, error) {
	var skipped []string
	for i := 0; i < r.skipLines; i++ {
		line, err := readLine(br)
		if err == io.EOF {
			return skipped, nil
		}
		if err != nil {
			return nil, err
		}
		skipped = append(skipped, line)
	}

	if r.skipUntil == "" {
		return skipped, nil
	}
	marker := strings.TrimSpace(r.skipUntil)
	for {
		line, err := readLine(br)
		if err == io.EOF {
			return nil, fmt.Errorf("%w: %q", ErrMarkerNotFound, r.skipUntil)
		}
		if err != nil {
			return nil, err
		}
		skipped = append(skipped, line)
		if strings.TrimSpace(line) == marker {
			return skipped, nil
		}
	}
}

// init runs dialect inference once per configuration.
func (r *Reader) init() error {
	if r.state != StateUninitialized {
		return nil
	}

	rc, err := r.opener.Open(r.name)
	if err != nil {
		return err
	}
	defer rc.Close()
	br := bufio.NewReader(rc)

	skipped, err := r.skipLeading(br)
	if err != nil {
		return fmt.Errorf("%s: %w", r.name, err)
	}

	limit := r.sampleLines
	if limit <= 0 {
		limit = DefaultSampleLines
	}
	sample := make([]string, 0, 64)
	for len(sample) < limit {
		line, err := readLine(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", r.name, err)
		}
		sample = append(sample, line)
	}

	inf, err := InferDialect(sample, r.hints())
	if err != nil {
		return fmt.Errorf("%s: %w", r.name, err)
	}

	start := inf.Dialect.ContentStart
	var pre strings.Builder
	for _, line := range skipped {
		pre.WriteString(line)
		pre.WriteByte('\n')
	}
	for _, line := range sample[:start] {
		pre.WriteString(line)
		pre.WriteByte('\n')
	}

	r.dialect = inf.Dialect
	r.dialect.SkipLines = len(skipped)
	r.dialect.ContentStart = len(skipped) + start
	r.header = inf.Header
	r.preamble = pre.String()
	r.votes = inf.Votes
	r.state = StateInitialized

	r.logger.Debug("dialect inferred",
		"source", r.name,
		"separator", SeparatorName(r.dialect.Separator),
		"collapse", r.dialect.Collapse,
		"headers", r.dialect.Headers,
		"columns", r.dialect.Columns,
		"content_start", r.dialect.ContentStart,
		"run", inf.Run,
		"votes_match", inf.Votes.Match,
		"votes_differ", inf.Votes.Differ,
	)
	return nil
}

// Open positions a fresh stream at the first data row. An already open
// session is rewound.
func (r *Reader) Open() error {
	if err := r.init(); err != nil {
		return err
	}
	r.closeStream()

	rc, err := r.opener.Open(r.name)
	if err != nil {
		return err
	}
	br := bufio.NewReader(rc)

	n := r.dialect.DataStart()
	for i := 0; i < n; i++ {
		if _, err := readLine(br); err != nil {
			if err == io.EOF {
				break
			}
			rc.Close()
			return fmt.Errorf("read %s: %w", r.name, err)
		}
	}

	r.rc = rc
	r.br = br
	r.line = n
	r.splitter = NewSplitter(r.dialect, r.discarded()...)
	r.state = StateOpened
	return nil
}

// Next returns the next data row. Blank and comment lines are skipped. At
// the end of data it closes the session and returns io.EOF; a later call
// opens a new session from the first row.
func (r *Reader) Next() (Row, error) {
	if r.state != StateOpened && r.state != StateIterating {
		if err := r.Open(); err != nil {
			return nil, err
		}
	}
	r.state = StateIterating

	for {
		line, err := readLine(r.br)
		if err == io.EOF {
			r.Close()
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("read %s line %d: %w", r.name, r.line+1, err)
		}
		r.line++
		if strings.TrimSpace(line) == "" || isComment(line, r.comments, r.dialect.Separator) {
			continue
		}
		return r.splitter.Split(line), nil
	}
}

// ReadAll reads every data row into a Table and closes the session.
func (r *Reader) ReadAll() (*Table, error) {
	if err := r.Open(); err != nil {
		return nil, err
	}
	t := &Table{
		Dialect:  r.dialect,
		Header:   r.copyHeader(),
		Preamble: r.preamble,
	}
	for {
		row, err := r.Next()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			r.Close()
			return nil, err
		}
		t.Rows = append(t.Rows, row)
	}
}

func (r *Reader) closeStream() error {
	var err error
	if r.rc != nil {
		err = r.rc.Close()
	}
	r.rc = nil
	r.br = nil
	r.splitter = nil
	r.line = 0
	return err
}

// Close releases the underlying stream. The inferred dialect is kept.
func (r *Reader) Close() error {
	err := r.closeStream()
	if r.state != StateUninitialized {
		r.state = StateClosed
	}
	return err
}

// Dialect returns the inferred dialect, running inference if needed.
func (r *Reader) Dialect() (Dialect, error) {
	if err := r.init(); err != nil {
		return Dialect{}, err
	}
	return r.dialect, nil
}

// Separator returns the inferred separator.
func (r *Reader) Separator() (rune, error) {
	d, err := r.Dialect()
	if err != nil {
		return SepUninferred, err
	}
	return d.Separator, nil
}

// Collapse returns the inferred collapse mode.
func (r *Reader) Collapse() (bool, error) {
	d, err := r.Dialect()
	return d.Collapse, err
}

// HasHeaders reports whether the source has a header row.
func (r *Reader) HasHeaders() (bool, error) {
	d, err := r.Dialect()
	return d.Headers, err
}

// Header returns the column names, or nil when the source has no header row.
func (r *Reader) Header() ([]string, error) {
	if err := r.init(); err != nil {
		return nil, err
	}
	return r.copyHeader(), nil
}

func (r *Reader) copyHeader() []string {
	if r.header == nil {
		return nil
	}
	return append([]string(nil), r.header...)
}

// ColumnCount returns the number of columns.
func (r *Reader) ColumnCount() (int, error) {
	if err := r.init(); err != nil {
		return 0, err
	}
	return max(r.dialect.Columns, len(r.header)), nil
}

// ContentStartLine returns the zero-based physical line where tabular content
// begins.
func (r *Reader) ContentStartLine() (int, error) {
	d, err := r.Dialect()
	return d.ContentStart, err
}

// Preamble returns the text of every line before the content start, each
// line terminated by a newline.
func (r *Reader) Preamble() (string, error) {
	if err := r.init(); err != nil {
		return "", err
	}
	return r.preamble, nil
}

// Votes returns the header detection tally of the last inference.
func (r *Reader) Votes() (Votes, error) {
	if err := r.init(); err != nil {
		return Votes{}, err
	}
	return r.votes, nil
}
