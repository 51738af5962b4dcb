package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/csvsniff/internal/delim"
	"github.com/JonMunkholm/csvsniff/internal/logging"
	"github.com/JonMunkholm/csvsniff/internal/textio"
)

// ReadOptions are per-request reader settings. Each unset field falls back
// to the named profile, then to the configured defaults; whatever is still
// unset is inferred.
type ReadOptions struct {
	Profile     string
	Separator   string // a name accepted by delim.ParseSeparator
	Collapse    delim.Toggle
	Headers     delim.Toggle
	SkipLines   int
	SkipUntil   string
	Comments    *string
	StripQuotes delim.Toggle
	Discard     []int
	Encoding    string
}

// readerSettings is ReadOptions after merging.
type readerSettings struct {
	separator   string
	collapse    delim.Toggle
	headers     delim.Toggle
	skipLines   int
	skipUntil   string
	comments    string
	stripQuotes bool
	discard     []int
	encoding    string
}

// resolve merges configured defaults, the profile and o, in that order.
func (s *Service) resolve(o ReadOptions) (readerSettings, error) {
	rc := s.cfg.Reader
	st := readerSettings{
		comments:    rc.CommentIndicators,
		stripQuotes: rc.StripQuotes,
		encoding:    rc.Encoding,
	}

	if o.Profile != "" {
		p, ok := s.profiles[o.Profile]
		if !ok {
			return st, fmt.Errorf("%w: %q", ErrUnknownProfile, o.Profile)
		}
		st.separator = p.Separator
		if p.Collapse != nil {
			st.collapse = delim.ToggleOf(*p.Collapse)
		}
		if p.Headers != nil {
			st.headers = delim.ToggleOf(*p.Headers)
		}
		st.skipLines = p.SkipLines
		st.skipUntil = p.SkipUntil
		if p.Comments != nil {
			st.comments = *p.Comments
		}
		if p.StripQuotes != nil {
			st.stripQuotes = *p.StripQuotes
		}
		if p.Encoding != "" {
			st.encoding = p.Encoding
		}
		st.discard = append(st.discard, p.Discard...)
	}

	if o.Separator != "" {
		st.separator = o.Separator
	}
	if o.Collapse.Fixed() {
		st.collapse = o.Collapse
	}
	if o.Headers.Fixed() {
		st.headers = o.Headers
	}
	if o.SkipLines > 0 {
		st.skipLines = o.SkipLines
	}
	if o.SkipUntil != "" {
		st.skipUntil = o.SkipUntil
	}
	if o.Comments != nil {
		st.comments = *o.Comments
	}
	if o.StripQuotes.Fixed() {
		st.stripQuotes = o.StripQuotes.Bool()
	}
	if o.Encoding != "" {
		st.encoding = o.Encoding
	}
	st.discard = append(st.discard, o.Discard...)

	for _, col := range st.discard {
		if col < 0 {
			return st, fmt.Errorf("discard: %w: %d", delim.ErrInvalidColumn, col)
		}
	}
	return st, nil
}

// readerOptions turns request options into delim options.
func (s *Service) readerOptions(ctx context.Context, o ReadOptions) ([]delim.Option, error) {
	st, err := s.resolve(o)
	if err != nil {
		return nil, err
	}

	sep, err := delim.ParseSeparator(st.separator)
	if err != nil {
		return nil, err
	}
	cs, err := textio.ParseCharset(st.encoding)
	if err != nil {
		return nil, err
	}

	rc := s.cfg.Reader
	return []delim.Option{
		delim.WithSeparator(sep),
		delim.WithCollapse(st.collapse),
		delim.WithHeaders(st.headers),
		delim.WithSkipLines(st.skipLines),
		delim.WithSkipUntil(st.skipUntil),
		delim.WithCommentIndicators(st.comments),
		delim.WithStripQuotes(st.stripQuotes),
		delim.WithDiscardColumns(st.discard...),
		delim.WithThreshold(rc.Threshold),
		delim.WithSampleLines(rc.SampleLines),
		delim.WithHeaderSample(rc.HeaderSample),
		delim.WithOpener(delim.FileOpener{Charset: cs}),
		delim.WithLogger(logging.FromContext(ctx)),
	}, nil
}
