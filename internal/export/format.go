// Package export converts materialized delimited tables into other formats.
package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/csvsniff/internal/delim"
)

// Format is an output format name.
type Format string

const (
	JSON    Format = "json"
	NDJSON  Format = "ndjson"
	CSV     Format = "csv"
	TSV     Format = "tsv"
	Parquet Format = "parquet"
)

// ErrUnknownFormat is returned for a format name ParseFormat does not know.
var ErrUnknownFormat = errors.New("unknown export format")

// Formats lists the supported formats.
var Formats = []Format{JSON, NDJSON, CSV, TSV, Parquet}

// ParseFormat normalizes a format name. The empty string means JSON.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return JSON, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case JSON:
		return "application/json"
	case NDJSON:
		return "application/x-ndjson"
	case CSV:
		return "text/csv; charset=utf-8"
	case TSV:
		return "text/tab-separated-values; charset=utf-8"
	case Parquet:
		return "application/vnd.apache.parquet"
	}
	return "application/octet-stream"
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	if f == NDJSON {
		return ".jsonl"
	}
	return "." + string(f)
}

// Write encodes t to w in format f.
func Write(w io.Writer, t *delim.Table, f Format) error {
	switch f {
	case JSON:
		return WriteJSON(w, t)
	case NDJSON:
		return WriteJSON(w, t, WithNewlineDelimited(true))
	case CSV:
		return WriteDelimited(w, t, ',')
	case TSV:
		return WriteDelimited(w, t, '\t')
	case Parquet:
		return WriteParquet(w, t)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// UniqueNames returns the table's column names with duplicates suffixed
// _2, _3 and so on.
func UniqueNames(t *delim.Table) []string {
	names := t.ColumnNames()
	seen := make(map[string]int, len(names))
	for i, name := range names {
		seen[name]++
		if seen[name] == 1 {
			continue
		}
		for n := seen[name]; ; n++ {
			candidate := name + "_" + strconv.Itoa(n)
			if seen[candidate] == 0 {
				seen[candidate] = 1
				names[i] = candidate
				break
			}
		}
	}
	return names
}

// WriteDelimited writes t as delimited text with sep. The preamble is not
// written.
func WriteDelimited(w io.Writer, t *delim.Table, sep rune) error {
	dw := delim.NewWriter(w, sep)
	if len(t.Header) > 0 {
		if err := dw.WriteHeader(t.Header); err != nil {
			return err
		}
	}
	for _, row := range t.Rows {
		if err := dw.Write(row); err != nil {
			return err
		}
	}
	return dw.Flush()
}
