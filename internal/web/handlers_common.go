package web

// This file contains request parsing shared by the page and API handlers.

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/csvsniff/internal/core"
	"github.com/JonMunkholm/csvsniff/internal/delim"
	"github.com/JonMunkholm/csvsniff/internal/export"
	"github.com/JonMunkholm/csvsniff/internal/textio"
)

const (
	// formMemory is how much of a multipart form is held in memory before
	// the rest spills to disk.
	formMemory = 32 << 20

	// formOverhead allows for multipart boundaries and the other fields on
	// top of the file itself.
	formOverhead = 1 << 20
)

// parseUpload reads the multipart form and returns the "file" part. The
// returned cleanup closes the file and removes any temporary form files.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) (core.Upload, func(), error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+formOverhead)

	if err := r.ParseMultipartForm(formMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return core.Upload{}, nil, fmt.Errorf("file too large: %w", textio.ErrTooLarge)
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return core.Upload{}, nil, core.ErrNoFile
		}
		return core.Upload{}, nil, fmt.Errorf("%w: form: %v", core.ErrInvalidOption, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		r.MultipartForm.RemoveAll()
		return core.Upload{}, nil, core.ErrNoFile
	}

	cleanup := func() {
		file.Close()
		r.MultipartForm.RemoveAll()
	}
	return core.Upload{Name: header.Filename, Body: file, Size: header.Size}, cleanup, nil
}

// parseReadOptions reads reader settings from the form or query string.
//
// Recognized fields: profile, separator, collapse, headers, stripQuotes
// (yes/no/auto), skip, skipUntil, comments ("none" disables comments),
// discard (comma-separated column indices) and encoding.
func parseReadOptions(r *http.Request) (core.ReadOptions, error) {
	o := core.ReadOptions{
		Profile:   strings.TrimSpace(r.FormValue("profile")),
		Separator: r.FormValue("separator"),
		SkipUntil: r.FormValue("skipUntil"),
		Encoding:  strings.TrimSpace(r.FormValue("encoding")),
	}

	var err error
	if o.Collapse, err = parseToggle(r, "collapse"); err != nil {
		return o, err
	}
	if o.Headers, err = parseToggle(r, "headers"); err != nil {
		return o, err
	}
	if o.StripQuotes, err = parseToggle(r, "stripQuotes"); err != nil {
		return o, err
	}

	if v := strings.TrimSpace(r.FormValue("skip")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return o, fmt.Errorf("%w: skip %q", core.ErrInvalidOption, v)
		}
		o.SkipLines = n
	}

	switch v := r.FormValue("comments"); v {
	case "":
	case "none":
		none := ""
		o.Comments = &none
	default:
		o.Comments = &v
	}

	if v := strings.TrimSpace(r.FormValue("discard")); v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil {
				return o, fmt.Errorf("%w: discard %q", core.ErrInvalidOption, part)
			}
			o.Discard = append(o.Discard, n)
		}
	}

	return o, nil
}

func parseToggle(r *http.Request, name string) (delim.Toggle, error) {
	v := r.FormValue(name)
	t, err := delim.ParseToggle(v)
	if err != nil {
		return delim.Auto, fmt.Errorf("%w: %s %q", core.ErrInvalidOption, name, v)
	}
	return t, nil
}

// parseBool parses an optional boolean form field.
func parseBool(r *http.Request, name string) (bool, error) {
	v := strings.TrimSpace(r.FormValue(name))
	if v == "" {
		return false, nil
	}
	t, err := delim.ParseToggle(v)
	if err != nil || !t.Fixed() {
		return false, fmt.Errorf("%w: %s %q", core.ErrInvalidOption, name, v)
	}
	return t.Bool(), nil
}

// downloadWriter sets attachment headers on the first write, so a failure
// before any output can still be reported as an error response.
type downloadWriter struct {
	w        http.ResponseWriter
	format   export.Format
	filename string
	started  bool
}

func newDownloadWriter(w http.ResponseWriter, upload string, f export.Format) *downloadWriter {
	return &downloadWriter{w: w, format: f, filename: downloadName(upload, f)}
}

func (d *downloadWriter) Write(p []byte) (int, error) {
	if !d.started {
		d.started = true
		h := d.w.Header()
		h.Set("Content-Type", d.format.ContentType())
		h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": d.filename}))
		d.w.WriteHeader(http.StatusOK)
	}
	return d.w.Write(p)
}

// downloadName replaces the extension of the uploaded file name with the
// one for f.
func downloadName(upload string, f export.Format) string {
	base := filepath.Base(strings.ReplaceAll(upload, `\`, "/"))
	if base == "." || base == "/" || base == "" {
		base = "export"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + f.Extension()
}
