package web

import (
	"net/http"

	"github.com/JonMunkholm/csvsniff/internal/core"
	"github.com/JonMunkholm/csvsniff/internal/export"
	"github.com/JonMunkholm/csvsniff/internal/web/templates"
)

// handleIndex renders the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	formats := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		formats[i] = string(f)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Index(templates.IndexParams{
		Profiles:       s.service.Profiles(),
		Formats:        formats,
		ImportsEnabled: s.service.ImportsEnabled(),
		MaxFileSize:    s.cfg.Upload.MaxFileSize,
	}).Render(r.Context(), w)
}

// handleInspectPage inspects the form upload and renders the result.
func (s *Server) handleInspectPage(w http.ResponseWriter, r *http.Request) {
	up, cleanup, err := s.parseUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer cleanup()

	opts, err := parseReadOptions(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.service.Inspect(r.Context(), up, opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.InspectPage(inspectParams(result)).Render(r.Context(), w)
}

func inspectParams(res *core.InspectResult) templates.InspectParams {
	return templates.InspectParams{
		FileName:   res.FileName,
		Size:       res.Size,
		Profile:    res.Profile,
		Separator:  res.Dialect.Separator,
		Collapse:   res.Dialect.Collapse,
		Headers:    res.Dialect.Headers,
		SkipLines:  res.Dialect.SkipLines,
		Columns:    res.Columns,
		Preamble:   res.Preamble,
		Preview:    res.Preview,
		TotalRows:  res.TotalRows,
		DurationMs: res.DurationMs,
	}
}
