package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/csvsniff/internal/core"
	"github.com/JonMunkholm/csvsniff/internal/export"
)

// handleInspect infers the dialect of an uploaded file and returns the
// header, preamble and first rows as JSON.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, result)
}

// handleConvert rewrites an uploaded file in the format named by the
// "format" field and returns it as an attachment.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	up, cleanup, err := s.parseUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer cleanup()

	format, err := export.ParseFormat(r.FormValue("format"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	opts, err := parseReadOptions(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	dw := newDownloadWriter(w, up.Name, format)
	if _, err := s.service.Convert(r.Context(), dw, up, opts, format); err != nil {
		if dw.started {
			// Headers are gone; the client sees a truncated body.
			return
		}
		s.respondError(w, r, err)
	}
}


// handleImport loads an uploaded file into the table named in the path.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	if err := core.ValidateTableName(table); err != nil {
		s.respondError(w, r, err)
		return
	}
	if !s.service.ImportsEnabled() {
		s.respondError(w, r, core.ErrNoDatabase)
		return
	}

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
	replace, err := parseBool(r, "replace")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.service.Import(r.Context(), up, opts, table, replace)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSONStatus(w, http.StatusCreated, result)
}

// handleProfiles lists the configured dialect profiles.
func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string][]string{"profiles": s.service.Profiles()})
}

// handleHealth reports liveness and import capacity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":  "ok",
		"imports": s.service.ImportsEnabled(),
		"limiter": s.service.LimiterStatus(),
	})
}
