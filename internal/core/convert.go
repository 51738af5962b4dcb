package core

// convert.go reads an upload with the inferred dialect and rewrites it in a
// well-defined output format.

import (
	"context"
	"io"
	"time"

	"github.com/JonMunkholm/csvsniff/internal/delim"
	"github.com/JonMunkholm/csvsniff/internal/export"
	"github.com/JonMunkholm/csvsniff/internal/logging"
)

// ConvertResult summarizes a conversion.
type ConvertResult struct {
	FileName string
	Format   export.Format
	Dialect  DialectInfo
	Rows     int
}

// Convert reads the upload and writes it to w in format f. Nothing is
// written unless the whole upload was read successfully.
func (s *Service) Convert(ctx context.Context, w io.Writer, up Upload, o ReadOptions, f export.Format) (*ConvertResult, error) {
	start := time.Now()
	logger := logging.WithFields(ctx, "file", up.Name, "format", string(f))

	if _, err := export.ParseFormat(string(f)); err != nil {
		return nil, err
	}

	var result *ConvertResult
	err := s.withUpload(ctx, up, o, func(r *delim.Reader, _ int64) error {
		t, err := r.ReadAll()
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := export.Write(w, t, f); err != nil {
			return err
		}
		result = &ConvertResult{
			FileName: up.Name,
			Format:   f,
			Dialect:  NewDialectInfo(t.Dialect),
			Rows:     t.Len(),
		}
		return nil
	})
	if err != nil {
		logger.Warn("convert failed", "error", err)
		return nil, err
	}

	logger.Info("upload converted",
		"rows", result.Rows,
		"separator", result.Dialect.Separator,
		"duration_ms", elapsedMs(start),
	)
	return result, nil
}
