package core

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/csvsniff/internal/delim"
	"github.com/JonMunkholm/csvsniff/internal/logging"
)

// Inspect infers the dialect of an upload and returns it with the header,
// preamble, a preview of the first rows and the total row count.
func (s *Service) Inspect(ctx context.Context, up Upload, o ReadOptions) (*InspectResult, error) {
	start := time.Now()
	id := uuid.NewString()
	logger := logging.WithFields(ctx, "inspect_id", id, "file", up.Name)

	result := &InspectResult{
		ID:       id,
		FileName: up.Name,
		Profile:  o.Profile,
	}

	err := s.withUpload(ctx, up, o, func(r *delim.Reader, size int64) error {
		d, err := r.Dialect()
		if err != nil {
			return err
		}
		header, _ := r.Header()
		preamble, _ := r.Preamble()
		votes, _ := r.Votes()
		width, _ := r.ColumnCount()

		limit := s.cfg.Upload.PreviewRows
		preview := make([][]string, 0, limit)
		total := 0
		for {
			if total%contextCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			row, err := r.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
			if len(preview) < limit {
				preview = append(preview, row.Strings())
			}
			width = max(width, len(row))
			total++
		}

		t := &delim.Table{Header: header}
		columns := make([]string, width)
		for i := range columns {
			columns[i] = t.ColumnName(i)
		}

		result.Size = size
		result.Dialect = NewDialectInfo(d)
		result.Header = header
		result.Columns = columns
		result.Preamble = preamble
		result.Preview = preview
		result.TotalRows = total
		result.HeaderVotes = votes
		return nil
	})
	if err != nil {
		logger.Warn("inspect failed", "error", err)
		return nil, err
	}

	result.DurationMs = elapsedMs(start)
	logger.Info("upload inspected",
		"separator", result.Dialect.Separator,
		"headers", result.Dialect.Headers,
		"columns", len(result.Columns),
		"rows", result.TotalRows,
		"duration_ms", result.DurationMs,
	)
	return result, nil
}
