package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/csvsniff/internal/delim"
	"github.com/JonMunkholm/csvsniff/internal/logging"
)

// Import loads an upload into table, creating it when missing. With replace
// set the existing rows are removed first. The load runs in one
// transaction and holds an import slot for its duration.
func (s *Service) Import(ctx context.Context, up Upload, o ReadOptions, table string, replace bool) (*ImportResult, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	if err := ValidateTableName(table); err != nil {
		return nil, err
	}

	start := time.Now()
	importID := uuid.NewString()
	logger := logging.WithFields(ctx,
		"import_id", importID,
		"table", table,
		"file", up.Name,
		"client_ip", ClientIPFromContext(ctx),
	)

	if err := s.limiter.Acquire(ctx); err != nil {
		logger.Warn("import rejected", "error", err)
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Upload.Timeout)
	defer cancel()

	logger.Info("import started", "replace", replace)

	var result *ImportResult
	err := s.withUpload(ctx, up, o, func(r *delim.Reader, _ int64) error {
		d, err := r.Dialect()
		if err != nil {
			return err
		}

		var loaded *LoadResult
		err = pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
			var err error
			loaded, err = Load(ctx, tx, r, table, replace)
			return err
		})
		if err != nil {
			return err
		}

		result = &ImportResult{
			ImportID:  importID,
			Table:     table,
			FileName:  up.Name,
			Columns:   loaded.Columns,
			Inserted:  loaded.Inserted,
			Truncated: loaded.Truncated,
			Replaced:  replace,
			Dialect:   NewDialectInfo(d),
		}
		return nil
	})
	if err != nil {
		logger.Error("import failed", "error", err, "duration_ms", elapsedMs(start))
		return nil, fmt.Errorf("import into %s: %w", table, err)
	}

	result.Duration = time.Since(start)
	result.DurationMs = result.Duration.Milliseconds()
	logger.Info("import completed",
		"rows", result.Inserted,
		"truncated", result.Truncated,
		"duration_ms", result.DurationMs,
	)
	return result, nil
}
