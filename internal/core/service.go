package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/csvsniff/internal/config"
	"github.com/JonMunkholm/csvsniff/internal/delim"
	"github.com/JonMunkholm/csvsniff/internal/textio"
)

// Service provides the inspect, convert and import operations.
// It is safe for concurrent use; every request gets its own Reader.
type Service struct {
	cfg      *config.Config
	profiles config.Profiles
	db       Database // nil when imports are disabled
	limiter  *ImportLimiter
	spool    *Spool
}

// NewService creates a Service. db may be nil, which disables Import.
func NewService(cfg *config.Config, profiles config.Profiles, db Database) (*Service, error) {
	spool, err := NewSpool(cfg.Spool.Dir)
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = config.Profiles{}
	}

	return &Service{
		cfg:      cfg,
		profiles: profiles,
		db:       db,
		limiter:  NewImportLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		spool:    spool,
	}, nil
}

// Profiles returns the configured profile names in sorted order.
func (s *Service) Profiles() []string {
	return s.profiles.Names()
}

// ImportsEnabled reports whether a database is configured.
func (s *Service) ImportsEnabled() bool {
	return s.db != nil
}

// LimiterStatus returns the import limiter state.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// Shutdown waits for running imports to finish or ctx to end.
func (s *Service) Shutdown(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// spoolUpload writes the upload body to the spool, enforcing the size limit.
func (s *Service) spoolUpload(up Upload) (string, int64, error) {
	if up.Body == nil {
		return "", 0, ErrNoFile
	}
	if up.Size > s.cfg.Upload.MaxFileSize {
		return "", 0, fmt.Errorf("file too large: %d bytes exceeds limit of %d: %w",
			up.Size, s.cfg.Upload.MaxFileSize, textio.ErrTooLarge)
	}
	return s.spool.Save(up.Body, s.cfg.Upload.MaxFileSize)
}

// withUpload spools up, runs fn with a reader over it and removes the spool
// file afterwards.
func (s *Service) withUpload(ctx context.Context, up Upload, o ReadOptions, fn func(r *delim.Reader, size int64) error) error {
	path, size, err := s.spoolUpload(up)
	if err != nil {
		return err
	}
	defer s.spool.Remove(path)

	opts, err := s.readerOptions(ctx, o)
	if err != nil {
		return err
	}
	r := delim.NewReader(path, opts...)
	defer r.Close()

	return fn(r, size)
}

// elapsedMs converts a duration since start to milliseconds for results.
func elapsedMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
