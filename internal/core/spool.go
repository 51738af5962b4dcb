package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/csvsniff/internal/textio"
)

// spoolSuffix marks files owned by the spool so sweeping never touches
// anything else in a shared directory.
const spoolSuffix = ".upload"

// Spool stores uploads on disk while they are read. The reader opens its
// source more than once (inference, then data), so request bodies cannot be
// read in a single pass.
type Spool struct {
	dir string
}

// NewSpool creates the spool directory. An empty dir uses a subdirectory of
// the OS temp dir.
func NewSpool(dir string) (*Spool, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "csvsniff-spool")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}
	return &Spool{dir: dir}, nil
}

// Dir returns the spool directory.
func (s *Spool) Dir() string { return s.dir }

// Save copies r to a new spool file and returns its path and size. Reading
// more than limit bytes (when positive) fails with textio.ErrTooLarge, and
// an empty body with ErrEmptyFile. The file is removed on failure.
func (s *Spool) Save(r io.Reader, limit int64) (string, int64, error) {
	f, err := os.CreateTemp(s.dir, uuid.NewString()+"-*"+spoolSuffix)
	if err != nil {
		return "", 0, fmt.Errorf("create spool file: %w", err)
	}
	path := f.Name()

	cr := textio.NewCountingReader(r, 0)
	cr.Limit = limit
	_, err = io.Copy(f, cr)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && cr.BytesRead == 0 {
		err = ErrEmptyFile
	}
	if err != nil {
		os.Remove(path)
		if errors.Is(err, textio.ErrTooLarge) {
			return "", 0, fmt.Errorf("file too large: %w", err)
		}
		if errors.Is(err, ErrEmptyFile) {
			return "", 0, err
		}
		return "", 0, fmt.Errorf("spool upload: %w", err)
	}
	return path, cr.BytesRead, nil
}

// Remove deletes a spool file. Missing files are ignored.
func (s *Spool) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Sweep removes spool files last modified before now minus maxAge and
// returns how many were removed.
func (s *Spool) Sweep(maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read spool dir: %w", err)
	}

	cutoff := now.Add(-maxAge)
	removed := 0
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), spoolSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue // removed concurrently
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := s.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
