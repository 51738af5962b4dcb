package delim

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/JonMunkholm/csvsniff/internal/textio"
)

// Opener resolves a source name to a fresh character stream. A reader calls
// Open again whenever it rewinds, so each call must start at the beginning.
type Opener interface {
	Open(name string) (io.ReadCloser, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(name string) (io.ReadCloser, error)

// Open calls f(name).
func (f OpenerFunc) Open(name string) (io.ReadCloser, error) {
	return f(name)
}

// FileOpener opens paths on the local file system and decodes them to UTF-8.
type FileOpener struct {
	Charset textio.Charset
}

// Open implements Opener.
func (o FileOpener) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoSource, name)
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	dec, err := textio.NewDecoder(f, o.Charset)
	if err != nil {
		f.Close()
		return nil, err
	}
	return readCloser{Reader: dec, Closer: f}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// StringOpener serves in-memory sources keyed by name.
type StringOpener map[string]string

// Open implements Opener.
func (o StringOpener) Open(name string) (io.ReadCloser, error) {
	s, ok := o[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSource, name)
	}
	return io.NopCloser(strings.NewReader(s)), nil
}
