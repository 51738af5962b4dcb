package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/JonMunkholm/csvsniff/internal/delim"
	"github.com/JonMunkholm/csvsniff/internal/textio"
)

// Profile is a named set of dialect settings for a recurring file source.
// Unset pointer fields leave the setting to inference.
//
//	[profile.bank]
//	separator = "semicolon"
//	skip_until = "Booking date;Amount"
//	headers = false
type Profile struct {
	Separator   string  `toml:"separator"`
	Collapse    *bool   `toml:"collapse"`
	Headers     *bool   `toml:"headers"`
	SkipLines   int     `toml:"skip_lines"`
	SkipUntil   string  `toml:"skip_until"`
	Comments    *string `toml:"comments"`
	StripQuotes *bool   `toml:"strip_quotes"`
	Encoding    string  `toml:"encoding"`
	Discard     []int   `toml:"discard"`
}

// Profiles maps profile names to settings.
type Profiles map[string]Profile

// Names returns the profile names in sorted order.
func (p Profiles) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProfileError reports a profile file that could not be parsed or validated.
type ProfileError struct {
	Path    string
	Profile string
	Message string
	Err     error
}

func (e *ProfileError) Error() string {
	if e.Profile != "" {
		return fmt.Sprintf("%s: profile %q: %s", e.Path, e.Profile, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *ProfileError) Unwrap() error {
	return e.Err
}

type profileFile struct {
	Profile map[string]Profile `toml:"profile"`
}

// LoadProfiles reads a TOML profile file. An empty path or a missing file
// yields no profiles.
func LoadProfiles(path string) (Profiles, error) {
	if path == "" {
		return Profiles{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Profiles{}, nil
		}
		return nil, fmt.Errorf("reading profiles file %s: %w", path, err)
	}
	return ParseProfiles(path, bytes.NewReader(data))
}

// ParseProfiles decodes and validates profiles from r. source names the
// input in errors.
func ParseProfiles(source string, r io.Reader) (Profiles, error) {
	var f profileFile
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, &ProfileError{Path: source, Message: err.Error(), Err: err}
	}

	profiles := make(Profiles, len(f.Profile))
	for name, p := range f.Profile {
		if err := p.validate(); err != nil {
			return nil, &ProfileError{Path: source, Profile: name, Message: err.Error(), Err: err}
		}
		profiles[name] = p
	}
	return profiles, nil
}

func (p Profile) validate() error {
	if _, err := delim.ParseSeparator(p.Separator); err != nil {
		return err
	}
	if _, err := textio.ParseCharset(p.Encoding); err != nil {
		return err
	}
	if p.SkipLines < 0 {
		return fmt.Errorf("skip_lines must be non-negative")
	}
	for _, col := range p.Discard {
		if col < 0 {
			return fmt.Errorf("discard column %d must be non-negative", col)
		}
	}
	return nil
}
