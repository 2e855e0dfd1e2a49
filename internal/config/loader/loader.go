// Package loader reads configuration files into generic maps.
//
// The format is picked by extension: .toml is parsed with go-toml, .yaml
// and .yml with yaml.v3. A missing file is not an error; Read returns a nil
// map so the caller can move on to the next candidate.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat is returned for a path whose extension names no
// supported format.
var ErrUnknownFormat = errors.New("unknown config format")

// FileSystem is the read access the loader needs. fstest.MapFS satisfies it.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
}

type osFS struct{}

func (osFS) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

// DefaultFS returns the OS file system.
func DefaultFS() FileSystem {
	return osFS{}
}

// Format is a configuration file syntax.
type Format int

const (
	FormatUnknown Format = iota
	FormatTOML
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FormatOf returns the format named by path's extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}

// Read loads the file at path. It returns nil, nil when the file does not
// exist.
func Read(fsys FileSystem, path string) (map[string]any, error) {
	format := FormatOf(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(format, path, data)
}

// Parse decodes data in the given format. source names the data in errors.
// Empty input yields an empty, non-nil map.
func Parse(format Format, source string, data []byte) (map[string]any, error) {
	var (
		values map[string]any
		err    error
	)
	switch format {
	case FormatTOML:
		values, err = parseTOML(source, data)
	case FormatYAML:
		values, err = parseYAML(source, data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, source)
	}
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = make(map[string]any)
	}
	return values, nil
}

// ParseError reports malformed configuration. Line and Column are zero
// when the parser gave no position.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	default:
		return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
