package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/quill/internal/config/loader"
)

// AppName names the configuration directory.
const AppName = "quill"

// DefaultTheme is used when no theme is configured.
const DefaultTheme = "solarized-dark"

// Themes lists the accepted theme names in display order.
var Themes = []string{
	"solarized-dark",
	"base16-mocha",
	"base16-ocean",
	"base16-eighties",
	"inspired-github",
}

// IsTheme reports whether name is a known theme.
func IsTheme(name string) bool {
	return contains(Themes, name)
}

// NextTheme returns the theme after name in Themes, wrapping around.
// Unknown names yield the first theme.
func NextTheme(name string) string {
	for i, t := range Themes {
		if t == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// logLevels are the accepted logging.level values.
var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// Config is the resolved application configuration.
type Config struct {
	Editor  EditorConfig
	Logging LoggingConfig
	Hooks   HooksConfig

	// Path is the file the settings came from, or "" for defaults only.
	Path string
}

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	fs    loader.FileSystem
	paths []string
	home  string
}

// WithFileSystem reads configuration files through fsys.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(o *loadOptions) {
		o.fs = fsys
	}
}

// WithSearchPaths replaces the default search paths. The first existing
// file wins.
func WithSearchPaths(paths ...string) Option {
	return func(o *loadOptions) {
		o.paths = paths
	}
}

// WithHomeDir sets the directory "~/" expands to.
func WithHomeDir(dir string) Option {
	return func(o *loadOptions) {
		o.home = dir
	}
}

// Default returns the built-in configuration with "~/" expanded.
func Default() *Config {
	cfg, err := decode(defaultConfig())
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	home, _ := os.UserHomeDir()
	cfg.expandHome(home)
	return cfg
}

// Load resolves the configuration from the first existing file on the
// search path merged over the defaults.
func Load(opts ...Option) (*Config, error) {
	o := loadOptions{
		fs:    loader.DefaultFS(),
		paths: DefaultPaths(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.home == "" {
		o.home, _ = os.UserHomeDir()
	}

	merged := defaultConfig()
	source := ""
	for _, path := range o.paths {
		if loader.FormatOf(path) == loader.FormatUnknown {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
		}
		values, err := loader.Read(o.fs, path)
		if err != nil {
			return nil, err
		}
		if values == nil {
			continue
		}
		merged = loader.DeepMerge(merged, values)
		source = path
		break
	}

	cfg, err := decode(merged)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		if source != "" {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		return nil, err
	}

	cfg.Path = source
	cfg.expandHome(o.home)
	return cfg, nil
}

// DefaultPaths returns the search path for the configuration file.
func DefaultPaths() []string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	dir = filepath.Join(dir, AppName)
	return []string{
		filepath.Join(dir, "config.toml"),
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "config.yml"),
	}
}

// decode converts a merged settings map into a Config.
func decode(root map[string]any) (*Config, error) {
	d := &decoder{root: root}
	d.checkKeys()
	if d.err != nil {
		return nil, d.err
	}

	cfg := &Config{
		Editor: EditorConfig{
			DefaultFile:  d.str("editor", "default_file"),
			Theme:        d.str("editor", "theme"),
			CoalesceMS:   d.integer("editor", "coalesce_ms"),
			HistoryLimit: d.integer("editor", "history_limit"),
		},
		Logging: LoggingConfig{
			Level: d.str("logging", "level"),
			File:  d.str("logging", "file"),
		},
		Hooks: HooksConfig{
			Script:    d.str("hooks", "script"),
			TimeoutMS: d.integer("hooks", "timeout_ms"),
		},
	}
	if d.err != nil {
		return nil, d.err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if !IsTheme(c.Editor.Theme) {
		return &ValidationError{
			Path:    "editor.theme",
			Message: "unknown theme, expected one of " + strings.Join(Themes, ", "),
			Value:   c.Editor.Theme,
			Code:    ErrCodeInvalidEnum,
		}
	}
	if !contains(logLevels, strings.ToLower(c.Logging.Level)) {
		return &ValidationError{
			Path:    "logging.level",
			Message: "expected debug, info, warn or error",
			Value:   c.Logging.Level,
			Code:    ErrCodeInvalidEnum,
		}
	}

	numbers := []struct {
		path  string
		value int
	}{
		{"editor.coalesce_ms", c.Editor.CoalesceMS},
		{"editor.history_limit", c.Editor.HistoryLimit},
		{"hooks.timeout_ms", c.Hooks.TimeoutMS},
	}
	for _, n := range numbers {
		if n.value < 0 {
			return &ValidationError{Path: n.path, Message: "must not be negative", Value: n.value, Code: ErrCodeOutOfRange}
		}
	}
	return nil
}

// CoalesceWindow returns the edit coalescing window.
func (c *Config) CoalesceWindow() time.Duration {
	return time.Duration(c.Editor.CoalesceMS) * time.Millisecond
}

// HookTimeout returns the per-handler hook timeout.
func (c *Config) HookTimeout() time.Duration {
	return time.Duration(c.Hooks.TimeoutMS) * time.Millisecond
}

func (c *Config) expandHome(home string) {
	c.Editor.DefaultFile = ExpandHome(c.Editor.DefaultFile, home)
	c.Logging.File = ExpandHome(c.Logging.File, home)
	c.Hooks.Script = ExpandHome(c.Hooks.Script, home)
}

// ExpandHome replaces a leading "~" or "~/" in path with home. Other paths,
// and every path when home is empty, are returned unchanged.
func ExpandHome(path, home string) string {
	if home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
