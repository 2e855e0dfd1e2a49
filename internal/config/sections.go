package config

import (
	"fmt"
	"math"
	"sort"
)

// Section structs are plain snapshots. Mutating them does not affect any
// other Config.

// EditorConfig holds document session settings.
type EditorConfig struct {
	// DefaultFile is opened on start without a dialog. "~/" is expanded.
	DefaultFile string

	// Theme is the initial theme name; see Themes.
	Theme string

	// CoalesceMS merges edits arriving within this many milliseconds of
	// each other into one undo step. Zero records every edit.
	CoalesceMS int

	// HistoryLimit bounds the undo history. Zero means unbounded.
	HistoryLimit int
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is the minimum level written: debug, info, warn or error.
	Level string

	// File receives log lines. Empty disables logging, since the terminal
	// belongs to the editor.
	File string
}

// HooksConfig holds Lua hook settings.
type HooksConfig struct {
	// Script is a Lua file registering hook handlers. Empty disables hooks.
	Script string

	// TimeoutMS bounds each handler invocation.
	TimeoutMS int
}

// schema lists every accepted setting per section.
var schema = map[string][]string{
	"editor":  {"default_file", "theme", "coalesce_ms", "history_limit"},
	"logging": {"level", "file"},
	"hooks":   {"script", "timeout_ms"},
}

// defaultConfig returns the default configuration values.
func defaultConfig() map[string]any {
	return map[string]any{
		"editor": map[string]any{
			"default_file":  "~/quill.txt",
			"theme":         DefaultTheme,
			"coalesce_ms":   0,
			"history_limit": 0,
		},
		"logging": map[string]any{
			"level": "info",
			"file":  "",
		},
		"hooks": map[string]any{
			"script":     "",
			"timeout_ms": 1000,
		},
	}
}

// decoder turns a merged settings map into typed sections, keeping the
// first error.
type decoder struct {
	root map[string]any
	err  error
}

func (d *decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// checkKeys rejects sections and keys missing from schema.
func (d *decoder) checkKeys() {
	names := make([]string, 0, len(d.root))
	for name := range d.root {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		known, ok := schema[name]
		if !ok {
			d.fail(&ValidationError{Path: name, Message: "unknown section", Code: ErrCodeUnknownSetting})
			return
		}
		sec, ok := d.root[name].(map[string]any)
		if !ok {
			d.fail(&TypeError{Path: name, Expected: "table", Actual: typeName(d.root[name])})
			return
		}
		keys := make([]string, 0, len(sec))
		for key := range sec {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if !contains(known, key) {
				d.fail(&ValidationError{Path: name + "." + key, Message: "unknown setting", Code: ErrCodeUnknownSetting})
				return
			}
		}
	}
}

func (d *decoder) value(section, key string) any {
	sec, _ := d.root[section].(map[string]any)
	return sec[key]
}

func (d *decoder) str(section, key string) string {
	v := d.value(section, key)
	s, ok := v.(string)
	if !ok {
		d.fail(&TypeError{Path: section + "." + key, Expected: "string", Actual: typeName(v)})
	}
	return s
}

func (d *decoder) integer(section, key string) int {
	v := d.value(section, key)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			return int(n)
		}
		d.fail(&ValidationError{Path: section + "." + key, Message: "number too large", Value: n, Code: ErrCodeOutOfRange})
		return 0
	case float64:
		if n == math.Trunc(n) && math.Abs(n) <= math.MaxInt32 {
			return int(n)
		}
	}
	d.fail(&TypeError{Path: section + "." + key, Expected: "integer", Actual: typeName(v)})
	return 0
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nothing"
	case map[string]any:
		return "table"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
