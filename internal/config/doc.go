// Package config loads quill's settings.
//
// Settings come from one optional file in the user configuration directory,
// the first found of:
//
//	<UserConfigDir>/quill/config.toml
//	<UserConfigDir>/quill/config.yaml
//	<UserConfigDir>/quill/config.yml
//
// Values in the file override the built-in defaults section by section.
// A missing file is not an error. Unknown keys, values of the wrong type
// and out-of-range values are rejected so typos do not go unnoticed.
//
// # Basic Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    // *config.ParseError, *config.TypeError or *config.ValidationError
//	}
//	window := cfg.CoalesceWindow()
//
// # Sub-packages
//
//   - loader: TOML and YAML file parsing into generic maps
package config
