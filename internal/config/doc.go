// Package config loads, normalizes, and validates stillcast configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config value is handed explicitly to
// the components that spawn the transcoding engine; nothing in the module
// reads engine settings from process-wide state.
package config
