// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// The inspect command uses it to show what the engine sees in the cover image
// and the audio track before a render. Duration probing for trimming does not
// go through this package; it parses the engine's own diagnostic output so a
// missing ffprobe never blocks editing.
//
// Errors carry the markers from the services package so the CLI can attach
// hints.
package ffprobe
