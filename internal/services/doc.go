// Package services defines shared utilities consumed by the probe, encoding,
// and session packages.
//
// Key responsibilities:
//   - Context helpers that stamp job and session identifiers for logging.
//   - Structured error markers plus the Wrap helper that keep failures
//     classifiable with errors.Is after they cross package boundaries.
package services
