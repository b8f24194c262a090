// Package probe reads a media file's total duration by running the
// transcoding engine in inspect mode and scanning its diagnostics for the
// Duration marker.
//
// A missing marker is not fatal: the result is reported as unknown so the
// trim controls can stay disabled while the rest of the session carries on.
package probe
