// Package logs reads the stillcast log file for `stillcast logs`.
//
// Last returns the trailing lines with bounded memory; Follow polls for new
// complete lines until the context ends. Both accept a Filter so output can be
// narrowed to a single job.
package logs
