// Package main hosts the stillcast CLI entrypoint and command graph.
//
// The Cobra-based command tree covers one-shot renders, the interactive trim
// session, duration probing, stream inspection, job history, preflight checks,
// and configuration scaffolding. It centralizes configuration resolution and
// logger construction so subcommands only wire the internal packages together.
package main
