// Package ffmpeg turns a render request into the engine's argument list and
// isolates every piece of knowledge about the engine's textual output.
//
// Build is a pure function of a jobspec.JobSpec and builder Options. ParseArgs
// inverts it so recorded jobs can be replayed. The marker helpers in
// markers.go are the only code that reads raw engine diagnostics; the probe
// and encoding packages consume their typed results.
package ffmpeg
