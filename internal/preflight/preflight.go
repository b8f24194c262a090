package preflight

import (
	"context"

	"stillcast/internal/config"
	"stillcast/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem and engine checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	results = append(results, CheckFreeSpace("State free space", cfg.Paths.StateDir, cfg.Preflight.MinFreeMiB))

	for _, status := range deps.CheckEngine(ctx, cfg) {
		if !status.Available && status.Optional {
			results = append(results, Result{Name: status.Name, Passed: true, Detail: "optional: " + status.Detail})
			continue
		}
		results = append(results, Result{Name: status.Name, Passed: status.Available, Detail: status.Detail})
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
