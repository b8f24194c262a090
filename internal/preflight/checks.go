package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"stillcast/internal/config"
	"stillcast/internal/deps"
)

const bytesPerMiB = 1 << 20

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// FreeMiB reports the space available to unprivileged users on the
// filesystem holding path.
func FreeMiB(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return stat.Bavail * uint64(stat.Bsize) / bytesPerMiB, nil
}

// CheckFreeSpace fails when the filesystem holding path has less than minMiB free.
func CheckFreeSpace(name, path string, minMiB int) Result {
	free, err := FreeMiB(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	detail := fmt.Sprintf("%s (%d MiB free, %d MiB required)", path, free, minMiB)
	if minMiB > 0 && free < uint64(minMiB) {
		return Result{Name: name, Detail: detail}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckOutputDirectory checks the directory a render will write into.
func CheckOutputDirectory(outputPath string, minMiB int) []Result {
	dir := filepath.Dir(outputPath)
	access := CheckDirectoryAccess("Output directory", dir)
	if !access.Passed {
		return []Result{access}
	}
	return []Result{access, CheckFreeSpace("Output free space", dir, minMiB)}
}

// CheckSystemDeps reports engine binary availability.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.EngineRequirements(cfg))
}
