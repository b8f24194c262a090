package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"stillcast/internal/config"
)

const versionTimeout = 5 * time.Second

// EngineRequirements lists the engine binaries the configuration points at.
// ffprobe only backs the inspect command, so it is optional.
func EngineRequirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for probing durations and rendering",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Used by stillcast inspect",
			Optional:    true,
		},
	}
}

// CheckEngine evaluates EngineRequirements and annotates available binaries
// with the first line of their -version output.
func CheckEngine(ctx context.Context, cfg *config.Config) []Status {
	statuses := CheckBinaries(EngineRequirements(cfg))
	for i := range statuses {
		if !statuses[i].Available {
			continue
		}
		version, err := EngineVersion(ctx, statuses[i].Command)
		if err != nil {
			statuses[i].Detail = fmt.Sprintf("version unknown: %v", err)
			continue
		}
		statuses[i].Detail = version
	}
	return statuses
}

// EngineVersion returns the first line of `<binary> -version`.
func EngineVersion(ctx context.Context, binary string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, binary, "-version").Output()
	if err != nil {
		return "", err
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	if scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	return "", fmt.Errorf("%s -version printed nothing", binary)
}
