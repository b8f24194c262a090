package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"stillcast/internal/config"
	"stillcast/internal/ffmpeg"
	"stillcast/internal/logging"
	"stillcast/internal/services"
)

const defaultTimeout = 5 * time.Second

var (
	// ErrNotFound reports that the media file does not exist or cannot be read.
	ErrNotFound = fmt.Errorf("probe: %w", services.ErrNotFound)
	// ErrUnparsableOutput reports that the engine ran but printed no duration.
	ErrUnparsableOutput = fmt.Errorf("probe: %w", services.ErrUnparsable)
)

// Duration is the probed length of a media file in whole seconds. Known is
// false when the engine gave no usable marker, which callers must treat
// differently from a zero length file.
type Duration struct {
	Seconds int
	Known   bool
}

// Unknown is the result returned when no duration could be determined.
var Unknown = Duration{}

func (d Duration) String() string {
	if !d.Known {
		return "unknown"
	}
	return ffmpeg.FormatClock(d.Seconds)
}

// Prober runs the engine in inspect mode.
type Prober struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// New constructs a Prober from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Prober {
	p := &Prober{binary: "ffmpeg", timeout: defaultTimeout}
	if cfg != nil {
		p.binary = cfg.FFmpegBinary()
		if t := cfg.ProbeTimeout(); t > 0 {
			p.timeout = t
		}
	}
	p.logger = logging.NewComponentLogger(logger, "probe")
	return p
}

// Probe returns the duration of the file at path. A nil error always comes
// with a known duration. When the engine output has no marker the returned
// Duration is Unknown and the error wraps ErrUnparsableOutput.
func (p *Prober) Probe(ctx context.Context, path string) (Duration, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Unknown, fmt.Errorf("%w: empty path", ErrNotFound)
	}
	info, err := os.Stat(path)
	if err != nil {
		return Unknown, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	}
	if info.IsDir() {
		return Unknown, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// Inspect mode: no output file is given, so the engine exits nonzero
	// after printing the input summary. The exit status is ignored.
	cmd := exec.CommandContext(ctx, p.binary, "-hide_banner", "-nostdin", "-i", path)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = time.Second
	runErr := cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Unknown, services.Wrap(services.ErrTimeout, "probe", "inspect", fmt.Sprintf("no result within %s", p.timeout), ctx.Err())
	}
	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Unknown, ctxErr
		}
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return Unknown, services.Wrap(services.ErrExternalTool, "probe", "inspect", "start "+p.binary, runErr)
		}
	}

	seconds, ok := ffmpeg.ParseDurationMarker(out.String())
	if !ok {
		logging.WarnWithContext(p.logger, "no duration marker in inspect output", "probe_unparsable",
			logging.String("audio_path", path),
			logging.String(logging.FieldErrorHint, "confirm the file is a supported audio format"),
			logging.String(logging.FieldImpact, "trim controls stay disabled for this file"),
		)
		return Unknown, fmt.Errorf("%w: %s", ErrUnparsableOutput, path)
	}
	p.logger.Debug("probed duration", logging.String("audio_path", path), logging.Int("seconds", seconds))
	return Duration{Seconds: seconds, Known: true}, nil
}
