package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Engine describes how the external transcoding engine is invoked.
type Engine struct {
	FFmpegBinary        string `toml:"ffmpeg_binary"`
	FFprobeBinary       string `toml:"ffprobe_binary"`
	ProbeTimeoutSeconds int    `toml:"probe_timeout_seconds"`
	CancelGraceSeconds  int    `toml:"cancel_grace_seconds"`
}

// Encode contains the fixed codec settings applied to every job.
type Encode struct {
	VideoCodec            string `toml:"video_codec"`
	AudioCodec            string `toml:"audio_codec"`
	AudioBitrate          string `toml:"audio_bitrate"`
	PixelFormat           string `toml:"pixel_format"`
	Overwrite             bool   `toml:"overwrite"`
	RemovePartialOnCancel bool   `toml:"remove_partial_on_cancel"`
}

// Effects tunes the optional visual effects.
type Effects struct {
	// Order is the filter chain order used when more than one effect is enabled.
	Order              []string `toml:"order"`
	WobbleZoom         float64  `toml:"wobble_zoom"`
	WobblePeriodFrames int      `toml:"wobble_period_frames"`
	FrameRate          int      `toml:"frame_rate"`
	OutputSize         string   `toml:"output_size"`
	DimBrightness      float64  `toml:"dim_brightness"`
}

// Trim contains trim range editing settings.
type Trim struct {
	NudgeSeconds int `toml:"nudge_seconds"`
}

// Playback contains preview playback settings.
type Playback struct {
	TickIntervalMillis int `toml:"tick_interval_ms"`
}

// Preflight contains thresholds for pre-render checks.
type Preflight struct {
	MinFreeMiB int `toml:"min_free_mib"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for stillcast.
//
// Configuration sections by subsystem:
//   - Paths: state (history database, lock files) and log directories
//   - Engine: transcoding engine binaries and timeouts
//   - Encode: codec flags and output policies
//   - Effects: wobble/dim filter parameters and chain order
//   - Trim, Playback: range editing and preview sampling
//   - Preflight: free space threshold
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Engine    Engine    `toml:"engine"`
	Encode    Encode    `toml:"encode"`
	Effects   Effects   `toml:"effects"`
	Trim      Trim      `toml:"trim"`
	Playback  Playback  `toml:"playback"`
	Preflight Preflight `toml:"preflight"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("stillcast.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the location of the job history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// FFmpegBinary returns the transcoding engine executable.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Engine.FFmpegBinary); bin != "" {
		return bin
	}
	return defaultFFmpegBinary
}

// FFprobeBinary returns the ffprobe executable used for stream inspection.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Engine.FFprobeBinary); bin != "" {
		return bin
	}
	return defaultFFprobeBinary
}

// ProbeTimeout bounds a single duration probe.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Engine.ProbeTimeoutSeconds) * time.Second
}

// CancelGrace is how long a cancelled engine gets to exit before it is killed.
func (c *Config) CancelGrace() time.Duration {
	return time.Duration(c.Engine.CancelGraceSeconds) * time.Second
}

// TickInterval is the playback position sampling period.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Playback.TickIntervalMillis) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
