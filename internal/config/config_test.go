package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"stillcast/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "stillcast", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".local", "share", "stillcast"); cfg.Paths.StateDir != want {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, want)
	}
	if cfg.HistoryPath() != filepath.Join(cfg.Paths.StateDir, "history.db") {
		t.Fatalf("unexpected history path %q", cfg.HistoryPath())
	}
	if cfg.FFmpegBinary() != "ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary %q", cfg.FFmpegBinary())
	}
	if cfg.ProbeTimeout().Seconds() != 5 {
		t.Fatalf("unexpected probe timeout %v", cfg.ProbeTimeout())
	}
	if cfg.TickInterval().Milliseconds() != 100 {
		t.Fatalf("unexpected tick interval %v", cfg.TickInterval())
	}
	if cfg.Encode.RemovePartialOnCancel {
		t.Fatal("expected partial outputs to be kept by default")
	}
	if strings.Join(cfg.Effects.Order, ",") != "wobble,dim" {
		t.Fatalf("unexpected effect order %v", cfg.Effects.Order)
	}
}

func TestLoadCustomConfigFile(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "stillcast.toml")

	custom := config.Default()
	custom.Paths.StateDir = filepath.Join(base, "state")
	custom.Paths.LogDir = ""
	custom.Engine.FFmpegBinary = "/opt/ffmpeg/bin/ffmpeg"
	custom.Effects.Order = []string{"DIM", " wobble "}
	custom.Logging.Format = "JSON"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary %q", cfg.FFmpegBinary())
	}
	if strings.Join(cfg.Effects.Order, ",") != "dim,wobble" {
		t.Fatalf("expected normalized effect order, got %v", cfg.Effects.Order)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lowercased log format, got %q", cfg.Logging.Format)
	}
	if cfg.Paths.LogDir != "" {
		t.Fatalf("expected empty log dir to stay empty, got %q", cfg.Paths.LogDir)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if info, err := os.Stat(cfg.Paths.StateDir); err != nil || !info.IsDir() {
		t.Fatalf("expected state dir to exist: %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stillcast.toml")
	if err := os.WriteFile(path, []byte("[engine]\nffmpeg_bin = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"probe timeout", func(c *config.Config) { c.Engine.ProbeTimeoutSeconds = 0 }, "engine.probe_timeout_seconds"},
		{"tick interval", func(c *config.Config) { c.Playback.TickIntervalMillis = -1 }, "playback.tick_interval_ms"},
		{"unknown effect", func(c *config.Config) { c.Effects.Order = []string{"wobble", "blur"} }, "unknown effect"},
		{"duplicate effect", func(c *config.Config) { c.Effects.Order = []string{"dim", "dim"} }, "listed twice"},
		{"missing effect", func(c *config.Config) { c.Effects.Order = []string{"dim"} }, "must list both"},
		{"brightness", func(c *config.Config) { c.Effects.DimBrightness = -2 }, "dim_brightness"},
		{"odd size", func(c *config.Config) { c.Effects.OutputSize = "1279x720" }, "output_size"},
		{"codec", func(c *config.Config) { c.Encode.VideoCodec = " " }, "encode.video_codec"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	w, h, err := config.ParseSize(" 1920X1080 ")
	if err != nil {
		t.Fatalf("ParseSize: %v", err)
	}
	if w != 1920 || h != 1080 {
		t.Fatalf("unexpected size %dx%d", w, h)
	}
	for _, bad := range []string{"", "1920", "axb", "0x720", "640x-2"} {
		if _, _, err := config.ParseSize(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Trim.NudgeSeconds != 5 {
		t.Fatalf("unexpected nudge seconds %d", cfg.Trim.NudgeSeconds)
	}
}
