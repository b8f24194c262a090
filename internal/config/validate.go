package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateEncode(); err != nil {
		return err
	}
	if err := c.validateEffects(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEngine() error {
	return ensurePositiveMap(map[string]int{
		"engine.probe_timeout_seconds": c.Engine.ProbeTimeoutSeconds,
		"engine.cancel_grace_seconds":  c.Engine.CancelGraceSeconds,
		"trim.nudge_seconds":           c.Trim.NudgeSeconds,
		"playback.tick_interval_ms":    c.Playback.TickIntervalMillis,
	})
}

func (c *Config) validateEncode() error {
	if strings.TrimSpace(c.Encode.VideoCodec) == "" {
		return errors.New("encode.video_codec must be set")
	}
	if strings.TrimSpace(c.Encode.AudioCodec) == "" {
		return errors.New("encode.audio_codec must be set")
	}
	if strings.TrimSpace(c.Encode.AudioBitrate) == "" {
		return errors.New("encode.audio_bitrate must be set")
	}
	if c.Preflight.MinFreeMiB < 0 {
		return errors.New("preflight.min_free_mib must not be negative")
	}
	return nil
}

func (c *Config) validateEffects() error {
	seen := make(map[string]bool, len(c.Effects.Order))
	for _, name := range c.Effects.Order {
		if name != EffectWobble && name != EffectDim {
			return fmt.Errorf("effects.order: unknown effect %q (want %q or %q)", name, EffectWobble, EffectDim)
		}
		if seen[name] {
			return fmt.Errorf("effects.order: effect %q listed twice", name)
		}
		seen[name] = true
	}
	if len(seen) != 2 {
		return fmt.Errorf("effects.order must list both %q and %q", EffectWobble, EffectDim)
	}
	if c.Effects.DimBrightness < -1 || c.Effects.DimBrightness > 1 {
		return errors.New("effects.dim_brightness must be between -1 and 1")
	}
	if c.Effects.WobbleZoom < 0 {
		return errors.New("effects.wobble_zoom must not be negative")
	}
	if err := ensurePositiveMap(map[string]int{
		"effects.wobble_period_frames": c.Effects.WobblePeriodFrames,
		"effects.frame_rate":           c.Effects.FrameRate,
	}); err != nil {
		return err
	}
	if _, _, err := ParseSize(c.Effects.OutputSize); err != nil {
		return fmt.Errorf("effects.output_size: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// ParseSize splits a WxH frame size. Both sides must be positive and even.
func ParseSize(value string) (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(value)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%q is not WIDTHxHEIGHT", value)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return 0, 0, fmt.Errorf("width %q: %w", w, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return 0, 0, fmt.Errorf("height %q: %w", h, err)
	}
	if width <= 0 || height <= 0 || width%2 != 0 || height%2 != 0 {
		return 0, 0, fmt.Errorf("%q must have positive even sides", value)
	}
	return width, height, nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
