package ffmpeg

import (
	"fmt"

	"stillcast/internal/config"
)

// Options carries the fixed encode settings and effect parameters that do
// not vary per job.
type Options struct {
	VideoCodec   string
	AudioCodec   string
	AudioBitrate string
	PixelFormat  string
	Overwrite    bool

	EffectOrder        []string
	WobbleZoom         float64
	WobblePeriodFrames int
	FrameRate          int
	Width              int
	Height             int
	DimBrightness      float64
}

// OptionsFromConfig derives builder options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	if cfg == nil {
		return Options{}, fmt.Errorf("ffmpeg options: config is required")
	}
	width, height, err := config.ParseSize(cfg.Effects.OutputSize)
	if err != nil {
		return Options{}, fmt.Errorf("ffmpeg options: %w", err)
	}
	return Options{
		VideoCodec:         cfg.Encode.VideoCodec,
		AudioCodec:         cfg.Encode.AudioCodec,
		AudioBitrate:       cfg.Encode.AudioBitrate,
		PixelFormat:        cfg.Encode.PixelFormat,
		Overwrite:          cfg.Encode.Overwrite,
		EffectOrder:        append([]string(nil), cfg.Effects.Order...),
		WobbleZoom:         cfg.Effects.WobbleZoom,
		WobblePeriodFrames: cfg.Effects.WobblePeriodFrames,
		FrameRate:          cfg.Effects.FrameRate,
		Width:              width,
		Height:             height,
		DimBrightness:      cfg.Effects.DimBrightness,
	}, nil
}

// DefaultOptions returns the options produced by the default configuration.
func DefaultOptions() Options {
	cfg := config.Default()
	opts, err := OptionsFromConfig(&cfg)
	if err != nil {
		panic(err)
	}
	return opts
}
