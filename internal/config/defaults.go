package config

const (
	defaultConfigPath         = "~/.config/stillcast/config.toml"
	defaultStateDir           = "~/.local/share/stillcast"
	defaultLogDir             = "~/.local/share/stillcast/logs"
	defaultFFmpegBinary       = "ffmpeg"
	defaultFFprobeBinary      = "ffprobe"
	defaultProbeTimeout       = 5
	defaultCancelGrace        = 3
	defaultVideoCodec         = "libx264"
	defaultAudioCodec         = "aac"
	defaultAudioBitrate       = "192k"
	defaultPixelFormat        = "yuv420p"
	defaultWobbleZoom         = 0.05
	defaultWobblePeriodFrames = 75
	defaultFrameRate          = 25
	defaultOutputSize         = "1280x720"
	defaultDimBrightness      = -0.25
	defaultNudgeSeconds       = 5
	defaultTickIntervalMillis = 100
	defaultMinFreeMiB         = 512
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"

	// EffectWobble names the zoom-pan effect in effects.order.
	EffectWobble = "wobble"
	// EffectDim names the brightness effect in effects.order.
	EffectDim = "dim"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Engine: Engine{
			FFmpegBinary:        defaultFFmpegBinary,
			FFprobeBinary:       defaultFFprobeBinary,
			ProbeTimeoutSeconds: defaultProbeTimeout,
			CancelGraceSeconds:  defaultCancelGrace,
		},
		Encode: Encode{
			VideoCodec:   defaultVideoCodec,
			AudioCodec:   defaultAudioCodec,
			AudioBitrate: defaultAudioBitrate,
			PixelFormat:  defaultPixelFormat,
			Overwrite:    true,
		},
		Effects: Effects{
			Order:              []string{EffectWobble, EffectDim},
			WobbleZoom:         defaultWobbleZoom,
			WobblePeriodFrames: defaultWobblePeriodFrames,
			FrameRate:          defaultFrameRate,
			OutputSize:         defaultOutputSize,
			DimBrightness:      defaultDimBrightness,
		},
		Trim: Trim{
			NudgeSeconds: defaultNudgeSeconds,
		},
		Playback: Playback{
			TickIntervalMillis: defaultTickIntervalMillis,
		},
		Preflight: Preflight{
			MinFreeMiB: defaultMinFreeMiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
