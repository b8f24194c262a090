package ffmpeg

import (
	"strings"

	"stillcast/internal/jobspec"
)

// fileProtocol keeps the engine from reading an output path that starts with
// a dash as an option.
const fileProtocol = "file:"

// Build constructs the engine argument list for spec. The binary name is not
// included; the caller prepends whichever executable the config selects.
//
// Sections are emitted in a fixed order: preamble, looped image input, trimmed
// audio input, codecs, -shortest, the composed filter chain, then the output.
func Build(spec jobspec.JobSpec, opts Options) []string {
	args := make([]string, 0, 32)

	// --- Preamble ---
	args = append(args, "-hide_banner", "-nostdin")
	if opts.Overwrite {
		args = append(args, "-y")
	} else {
		args = append(args, "-n")
	}

	// --- Inputs ---
	args = append(args, "-loop", "1", "-i", spec.ImagePath)
	args = append(args,
		"-ss", FormatClock(spec.Range.Start),
		"-to", FormatClock(spec.Range.End),
		"-i", spec.AudioPath,
	)

	// --- Codecs ---
	args = append(args, "-c:v", opts.VideoCodec, "-c:a", opts.AudioCodec)
	if opts.AudioBitrate != "" {
		args = append(args, "-b:a", opts.AudioBitrate)
	}
	if opts.PixelFormat != "" {
		args = append(args, "-pix_fmt", opts.PixelFormat)
	}
	args = append(args, "-shortest")

	// --- Video filter chain ---
	if chain := FilterChain(spec, opts); chain != "" {
		args = append(args, "-vf", chain)
	}

	// --- Output ---
	args = append(args, outputArg(spec.OutputPath))
	return args
}

func outputArg(path string) string {
	if strings.HasPrefix(path, "-") {
		return fileProtocol + path
	}
	return path
}
