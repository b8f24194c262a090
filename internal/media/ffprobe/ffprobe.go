package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"stillcast/internal/services"
)

// Stream kinds as reported in codec_type.
const (
	KindVideo = "video"
	KindAudio = "audio"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
	raw     []byte
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index         int    `json:"index"`
	CodecName     string `json:"codec_name"`
	CodecType     string `json:"codec_type"`
	Duration      string `json:"duration"`
	BitRate       string `json:"bit_rate"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	PixelFormat   string `json:"pix_fmt"`
	SampleRate    string `json:"sample_rate"`
	Channels      int    `json:"channels"`
	ChannelLayout string `json:"channel_layout"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, services.Wrap(services.ErrValidation, "ffprobe", "inspect", "empty path", nil)
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		detail := ""
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		if ctx.Err() != nil {
			return Result{}, services.Wrap(services.ErrTimeout, "ffprobe", "inspect", path, ctx.Err())
		}
		return Result{}, services.Wrap(services.ErrExternalTool, "ffprobe", "inspect", detail, err)
	}

	return Parse(output)
}

// Parse decodes an ffprobe JSON document.
func Parse(payload []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return Result{}, services.Wrap(services.ErrUnparsable, "ffprobe", "parse", "decode json", err)
	}
	result.raw = append([]byte(nil), payload...)
	return result, nil
}

// RawJSON returns the raw ffprobe JSON payload.
func (r Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// StreamCount returns the number of streams of the given kind.
func (r Result) StreamCount(kind string) int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, kind) {
			count++
		}
	}
	return count
}

// FirstStream returns the lowest-index stream of the given kind.
func (r Result) FirstStream(kind string) (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, kind) {
			return stream, true
		}
	}
	return Stream{}, false
}

// Dimensions reports the frame size of the first video stream. Still images
// surface as a single video stream.
func (r Result) Dimensions() (width, height int, ok bool) {
	stream, found := r.FirstStream(KindVideo)
	if !found || stream.Width <= 0 || stream.Height <= 0 {
		return 0, 0, false
	}
	return stream.Width, stream.Height, true
}

// DurationSeconds returns the container duration in seconds, 0 when absent
// and NaN when present but unreadable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	return nonNegative(parseFloat(r.Format.Size))
}

// BitRate returns the container bitrate in bits per second, or 0 when unavailable.
func (r Result) BitRate() int64 {
	return nonNegative(parseFloat(r.Format.BitRate))
}

// Describe renders the codec details that matter for a stream of its kind.
func (s Stream) Describe() string {
	switch strings.ToLower(s.CodecType) {
	case KindVideo:
		parts := []string{s.CodecName}
		if s.Width > 0 && s.Height > 0 {
			parts = append(parts, strconv.Itoa(s.Width)+"x"+strconv.Itoa(s.Height))
		}
		if s.PixelFormat != "" {
			parts = append(parts, s.PixelFormat)
		}
		return strings.Join(parts, " ")
	case KindAudio:
		parts := []string{s.CodecName}
		if s.SampleRate != "" {
			parts = append(parts, s.SampleRate+" Hz")
		}
		switch {
		case s.ChannelLayout != "":
			parts = append(parts, s.ChannelLayout)
		case s.Channels > 0:
			parts = append(parts, strconv.Itoa(s.Channels)+" ch")
		}
		return strings.Join(parts, " ")
	default:
		return s.CodecName
	}
}

func nonNegative(value float64) int64 {
	if math.IsNaN(value) || value < 0 {
		return 0
	}
	return int64(value)
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
