package ffmpeg

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	reDurationMarker = regexp.MustCompile(`Duration:\s*(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)
	reTimeMarker     = regexp.MustCompile(`time=\s*(-?)(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)
)

// FormatClock renders whole seconds as zero padded HH:MM:SS. Negative input
// is treated as zero.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// ParseClock parses HH:MM:SS[.ss] into fractional seconds.
func ParseClock(value string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("parse clock %q: expected HH:MM:SS", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("parse clock %q: invalid hours", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("parse clock %q: invalid minutes", value)
	}
	secs, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || secs < 0 || secs >= 60 {
		return 0, fmt.Errorf("parse clock %q: invalid seconds", value)
	}
	return float64(hours*3600+minutes*60) + secs, nil
}

// ParseDurationMarker finds the first "Duration: HH:MM:SS[.ss]" marker in
// the engine's inspect output and returns it as whole seconds, computed as
// H*3600 + M*60 + floor(S).
func ParseDurationMarker(text string) (int, bool) {
	match := reDurationMarker.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	hours, _ := strconv.Atoi(match[1])
	minutes, _ := strconv.Atoi(match[2])
	secs, err := strconv.ParseFloat(match[3], 64)
	if err != nil {
		return 0, false
	}
	return hours*3600 + minutes*60 + int(math.Floor(secs)), true
}

// ParseTimeMarker returns the elapsed encoded time from the last "time="
// marker in chunk. Negative timestamps, which the engine prints before the
// first frame, are reported as zero.
func ParseTimeMarker(chunk string) (float64, bool) {
	matches := reTimeMarker.FindAllStringSubmatch(chunk, -1)
	if len(matches) == 0 {
		return 0, false
	}
	match := matches[len(matches)-1]
	hours, _ := strconv.Atoi(match[2])
	minutes, _ := strconv.Atoi(match[3])
	secs, err := strconv.ParseFloat(match[4], 64)
	if err != nil {
		return 0, false
	}
	if match[1] == "-" {
		return 0, true
	}
	return float64(hours*3600+minutes*60) + secs, true
}
