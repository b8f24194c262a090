package jobspec

import (
	"fmt"
	"path/filepath"
	"strings"

	"stillcast/internal/services"
)

// TrimRange is the [Start, End) window of the source audio in whole seconds.
type TrimRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Length returns the number of seconds covered by the range.
func (r TrimRange) Length() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Valid reports whether the range has a non-negative start and at least a
// one second gap.
func (r TrimRange) Valid() bool {
	return r.Start >= 0 && r.Start < r.End
}

// JobSpec describes one still-image render. It is constructed once per
// submission and never mutated afterwards.
type JobSpec struct {
	ImagePath  string    `json:"image_path"`
	AudioPath  string    `json:"audio_path"`
	OutputPath string    `json:"output_path"`
	Range      TrimRange `json:"range"`
	Wobble     bool      `json:"wobble"`
	Dim        bool      `json:"dim"`
}

// ValidationError lists the submission fields that are missing or invalid.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid job spec: %s", strings.Join(e.Fields, ", "))
}

// Is lets errors.Is match the shared validation marker.
func (e *ValidationError) Is(target error) bool {
	return target == services.ErrValidation
}

// Validate checks the fields a job needs before it can start. Paths are
// only checked for presence; the engine rejects unreadable inputs itself.
func (s JobSpec) Validate() error {
	var fields []string
	if strings.TrimSpace(s.ImagePath) == "" {
		fields = append(fields, "image path")
	}
	if strings.TrimSpace(s.AudioPath) == "" {
		fields = append(fields, "audio path")
	}
	if strings.TrimSpace(s.OutputPath) == "" {
		fields = append(fields, "output path")
	}
	if !s.Range.Valid() {
		fields = append(fields, fmt.Sprintf("range [%d, %d)", s.Range.Start, s.Range.End))
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

var (
	imageExtensions  = []string{".png", ".jpg", ".jpeg"}
	audioExtensions  = []string{".mp3", ".wav", ".m4a"}
	outputExtensions = []string{".mp4"}
)

// IsImage reports whether path carries an accepted still image extension.
func IsImage(path string) bool { return hasExtension(path, imageExtensions) }

// IsAudio reports whether path carries an accepted audio extension.
func IsAudio(path string) bool { return hasExtension(path, audioExtensions) }

// IsVideoOutput reports whether path carries the accepted output extension.
func IsVideoOutput(path string) bool { return hasExtension(path, outputExtensions) }

// FormatWarnings returns a human readable note for each path whose extension
// falls outside the accepted formats. Callers log these and carry on.
func (s JobSpec) FormatWarnings() []string {
	var warnings []string
	if s.ImagePath != "" && !IsImage(s.ImagePath) {
		warnings = append(warnings, fmt.Sprintf("image %q is not one of %s", s.ImagePath, strings.Join(imageExtensions, "/")))
	}
	if s.AudioPath != "" && !IsAudio(s.AudioPath) {
		warnings = append(warnings, fmt.Sprintf("audio %q is not one of %s", s.AudioPath, strings.Join(audioExtensions, "/")))
	}
	if s.OutputPath != "" && !IsVideoOutput(s.OutputPath) {
		warnings = append(warnings, fmt.Sprintf("output %q is not %s", s.OutputPath, strings.Join(outputExtensions, "/")))
	}
	return warnings
}

func hasExtension(path string, accepted []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range accepted {
		if ext == candidate {
			return true
		}
	}
	return false
}
