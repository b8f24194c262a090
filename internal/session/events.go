package session

import (
	"fmt"

	"stillcast/internal/encoding"
	"stillcast/internal/ffmpeg"
	"stillcast/internal/jobspec"
)

// Event is emitted to the collaborator.
type Event interface {
	fmt.Stringer
	eventName() string
}

// RangeChanged carries the normalized trim state after an edit. Active is
// false while no usable duration is known.
type RangeChanged struct {
	Active   bool
	Start    int
	End      int
	Cursor   int
	Duration int
	Playing  bool
}

// AudioUnavailable reports that the selected file has no usable duration.
type AudioUnavailable struct {
	Path string
	Err  error
}

// PlaybackPaused reports that preview playback stopped, either on request or
// because the cursor reached the range end.
type PlaybackPaused struct {
	Cursor int
	AtEnd  bool
}

// JobStarted reports an accepted submission.
type JobStarted struct {
	JobID string
	Spec  jobspec.JobSpec
}

type ProgressChanged struct {
	JobID   string
	Percent int
}

type JobSucceeded struct {
	JobID      string
	OutputPath string
}

type JobFailed struct {
	JobID    string
	Reason   encoding.Reason
	ExitCode int
	Err      error
}

type JobCancelled struct {
	JobID string
}

// CommandRejected reports a command that could not be applied.
type CommandRejected struct {
	Command string
	Err     error
}

func (RangeChanged) eventName() string     { return "range_changed" }
func (AudioUnavailable) eventName() string { return "audio_unavailable" }
func (PlaybackPaused) eventName() string   { return "playback_paused" }
func (JobStarted) eventName() string       { return "job_started" }
func (ProgressChanged) eventName() string  { return "progress_changed" }
func (JobSucceeded) eventName() string     { return "job_succeeded" }
func (JobFailed) eventName() string        { return "job_failed" }
func (JobCancelled) eventName() string     { return "job_cancelled" }
func (CommandRejected) eventName() string  { return "command_rejected" }

func (e RangeChanged) String() string {
	if !e.Active {
		return "range: none"
	}
	state := "stopped"
	if e.Playing {
		state = "playing"
	}
	return fmt.Sprintf("range: %s-%s cursor %s of %s (%s)",
		ffmpeg.FormatClock(e.Start), ffmpeg.FormatClock(e.End), ffmpeg.FormatClock(e.Cursor), ffmpeg.FormatClock(e.Duration), state)
}

func (e AudioUnavailable) String() string {
	return fmt.Sprintf("audio unavailable: %s: %v", e.Path, e.Err)
}

func (e PlaybackPaused) String() string {
	if e.AtEnd {
		return fmt.Sprintf("playback paused at range end %s", ffmpeg.FormatClock(e.Cursor))
	}
	return fmt.Sprintf("playback paused at %s", ffmpeg.FormatClock(e.Cursor))
}

func (e JobStarted) String() string {
	return fmt.Sprintf("job %s started: %s", e.JobID, e.Spec.OutputPath)
}

func (e ProgressChanged) String() string {
	return fmt.Sprintf("progress: %d%%", e.Percent)
}

func (e JobSucceeded) String() string {
	return fmt.Sprintf("job %s succeeded: %s", e.JobID, e.OutputPath)
}

func (e JobFailed) String() string {
	return fmt.Sprintf("job %s failed (%s): %v", e.JobID, e.Reason, e.Err)
}

func (e JobCancelled) String() string {
	return fmt.Sprintf("job %s cancelled", e.JobID)
}

func (e CommandRejected) String() string {
	return fmt.Sprintf("%s rejected: %v", e.Command, e.Err)
}
