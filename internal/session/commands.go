package session

import "stillcast/internal/trim"

// Command is an instruction from the collaborator.
type Command interface {
	commandName() string
}

// SetAudio selects a new audio file. The trim range is cleared until the
// duration probe for this file completes.
type SetAudio struct{ Path string }

type MoveStart struct{ Seconds int }

type MoveEnd struct{ Seconds int }

// Nudge shifts one boundary by Delta seconds.
type Nudge struct {
	Boundary trim.Boundary
	Delta    int
}

// TickCursor feeds an externally observed playback position.
type TickCursor struct{ Position int }

// Play starts preview playback from the range start.
type Play struct{}

// Stop pauses preview playback.
type Stop struct{}

// Submit renders the current range of the selected audio over ImagePath.
type Submit struct {
	ImagePath  string
	OutputPath string
	Wobble     bool
	Dim        bool
}

// Cancel stops the running render.
type Cancel struct{}

func (SetAudio) commandName() string   { return "set_audio" }
func (MoveStart) commandName() string  { return "move_start" }
func (MoveEnd) commandName() string    { return "move_end" }
func (Nudge) commandName() string      { return "nudge" }
func (TickCursor) commandName() string { return "tick_cursor" }
func (Play) commandName() string       { return "play" }
func (Stop) commandName() string       { return "stop" }
func (Submit) commandName() string     { return "submit" }
func (Cancel) commandName() string     { return "cancel" }
